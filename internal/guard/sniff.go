package guard

import "unicode/utf8"

const sniffLen = 4096

// LooksBinary inspects the first 4 KiB of data. NUL bytes or more than 30%
// control characters mark the content as binary even if its name looked
// like text.
func LooksBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	buf := data
	if len(buf) > sniffLen {
		buf = buf[:sniffLen]
	}

	nonPrintable := 0
	for i := 0; i < len(buf); {
		b := buf[i]
		if b == 0 {
			return true
		}
		if b < utf8.RuneSelf {
			if b < 32 && b != '\n' && b != '\r' && b != '\t' && b != '\f' && b != '\v' {
				nonPrintable++
			} else if b == 0x7f {
				nonPrintable++
			}
			i++
			continue
		}
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && size == 1 {
			// A rune cut off by the sniff window is not evidence of binary data.
			if len(buf)-i < utf8.UTFMax && len(data) > len(buf) {
				break
			}
			nonPrintable++
		}
		i += size
	}
	return float64(nonPrintable)/float64(len(buf)) > 0.3
}
