package utils

import "fmt"

const (
	fnvOffset32 uint32 = 0x811c9dc5
	fnvPrime32  uint32 = 0x01000193
)

// Checksum32 returns the 32-bit FNV-1a hash of text, folding in one Unicode
// code point per step. It is used for dedupe and cache keys, not integrity.
func Checksum32(text string) uint32 {
	h := fnvOffset32
	for _, r := range text {
		h ^= uint32(r)
		h *= fnvPrime32
	}
	return h
}

// ShortChecksum renders the low 24 bits of sum as six lowercase hex digits.
func ShortChecksum(sum uint32) string {
	return fmt.Sprintf("%06x", sum&0xffffff)
}
