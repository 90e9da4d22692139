package utils

import (
	"os"
	"strings"
)

// ReadPatterns reads a gitignore-style file. Blank lines and # comments are
// dropped, and a leading `\#` keeps a literal hash.
func ReadPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var patterns []string
	for line := range strings.Lines(string(data)) {
		line = strings.TrimRight(line, "\r\n")
		switch trimmed := strings.TrimSpace(line); {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			continue
		case strings.HasPrefix(trimmed, `\#`):
			patterns = append(patterns, trimmed[1:])
		default:
			patterns = append(patterns, trimmed)
		}
	}
	return patterns, nil
}
