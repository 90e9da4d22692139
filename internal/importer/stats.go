package importer

import (
	"fmt"
	"strings"

	"promptforge/internal/fsaccess"
)

// RejectionStats counts skipped entries by cause.
type RejectionStats struct {
	TooLarge         int `json:"tooLarge"`
	TooLong          int `json:"tooLong"`
	UnsupportedType  int `json:"unsupportedType"`
	LimitReached     int `json:"limitReached"`
	PermissionDenied int `json:"permissionDenied"`
	ReadError        int `json:"readError"`
}

func (s *RejectionStats) Add(o RejectionStats) {
	s.TooLarge += o.TooLarge
	s.TooLong += o.TooLong
	s.UnsupportedType += o.UnsupportedType
	s.LimitReached += o.LimitReached
	s.PermissionDenied += o.PermissionDenied
	s.ReadError += o.ReadError
}

func (s RejectionStats) Total() int {
	return s.TooLarge + s.TooLong + s.UnsupportedType + s.LimitReached + s.PermissionDenied + s.ReadError
}

// classify tallies an I/O failure as a permission denial or a read error.
func (s *RejectionStats) classify(err error) {
	if fsaccess.IsPermission(err) {
		s.PermissionDenied++
		return
	}
	s.ReadError++
}

// Summary renders the counts with the limits that caused them. It returns
// "" when nothing was skipped.
func (s RejectionStats) Summary(l Limits) string {
	total := s.Total()
	if total == 0 {
		return ""
	}
	var parts []string
	if s.TooLarge > 0 {
		parts = append(parts, fmt.Sprintf("%d too large (over %s)", s.TooLarge, formatBytes(l.MaxTextFileSize)))
	}
	if s.TooLong > 0 {
		parts = append(parts, fmt.Sprintf("%d too long (over %d characters)", s.TooLong, l.MaxCharLen))
	}
	if s.UnsupportedType > 0 {
		parts = append(parts, fmt.Sprintf("%d unsupported type", s.UnsupportedType))
	}
	if s.LimitReached > 0 {
		parts = append(parts, fmt.Sprintf("%d over limit (max %d files, %d scanned entries)", s.LimitReached, l.FileLimit, l.DiscoveryCap))
	}
	if s.PermissionDenied > 0 {
		parts = append(parts, fmt.Sprintf("%d permission denied", s.PermissionDenied))
	}
	if s.ReadError > 0 {
		parts = append(parts, fmt.Sprintf("%d read errors", s.ReadError))
	}
	return fmt.Sprintf("Skipped %d: %s", total, strings.Join(parts, ", "))
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MiB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KiB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
