// Package importer turns user-granted directories and picked files into
// staged text files. Every batch operation returns a result plus
// RejectionStats and never fails as a whole because of one entry.
package importer

import (
	"promptforge/internal/config"
	"promptforge/internal/fsaccess"
)

// TopEntry is an immediate child of a scanned root.
type TopEntry struct {
	Name string        `json:"name"`
	Kind fsaccess.Kind `json:"kind"`
}

// ScanMetaEntry is one node discovered by the metadata walk.
type ScanMetaEntry struct {
	Path string        `json:"path"`
	Kind fsaccess.Kind `json:"kind"`
}

// StagedFile is a validated text file held for prompt assembly. Merge
// identity is (SourcePath, Checksum). Path may be rewritten on collision.
type StagedFile struct {
	ID            string `json:"id"`
	Path          string `json:"path"`
	SourcePath    string `json:"sourcePath,omitempty"`
	Size          int64  `json:"size"`
	MIME          string `json:"mime"`
	Text          string `json:"text"`
	InsideProject bool   `json:"insideProject"`
	Name          string `json:"name"`
	RootName      string `json:"rootName,omitempty"`
	CharCount     int    `json:"charCount"`
	Checksum      uint32 `json:"checksum"`
	Note          string `json:"note,omitempty"`
}

// Attachment is a picked image or PDF routed around the text pipeline.
type Attachment struct {
	ID   string
	Name string
	MIME string
	Size int64
	Data []byte
}

// Limits bounds scan and stage work.
type Limits struct {
	FileLimit         int
	MaxTextFileSize   int64
	MaxCharLen        int
	DiscoveryCap      int
	ProcessedCap      int
	MaxAttachments    int
	MaxAttachmentSize int64
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		FileLimit:         500,
		MaxTextFileSize:   300 * 1024,
		MaxCharLen:        200000,
		DiscoveryCap:      5000,
		ProcessedCap:      20000,
		MaxAttachments:    10,
		MaxAttachmentSize: 20 * 1024 * 1024,
	}
}

func LimitsFromConfig(c config.Limits) Limits {
	return Limits{
		FileLimit:         c.FileLimit,
		MaxTextFileSize:   c.MaxTextFileSize,
		MaxCharLen:        c.MaxCharLen,
		DiscoveryCap:      c.DiscoveryCap,
		ProcessedCap:      c.ProcessedCap(),
		MaxAttachments:    c.MaxAttachments,
		MaxAttachmentSize: c.MaxAttachmentSize,
	}
}
