// Package tokens estimates prompt token counts off the caller's goroutine.
// A single Worker goroutine owns the count cache and serves Requests. Each
// consumer holds its own Estimator, which debounces edits and drops replies
// that are not for its latest request.
package tokens

import (
	"context"
	"strings"
)

// Item is a piece of text identified by its checksum.
type Item struct {
	Checksum uint32
	Text     string
}

// FileRef is an image or document counted alongside the text. URI points
// at an uploaded file; Data carries inline bytes when there is no URI.
type FileRef struct {
	Name     string
	URI      string
	MIMEType string
	Size     int64
	Data     []byte
}

// Request asks for the total tokens of Items plus Refs under Model.
type Request struct {
	ID    uint64
	Model string
	Items []Item
	Refs  []FileRef
}

// Reply answers the Request with the same ID. A failed count has Total 0
// and a non-empty Err.
type Reply struct {
	ID    uint64
	Total int
	Err   string
}

// Backend does the actual counting.
type Backend interface {
	CountText(ctx context.Context, model string, texts []string) ([]int, error)
	CountRefs(ctx context.Context, model string, refs []FileRef) (int, error)
}

// Approximate costs used where no exact count is available.
const (
	imageTokens        = 258
	pdfTokensPerPage   = 258
	pdfBytesPerPage    = 64 * 1024
	otherBytesPerToken = 4
)

// ApproximateRefTokens estimates refs without a remote call.
func ApproximateRefTokens(refs []FileRef) int {
	total := 0
	for _, r := range refs {
		size := r.Size
		if size == 0 {
			size = int64(len(r.Data))
		}
		switch {
		case strings.HasPrefix(r.MIMEType, "image/"):
			total += imageTokens
		case r.MIMEType == "application/pdf":
			pages := max(1, int((size+pdfBytesPerPage-1)/pdfBytesPerPage))
			total += pages * pdfTokensPerPage
		default:
			total += int(size / otherBytesPerToken)
		}
	}
	return total
}

// LocalBackend counts with a Tokenizer and approximates refs.
type LocalBackend struct {
	Tokenizer Tokenizer
}

func NewLocalBackend(t Tokenizer) *LocalBackend {
	return &LocalBackend{Tokenizer: t}
}

func (b *LocalBackend) CountText(ctx context.Context, model string, texts []string) ([]int, error) {
	out := make([]int, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = b.Tokenizer.CountTokens(t)
	}
	return out, nil
}

func (b *LocalBackend) CountRefs(ctx context.Context, model string, refs []FileRef) (int, error) {
	return ApproximateRefTokens(refs), nil
}
