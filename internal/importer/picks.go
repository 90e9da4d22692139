package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"promptforge/internal/events"
	"promptforge/internal/fsaccess"
	"promptforge/internal/guard"
)

// PickInput describes files chosen individually, outside any root.
type PickInput struct {
	Files []fsaccess.FileHandle
	// Staged and Attached are the counts already held, so the caps apply
	// to the running totals.
	Staged   int
	Attached int
}

type PickResult struct {
	Files       []StagedFile
	Attachments []Attachment
	Stats       RejectionStats
}

// StagePicked routes images and PDFs to attachments and everything else
// through the text checks. Audio and video are rejected.
func StagePicked(ctx context.Context, in PickInput, limits Limits) PickResult {
	var res PickResult
	for _, h := range in.Files {
		meta, err := h.Stat(ctx)
		if err != nil {
			res.Stats.classify(err)
			continue
		}
		c := guard.Candidate{Name: meta.Name, Type: meta.Type, Size: meta.Size}

		switch {
		case guard.IsAudioOrVideo(c):
			res.Stats.UnsupportedType++

		case guard.IsImage(c) || guard.IsPDF(c):
			if in.Attached+len(res.Attachments) >= limits.MaxAttachments {
				res.Stats.LimitReached++
				continue
			}
			if meta.Size > limits.MaxAttachmentSize {
				res.Stats.TooLarge++
				continue
			}
			data, err := h.Read(ctx)
			if err != nil {
				res.Stats.classify(err)
				continue
			}
			res.Attachments = append(res.Attachments, Attachment{
				ID:   uuid.NewString(),
				Name: meta.Name,
				MIME: attachmentMIME(c),
				Size: int64(len(data)),
				Data: data,
			})

		default:
			if in.Staged+len(res.Files) >= limits.FileLimit {
				res.Stats.LimitReached++
				continue
			}
			f, ok := readTextFile(ctx, h, meta.Name, limits, &res.Stats)
			if !ok {
				continue
			}
			res.Files = append(res.Files, f)
		}
	}

	events.Emit(ctx, events.ImporterStage, events.NewInfo(
		fmt.Sprintf("picked %d files and %d attachments", len(res.Files), len(res.Attachments))))
	return res
}

func attachmentMIME(c guard.Candidate) string {
	if guard.IsPDF(c) {
		return "application/pdf"
	}
	if c.Type != "" {
		return c.Type
	}
	if mt := guard.ImageMIME(c.Name); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
