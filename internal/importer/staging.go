package importer

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"promptforge/internal/events"
	"promptforge/internal/fsaccess"
	"promptforge/internal/guard"
	"promptforge/internal/utils"
)

// StageInput is what the user settled on in the filter step.
type StageInput struct {
	Root     fsaccess.DirectoryHandle
	Meta     []ScanMetaEntry
	Selected []string
}

type StageResult struct {
	Files []StagedFile
	Stats RejectionStats
}

type stageItem struct {
	handle fsaccess.Handle
	path   string
}

// ProcessSelectedFiles reads every file under the selected top-level
// entries. FileLimit is checked before each queued item; once it is hit
// the rest of the queue is tallied as LimitReached and the walk ends.
// Each file then passes size, type, read and character-length checks in
// that order, and a failing file is tallied and skipped.
func ProcessSelectedFiles(ctx context.Context, in StageInput, limits Limits) StageResult {
	var res StageResult
	rootName := in.Root.Name()

	kinds := make(map[string]fsaccess.Kind, len(in.Meta))
	for _, m := range in.Meta {
		if !strings.Contains(m.Path, "/") {
			kinds[m.Path] = m.Kind
		}
	}

	var queue []stageItem
	for _, name := range in.Selected {
		h, err := resolveTop(ctx, in.Root, name, kinds[name])
		if err != nil {
			res.Stats.ReadError++
			continue
		}
		queue = append(queue, stageItem{handle: h, path: name})
	}

	processed := 0
	for len(queue) > 0 {
		if len(res.Files) >= limits.FileLimit || processed >= limits.ProcessedCap {
			res.Stats.LimitReached += len(queue)
			break
		}
		item := queue[0]
		queue = queue[1:]
		processed++

		switch h := item.handle.(type) {
		case fsaccess.DirectoryHandle:
			for child, err := range h.Entries(ctx) {
				if err != nil {
					res.Stats.classify(err)
					break
				}
				queue = append(queue, stageItem{handle: child, path: joinPath(item.path, child.Name())})
			}
		case fsaccess.FileHandle:
			f, ok := readTextFile(ctx, h, item.path, limits, &res.Stats)
			if !ok {
				continue
			}
			f.InsideProject = true
			f.RootName = rootName
			res.Files = append(res.Files, f)
		}
	}

	events.Emit(ctx, events.ImporterStage, events.NewSuccess(fmt.Sprintf("staged %d files from %s", len(res.Files), rootName)).
		WithMeta("files", fmt.Sprint(len(res.Files))).
		WithMeta("skipped", fmt.Sprint(res.Stats.Total())))
	return res
}

func resolveTop(ctx context.Context, root fsaccess.DirectoryHandle, name string, kind fsaccess.Kind) (fsaccess.Handle, error) {
	switch kind {
	case fsaccess.KindDirectory:
		return root.GetDirectoryHandle(ctx, name)
	case fsaccess.KindFile:
		return root.GetFileHandle(ctx, name)
	}
	if d, err := root.GetDirectoryHandle(ctx, name); err == nil {
		return d, nil
	}
	return root.GetFileHandle(ctx, name)
}

// readTextFile applies the per-file checks and builds the staged record.
// Failures are tallied into stats.
func readTextFile(ctx context.Context, h fsaccess.FileHandle, p string, limits Limits, stats *RejectionStats) (StagedFile, bool) {
	meta, err := h.Stat(ctx)
	if err != nil {
		stats.classify(err)
		return StagedFile{}, false
	}
	if meta.Size > limits.MaxTextFileSize {
		stats.TooLarge++
		return StagedFile{}, false
	}
	if !guard.IsTextLike(guard.Candidate{Name: p, Type: meta.Type, Size: meta.Size}, limits.MaxTextFileSize) {
		stats.UnsupportedType++
		return StagedFile{}, false
	}
	data, err := h.Read(ctx)
	if err != nil {
		stats.classify(err)
		return StagedFile{}, false
	}
	if guard.LooksBinary(data) {
		stats.UnsupportedType++
		return StagedFile{}, false
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	chars := utf8.RuneCountInString(text)
	if chars > limits.MaxCharLen {
		stats.TooLong++
		return StagedFile{}, false
	}

	mimeType := meta.Type
	if mimeType == "" {
		mimeType = "text/plain"
	}
	return StagedFile{
		ID:         uuid.NewString(),
		Path:       p,
		SourcePath: p,
		Size:       meta.Size,
		MIME:       mimeType,
		Text:       text,
		Name:       path.Base(p),
		CharCount:  chars,
		Checksum:   utils.Checksum32(text),
	}, true
}
