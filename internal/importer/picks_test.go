package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/fsaccess"
	"promptforge/internal/fsaccess/memfs"
)

func TestStagePickedRoutesByType(t *testing.T) {
	root := memfs.NewDir("picks")
	text := root.AddFile("notes.md", "# notes")
	img := root.AddFile("shot.png", "\x89PNG").WithType("image/png")
	pdf := root.AddFile("paper.pdf", "%PDF-1.7")
	song := root.AddFile("song.mp3", "ID3")

	res := StagePicked(context.Background(), PickInput{Files: []fsaccess.FileHandle{text, img, pdf, song}}, DefaultLimits())

	require.Len(t, res.Files, 1)
	assert.Equal(t, "notes.md", res.Files[0].Path)
	assert.False(t, res.Files[0].InsideProject)
	assert.Empty(t, res.Files[0].RootName)

	require.Len(t, res.Attachments, 2)
	assert.Equal(t, "image/png", res.Attachments[0].MIME)
	assert.Equal(t, "application/pdf", res.Attachments[1].MIME)
	assert.Equal(t, 1, res.Stats.UnsupportedType)
}

func TestStagePickedCaps(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxAttachments = 1
	limits.FileLimit = 1
	root := memfs.NewDir("picks")
	a := root.AddFile("a.png", "1")
	b := root.AddFile("b.png", "2")
	huge := root.AddFile("c.pdf", "3").WithSize(limits.MaxAttachmentSize + 1)
	t1 := root.AddFile("one.txt", "1")

	res := StagePicked(context.Background(), PickInput{Files: []fsaccess.FileHandle{huge, a, b, t1}, Staged: 1}, limits)

	assert.Len(t, res.Attachments, 1)
	assert.Empty(t, res.Files)
	assert.Equal(t, RejectionStats{TooLarge: 1, LimitReached: 2}, res.Stats)
}
