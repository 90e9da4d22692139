package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/importer"
	"promptforge/internal/prompt"
	"promptforge/internal/tokens"
)

func TestParseID(t *testing.T) {
	id, err := parseID("12")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestDescribeEstimate(t *testing.T) {
	assert.Equal(t, "~42 tokens", describeEstimate(tokens.Estimate{Tokens: 42}))
	assert.Equal(t, "token estimate pending", describeEstimate(tokens.Estimate{Pending: true}))
	assert.Equal(t, "token estimate unavailable: quota", describeEstimate(tokens.Estimate{Err: "quota"}))
}

func TestSetFormBlocks(t *testing.T) {
	blocks := prompt.NewBlockSet(5)
	setFormBlocks(blocks, prompt.Form{Goal: "ship it", UseDefaultReturnFormat: true})

	form := blocks.Form()
	assert.Equal(t, "ship it", form.Goal)
	assert.Equal(t, prompt.DefaultReturnFormat, form.ReturnFormat)
	assert.Len(t, blocks.TokenItems(), 2)
}

func TestOpenPickedExpandsGlobs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "deep", "b.go"), []byte("package b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("n"), 0o644))

	picked, err := openPicked([]string{
		filepath.Join(dir, "src", "**", "*.go"),
		filepath.Join(dir, "src", "a.go"),
	})
	require.NoError(t, err)

	var names []string
	for _, h := range picked {
		names = append(names, h.Name())
	}
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, names)
}

func TestAttachmentRefs(t *testing.T) {
	refs := attachmentRefs([]importer.Attachment{{ID: "1", Name: "a.png", MIME: "image/png", Size: 3, Data: []byte("png")}})
	require.Len(t, refs, 1)
	assert.Equal(t, "image/png", refs[0].MIMEType)
	assert.Equal(t, int64(3), refs[0].Size)
}

func TestProjectRootNameFallsBackToSecondary(t *testing.T) {
	assert.Equal(t, "app", projectRootName(map[importer.Slot]importer.RootRef{
		importer.SlotPrimary:   {ID: "/a", Name: "app"},
		importer.SlotSecondary: {ID: "/b", Name: "lib"},
	}))
	assert.Equal(t, "lib", projectRootName(map[importer.Slot]importer.RootRef{
		importer.SlotSecondary: {ID: "/b", Name: "lib"},
	}))
	assert.Empty(t, projectRootName(nil))
}

func TestSetFormBlocksFillsEveryLabel(t *testing.T) {
	blocks := prompt.NewBlockSet(5)
	setFormBlocks(blocks, prompt.Form{Goal: "g", Requirements: "r", ReturnFormat: "f", Warnings: "w", Context: "c"})
	assert.Equal(t, prompt.Form{Goal: "g", Requirements: "r", ReturnFormat: "f", Warnings: "w", Context: "c"}, blocks.Form())
}
