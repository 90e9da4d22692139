package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindEnvFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("X=1\n"), 0o644))

	got, err := FindEnvFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".env"), got)
}

func TestFindEnvFileStopsAtRepoRoot(t *testing.T) {
	outer := t.TempDir()
	repo := filepath.Join(outer, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outer, ".env"), []byte("X=1\n"), 0o644))

	_, err := FindEnvFile(repo)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".promptignore")
	require.NoError(t, os.WriteFile(path, []byte("# build output\ndist/\n\n  *.log  \r\n\\#notes.md\n"), 0o644))

	got, err := ReadPatterns(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"dist/", "*.log", "#notes.md"}, got)
}

func TestReadPatternsMissingFile(t *testing.T) {
	_, err := ReadPatterns(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
