package memfs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/fsaccess"
)

func TestDirTree(t *testing.T) {
	ctx := context.Background()
	root := NewDir("proj")
	root.AddFile("src/a.js", "X").WithType("text/javascript")
	root.AddFile("README.md", "# proj")

	var got []string
	for h, err := range root.Entries(ctx) {
		require.NoError(t, err)
		got = append(got, h.Name())
	}
	assert.Equal(t, []string{"src", "README.md"}, got)

	src, err := root.GetDirectoryHandle(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, "mem:proj/src", src.ID())

	f, err := src.GetFileHandle(ctx, "a.js")
	require.NoError(t, err)
	meta, err := f.Stat(ctx)
	require.NoError(t, err)
	assert.Equal(t, fsaccess.FileMeta{Name: "a.js", Size: 1, Type: "text/javascript"}, meta)

	_, err = root.GetFileHandle(ctx, "nope")
	assert.True(t, fsaccess.IsNotFound(err))
	_, err = root.GetFileHandle(ctx, "src")
	assert.ErrorIs(t, err, fsaccess.ErrTypeMismatch)
}

func TestDenyAndFailures(t *testing.T) {
	ctx := context.Background()
	root := NewDir("proj")
	root.AddDir("secret").Deny()
	boom := errors.New("boom")
	root.AddFile("bad.txt", "x").FailRead(boom)

	secret, err := root.GetDirectoryHandle(ctx, "secret")
	require.NoError(t, err)
	perm, err := secret.QueryPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, fsaccess.PermissionDenied, perm)
	for _, err := range secret.Entries(ctx) {
		assert.True(t, fsaccess.IsPermission(err))
	}

	bad, err := root.GetFileHandle(ctx, "bad.txt")
	require.NoError(t, err)
	_, err = bad.Read(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestEndlessStopsWhenConsumerStops(t *testing.T) {
	root := Endless("deep", 3)
	n := 0
	for range root.Entries(context.Background()) {
		n++
		if n == 4 {
			break
		}
	}
	assert.Equal(t, 4, n)
}
