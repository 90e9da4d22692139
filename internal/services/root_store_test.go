package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/fsaccess"
	"promptforge/internal/fsaccess/memfs"
	"promptforge/internal/importer"
	"promptforge/internal/tests/mocks"
)

func memOpener(dirs ...*memfs.Dir) RootOpener {
	return func(id string) (fsaccess.DirectoryHandle, error) {
		for _, d := range dirs {
			if d.ID() == id {
				return d, nil
			}
		}
		return nil, fsaccess.ErrNotFound
	}
}

func TestRootStore_SaveRestore(t *testing.T) {
	ctx := context.Background()
	dir := memfs.NewDir("proj")
	kv := &mocks.KVRepositoryMock{}
	store := NewRootStore(kv, memOpener(dir))

	require.NoError(t, store.Save(ctx, importer.SlotPrimary, dir))
	got, err := store.Restore(ctx, importer.SlotPrimary)
	require.NoError(t, err)
	assert.Equal(t, "proj", got.Name())

	_, err = store.Restore(ctx, importer.SlotSecondary)
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestRootStore_PermissionRevoked(t *testing.T) {
	ctx := context.Background()
	dir := memfs.NewDir("proj")
	store := NewRootStore(&mocks.KVRepositoryMock{}, memOpener(dir))
	require.NoError(t, store.Save(ctx, importer.SlotPrimary, dir))

	dir.SetPermission(fsaccess.PermissionPrompt)
	_, err := store.Restore(ctx, importer.SlotPrimary)
	assert.ErrorIs(t, err, ErrNoRoot)

	dir.SetPermission(fsaccess.PermissionGranted)
	_, err = store.Restore(ctx, importer.SlotPrimary)
	assert.ErrorIs(t, err, ErrNoRoot, "stale entry is dropped")
}

func TestRootStore_RootGone(t *testing.T) {
	ctx := context.Background()
	dir := memfs.NewDir("proj")
	store := NewRootStore(&mocks.KVRepositoryMock{}, memOpener())
	require.NoError(t, store.Save(ctx, importer.SlotPrimary, dir))

	_, err := store.Restore(ctx, importer.SlotPrimary)
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestRootStore_StorageError(t *testing.T) {
	kv := &mocks.KVRepositoryMock{
		GetFunc: func(ctx context.Context, key string) (string, bool, error) {
			return "", false, errors.New("locked")
		},
	}
	store := NewRootStore(kv, memOpener())
	_, err := store.Restore(context.Background(), importer.SlotPrimary)
	assert.EqualError(t, err, "locked")
}

func TestRootStore_Clear(t *testing.T) {
	ctx := context.Background()
	dir := memfs.NewDir("proj")
	store := NewRootStore(&mocks.KVRepositoryMock{}, memOpener(dir))
	require.NoError(t, store.Save(ctx, importer.SlotPrimary, dir))
	require.NoError(t, store.Clear(ctx, importer.SlotPrimary))

	_, err := store.Restore(ctx, importer.SlotPrimary)
	assert.ErrorIs(t, err, ErrNoRoot)
}
