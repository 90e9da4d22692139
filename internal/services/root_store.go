package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"promptforge/internal/fsaccess"
	"promptforge/internal/importer"
	"promptforge/internal/logging"
	"promptforge/internal/repositories"
)

var ErrNoRoot = errors.New("no import root")

// RootOpener turns a saved root id back into a handle.
type RootOpener func(id string) (fsaccess.DirectoryHandle, error)

// RootStore remembers the granted roots between sessions. Every restore
// checks the live permission again.
type RootStore struct {
	kv   repositories.KVRepository
	open RootOpener
}

func NewRootStore(kv repositories.KVRepository, open RootOpener) *RootStore {
	return &RootStore{kv: kv, open: open}
}

func rootKey(slot importer.Slot) string {
	return "root:" + string(slot)
}

func (s *RootStore) Save(ctx context.Context, slot importer.Slot, root fsaccess.DirectoryHandle) error {
	if root == nil {
		return fmt.Errorf("%s: %w", slot, ErrNoRoot)
	}
	return s.kv.Set(ctx, rootKey(slot), root.ID())
}

// Restore reopens the root saved for slot. A missing root, an unusable
// path and a permission that is no longer granted all yield ErrNoRoot, and
// the stale entry is dropped.
func (s *RootStore) Restore(ctx context.Context, slot importer.Slot) (fsaccess.DirectoryHandle, error) {
	id, ok, err := s.kv.Get(ctx, rootKey(slot))
	if err != nil {
		return nil, err
	}
	if !ok || id == "" {
		return nil, fmt.Errorf("%s: %w", slot, ErrNoRoot)
	}
	root, err := s.open(id)
	if err != nil {
		logging.Debug("saved root unavailable", zap.String("slot", string(slot)), zap.String("id", id), zap.Error(err))
		return nil, s.forget(ctx, slot)
	}
	perm, err := root.QueryPermission(ctx)
	if err != nil || perm != fsaccess.PermissionGranted {
		logging.Debug("saved root no longer granted", zap.String("slot", string(slot)), zap.String("permission", string(perm)))
		return nil, s.forget(ctx, slot)
	}
	return root, nil
}

func (s *RootStore) forget(ctx context.Context, slot importer.Slot) error {
	if err := s.kv.Delete(ctx, rootKey(slot)); err != nil {
		logging.Warn("failed to drop saved root", zap.String("slot", string(slot)), zap.Error(err))
	}
	return fmt.Errorf("%s: %w", slot, ErrNoRoot)
}

func (s *RootStore) Clear(ctx context.Context, slot importer.Slot) error {
	return s.kv.Delete(ctx, rootKey(slot))
}
