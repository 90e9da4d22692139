// Package fsaccess models capability handles to directories and files.
// Callers only see the interfaces. The OS adapter lives in this package and
// an in-memory fake lives in fsaccess/memfs.
package fsaccess

import (
	"context"
	"errors"
	"iter"
)

type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionPrompt  Permission = "prompt"
	PermissionDenied  Permission = "denied"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrTypeMismatch     = errors.New("entry has a different kind")
)

// Handle is the common part of file and directory handles.
type Handle interface {
	Name() string
	Kind() Kind
}

// FileMeta is what Stat reports. Type may be empty when unknown.
type FileMeta struct {
	Name string
	Size int64
	Type string
}

type FileHandle interface {
	Handle
	Stat(ctx context.Context) (FileMeta, error)
	Read(ctx context.Context) ([]byte, error)
}

type DirectoryHandle interface {
	Handle
	// ID identifies the underlying directory across handle instances.
	ID() string
	// Entries yields the immediate children. A failure is yielded once as
	// (nil, err) and ends the sequence.
	Entries(ctx context.Context) iter.Seq2[Handle, error]
	GetDirectoryHandle(ctx context.Context, name string) (DirectoryHandle, error)
	GetFileHandle(ctx context.Context, name string) (FileHandle, error)
	QueryPermission(ctx context.Context) (Permission, error)
	RequestPermission(ctx context.Context) (Permission, error)
}

// IsPermission reports whether err is a permission failure.
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsNotFound reports whether err means the entry does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
