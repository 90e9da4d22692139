// Package memfs is an in-memory implementation of the fsaccess handles for
// tests. Directories can be made unreadable, files can fail on read and a
// directory can be made endless to exercise scan caps.
package memfs

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"promptforge/internal/fsaccess"
)

// Dir is an in-memory directory. Children keep insertion order.
type Dir struct {
	mu       sync.Mutex
	id       string
	name     string
	children []fsaccess.Handle
	perm     fsaccess.Permission
	listErr  error
	// endless directories synthesize width subdirectories and width files
	// on every listing, forever.
	endless int
}

// File is an in-memory file.
type File struct {
	name    string
	mime    string
	data    []byte
	size    int64
	statErr error
	readErr error
}

// NewDir creates an empty root directory.
func NewDir(name string) *Dir {
	return &Dir{id: "mem:" + name, name: name, perm: fsaccess.PermissionGranted}
}

// Endless creates a directory whose tree never ends.
func Endless(name string, width int) *Dir {
	d := NewDir(name)
	d.endless = width
	return d
}

// AddFile creates the file at a "/"-joined path, making parents as needed.
func (d *Dir) AddFile(path, content string) *File {
	parent, base := d.parentFor(path)
	f := &File{name: base, data: []byte(content), size: int64(len(content))}
	parent.add(f)
	return f
}

// AddDir creates the directory at path, making parents as needed.
func (d *Dir) AddDir(path string) *Dir {
	cur := d
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		cur = cur.childDir(part)
	}
	return cur
}

// Attach places an existing directory under d.
func (d *Dir) Attach(child *Dir) *Dir {
	child.id = d.id + "/" + child.name
	d.add(child)
	return child
}

// Deny makes the directory unreadable and its permission denied.
func (d *Dir) Deny() *Dir {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.perm = fsaccess.PermissionDenied
	d.listErr = fmt.Errorf("%s: %w", d.name, fsaccess.ErrPermissionDenied)
	return d
}

// SetPermission changes what QueryPermission reports.
func (d *Dir) SetPermission(p fsaccess.Permission) *Dir {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.perm = p
	return d
}

// FailList makes Entries yield err.
func (d *Dir) FailList(err error) *Dir {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listErr = err
	return d
}

// WithType sets the reported MIME type.
func (f *File) WithType(mime string) *File {
	f.mime = mime
	return f
}

// WithSize overrides the reported size without changing the content.
func (f *File) WithSize(n int64) *File {
	f.size = n
	return f
}

// WithData replaces the content with raw bytes.
func (f *File) WithData(b []byte) *File {
	f.data = b
	f.size = int64(len(b))
	return f
}

// FailRead makes Read return err.
func (f *File) FailRead(err error) *File {
	f.readErr = err
	return f
}

// FailStat makes Stat return err.
func (f *File) FailStat(err error) *File {
	f.statErr = err
	return f
}

func (d *Dir) Name() string { return d.name }

func (d *Dir) Kind() fsaccess.Kind { return fsaccess.KindDirectory }

func (d *Dir) ID() string { return d.id }

func (d *Dir) Entries(ctx context.Context) iter.Seq2[fsaccess.Handle, error] {
	return func(yield func(fsaccess.Handle, error) bool) {
		d.mu.Lock()
		listErr := d.listErr
		children := append([]fsaccess.Handle(nil), d.children...)
		endless := d.endless
		d.mu.Unlock()

		if listErr != nil {
			yield(nil, listErr)
			return
		}
		for _, c := range children {
			if !yield(c, nil) {
				return
			}
		}
		for i := 0; i < endless; i++ {
			sub := Endless(fmt.Sprintf("d%d", i), endless)
			sub.id = d.id + "/" + sub.name
			if !yield(sub, nil) {
				return
			}
			f := &File{name: fmt.Sprintf("f%d.txt", i), data: []byte("x"), size: 1}
			if !yield(f, nil) {
				return
			}
		}
	}
}

func (d *Dir) GetDirectoryHandle(ctx context.Context, name string) (fsaccess.DirectoryHandle, error) {
	h, err := d.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	sub, ok := h.(*Dir)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fsaccess.ErrTypeMismatch)
	}
	return sub, nil
}

func (d *Dir) GetFileHandle(ctx context.Context, name string) (fsaccess.FileHandle, error) {
	h, err := d.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	f, ok := h.(*File)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fsaccess.ErrTypeMismatch)
	}
	return f, nil
}

func (d *Dir) QueryPermission(ctx context.Context) (fsaccess.Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.perm, nil
}

func (d *Dir) RequestPermission(ctx context.Context) (fsaccess.Permission, error) {
	return d.QueryPermission(ctx)
}

func (d *Dir) lookup(ctx context.Context, name string) (fsaccess.Handle, error) {
	for h, err := range d.Entries(ctx) {
		if err != nil {
			return nil, err
		}
		if h.Name() == name {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, fsaccess.ErrNotFound)
}

func (d *Dir) add(h fsaccess.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range d.children {
		if c.Name() == h.Name() {
			d.children[i] = h
			return
		}
	}
	d.children = append(d.children, h)
}

func (d *Dir) childDir(name string) *Dir {
	d.mu.Lock()
	for _, c := range d.children {
		if sub, ok := c.(*Dir); ok && sub.name == name {
			d.mu.Unlock()
			return sub
		}
	}
	d.mu.Unlock()
	sub := NewDir(name)
	sub.id = d.id + "/" + name
	d.add(sub)
	return sub
}

func (d *Dir) parentFor(path string) (*Dir, string) {
	path = strings.Trim(path, "/")
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return d, path
	}
	return d.AddDir(path[:i]), path[i+1:]
}

func (f *File) Name() string { return f.name }

func (f *File) Kind() fsaccess.Kind { return fsaccess.KindFile }

func (f *File) Stat(ctx context.Context) (fsaccess.FileMeta, error) {
	if f.statErr != nil {
		return fsaccess.FileMeta{}, f.statErr
	}
	return fsaccess.FileMeta{Name: f.name, Size: f.size, Type: f.mime}, nil
}

func (f *File) Read(ctx context.Context) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]byte(nil), f.data...), nil
}
