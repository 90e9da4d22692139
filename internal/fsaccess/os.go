package fsaccess

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"promptforge/internal/utils"
)

// DefaultIgnorePatterns are applied when Options.DefaultIgnores is set.
// They use gitignore syntax.
var DefaultIgnorePatterns = []string{
	".git/",
	"node_modules/",
	"__pycache__/",
	"dist/",
	"build/",
	"target/",
	"vendor/",
	"bin/",
	"obj/",
	".idea/",
	".vscode/",
	".zig-cache/",
	"zig-out",
	".coverage",
	"coverage/",
	"tmp/",
	"temp/",
	".cache/",
	"logs/",
	".venv/",
	"venv/",
	".DS_Store",
}

// Options controls which entries an OS directory exposes.
type Options struct {
	// Exclude holds doublestar patterns matched against "/"-joined paths
	// relative to the root.
	Exclude          []string
	DefaultIgnores   bool
	RespectGitignore bool
	// IgnoreFile is an extra file of gitignore patterns, one per line.
	IgnoreFile string
}

type osRoot struct {
	base    string
	fs      billy.Filesystem
	opts    Options
	global  []gitignore.Pattern
	exclude []string
}

type osDir struct {
	root     *osRoot
	rel      string
	patterns []gitignore.Pattern
}

type osFile struct {
	root *osRoot
	rel  string
}

// OpenDir returns a directory handle rooted at dir.
func OpenDir(dir string, opts Options) (DirectoryHandle, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	if eval, err := filepath.EvalSymlinks(abs); err == nil {
		abs = eval
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, mapOSError(err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrTypeMismatch)
	}

	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}

	root := &osRoot{base: abs, fs: osfs.New(abs), opts: opts, exclude: opts.Exclude}

	var patterns []gitignore.Pattern
	if opts.DefaultIgnores {
		for _, p := range DefaultIgnorePatterns {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
	}
	if opts.IgnoreFile != "" {
		lines, err := utils.ReadPatterns(opts.IgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("read ignore file: %w", err)
		}
		for _, l := range lines {
			patterns = append(patterns, gitignore.ParsePattern(l, nil))
		}
	}
	if opts.RespectGitignore {
		if global, err := gitignore.LoadGlobalPatterns(osfs.New("/")); err == nil {
			root.global = global
		}
	}

	d := &osDir{root: root}
	d.patterns = append(patterns, d.localPatterns()...)
	return d, nil
}

// OpenFile returns a handle for a single file picked outside any root.
func OpenFile(file string) (FileHandle, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", file, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, mapOSError(err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", file, ErrTypeMismatch)
	}
	root := &osRoot{base: filepath.Dir(abs)}
	return &osFile{root: root, rel: filepath.Base(abs)}, nil
}

func (d *osDir) Name() string {
	if d.rel == "" {
		return filepath.Base(d.root.base)
	}
	return path.Base(d.rel)
}

func (d *osDir) Kind() Kind { return KindDirectory }

func (d *osDir) ID() string {
	return filepath.Join(d.root.base, filepath.FromSlash(d.rel))
}

func (d *osDir) abs() string {
	return d.ID()
}

func (d *osDir) Entries(ctx context.Context) iter.Seq2[Handle, error] {
	return func(yield func(Handle, error) bool) {
		entries, err := os.ReadDir(d.abs())
		if err != nil {
			yield(nil, mapOSError(err))
			return
		}
		matcher := gitignore.NewMatcher(append(append([]gitignore.Pattern{}, d.root.global...), d.patterns...))
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			rel := joinRel(d.rel, e.Name())
			isDir := e.IsDir()
			if e.Type()&fs.ModeSymlink != 0 {
				info, err := os.Stat(filepath.Join(d.abs(), e.Name()))
				if err != nil {
					continue
				}
				isDir = info.IsDir()
			}
			if d.root.excluded(rel) || matcher.Match(strings.Split(rel, "/"), isDir) {
				continue
			}
			var h Handle
			if isDir {
				child := &osDir{root: d.root, rel: rel}
				child.patterns = append(append([]gitignore.Pattern{}, d.patterns...), child.localPatterns()...)
				h = child
			} else {
				h = &osFile{root: d.root, rel: rel}
			}
			if !yield(h, nil) {
				return
			}
		}
	}
}

func (d *osDir) GetDirectoryHandle(ctx context.Context, name string) (DirectoryHandle, error) {
	rel, abs, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, mapOSError(err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", name, ErrTypeMismatch)
	}
	child := &osDir{root: d.root, rel: rel}
	child.patterns = append(append([]gitignore.Pattern{}, d.patterns...), child.localPatterns()...)
	return child, nil
}

func (d *osDir) GetFileHandle(ctx context.Context, name string) (FileHandle, error) {
	rel, abs, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, mapOSError(err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", name, ErrTypeMismatch)
	}
	return &osFile{root: d.root, rel: rel}, nil
}

// QueryPermission probes the directory by opening it. The OS offers no
// grant prompt, so RequestPermission reports the same state.
func (d *osDir) QueryPermission(ctx context.Context) (Permission, error) {
	f, err := os.Open(d.abs())
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return PermissionDenied, nil
		}
		return PermissionDenied, mapOSError(err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && errors.Is(err, fs.ErrPermission) {
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

func (d *osDir) RequestPermission(ctx context.Context) (Permission, error) {
	return d.QueryPermission(ctx)
}

func (d *osDir) resolve(name string) (rel, abs string, err error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", "", fmt.Errorf("invalid entry name %q: %w", name, ErrNotFound)
	}
	abs, ok := safeJoinUnderBase(d.root.base, filepath.Join(filepath.FromSlash(d.rel), name))
	if !ok {
		return "", "", fmt.Errorf("%s escapes the root: %w", name, ErrPermissionDenied)
	}
	return joinRel(d.rel, name), abs, nil
}

// localPatterns parses the .gitignore that sits in this directory, if any.
func (d *osDir) localPatterns() []gitignore.Pattern {
	if !d.root.opts.RespectGitignore {
		return nil
	}
	data, err := util.ReadFile(d.root.fs, path.Join(d.rel, ".gitignore"))
	if err != nil {
		return nil
	}
	var domain []string
	if d.rel != "" {
		domain = strings.Split(d.rel, "/")
	}
	var out []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, gitignore.ParsePattern(line, domain))
	}
	return out
}

func (f *osFile) Name() string { return path.Base(f.rel) }

func (f *osFile) Kind() Kind { return KindFile }

func (f *osFile) abs() string {
	return filepath.Join(f.root.base, filepath.FromSlash(f.rel))
}

func (f *osFile) Stat(ctx context.Context) (FileMeta, error) {
	info, err := os.Stat(f.abs())
	if err != nil {
		return FileMeta{}, mapOSError(err)
	}
	return FileMeta{
		Name: f.Name(),
		Size: info.Size(),
		Type: mime.TypeByExtension(filepath.Ext(f.rel)),
	}, nil
}

func (f *osFile) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.abs())
	if err != nil {
		return nil, mapOSError(err)
	}
	return data, nil
}

func (r *osRoot) excluded(rel string) bool {
	for _, p := range r.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func joinRel(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func mapOSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// safeJoinUnderBase joins p onto base and reports whether the result,
// after resolving symlinks, still lies within base.
func safeJoinUnderBase(base, p string) (abs string, ok bool) {
	cleanBase := base
	if cleanBase == "" {
		cleanBase = "."
	}
	absBase, err := filepath.Abs(cleanBase)
	if err != nil {
		return "", false
	}
	evalBase, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		evalBase = absBase
	}

	absCandidate, err := filepath.Abs(filepath.Join(evalBase, p))
	if err != nil {
		return "", false
	}
	evalCandidate, err := filepath.EvalSymlinks(absCandidate)
	if err != nil {
		evalCandidate = absCandidate
	}

	rel, err := filepath.Rel(evalBase, evalCandidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return absCandidate, true
}
