package importer

import (
	"fmt"
	"path"
	"strings"

	"promptforge/internal/utils"
)

// MergeOutcome is the merged set plus what happened to the incoming files.
type MergeOutcome struct {
	Files      []StagedFile
	Renamed    int
	Duplicates int
	Dropped    int
}

type pairKey struct {
	path string
	sum  uint32
}

// mergeIndex tracks names and identities already present in the set.
type mergeIndex struct {
	// sums maps a basename to the checksums staged under it.
	sums map[string]map[uint32]struct{}
	// paths holds every final path in the set.
	paths map[string]struct{}
	// pairs holds (source path, checksum) identities.
	pairs map[pairKey]struct{}
}

func newMergeIndex() *mergeIndex {
	return &mergeIndex{
		sums:  make(map[string]map[uint32]struct{}),
		paths: make(map[string]struct{}),
		pairs: make(map[pairKey]struct{}),
	}
}

func (m *mergeIndex) record(f StagedFile) {
	base := path.Base(f.Path)
	if m.sums[base] == nil {
		m.sums[base] = make(map[uint32]struct{})
	}
	m.sums[base][f.Checksum] = struct{}{}
	if orig := sourceBase(f); orig != base {
		if m.sums[orig] == nil {
			m.sums[orig] = make(map[uint32]struct{})
		}
		m.sums[orig][f.Checksum] = struct{}{}
	}
	m.paths[f.Path] = struct{}{}
	m.pairs[pairKey{path: sourceOf(f), sum: f.Checksum}] = struct{}{}
}

// Merge folds incoming into existing in order and returns a new slice.
// Files sharing a basename but not content are renamed with a checksum
// fragment so nothing is overwritten. A file whose source path and
// checksum are already present is counted as a duplicate and skipped.
// The result never exceeds fileLimit entries.
func Merge(existing, incoming []StagedFile, fileLimit int) MergeOutcome {
	var out MergeOutcome
	out.Files = make([]StagedFile, 0, min(len(existing)+len(incoming), max(fileLimit, 0)))

	idx := newMergeIndex()
	for _, f := range existing {
		if len(out.Files) >= fileLimit {
			out.Dropped++
			continue
		}
		out.Files = append(out.Files, f)
		idx.record(f)
	}

	for _, f := range incoming {
		if _, dup := idx.pairs[pairKey{path: sourceOf(f), sum: f.Checksum}]; dup {
			out.Duplicates++
			continue
		}
		if len(out.Files) >= fileLimit {
			out.Dropped++
			continue
		}

		base := path.Base(f.Path)
		seen, taken := idx.sums[base]
		_, samePath := idx.paths[f.Path]
		if taken || samePath {
			if _, sameContent := seen[f.Checksum]; sameContent && !samePath {
				// Identical content under another directory loses nothing.
				out.Files = append(out.Files, f)
				idx.record(f)
				continue
			}
			renamed := f
			if renamed.SourcePath == "" {
				renamed.SourcePath = f.Path
			}
			renamed.Path = idx.freeCollisionPath(f.Path, f.Checksum)
			renamed.Name = path.Base(renamed.Path)
			renamed.Note = fmt.Sprintf("renamed from %s: a different %s is already staged", f.Path, base)
			out.Files = append(out.Files, renamed)
			out.Renamed++
			idx.record(renamed)
			continue
		}

		out.Files = append(out.Files, f)
		idx.record(f)
	}
	return out
}

// MergeFiles is Merge without the bookkeeping.
func MergeFiles(existing, incoming []StagedFile, fileLimit int) []StagedFile {
	return Merge(existing, incoming, fileLimit).Files
}

// freeCollisionPath returns the first unused checksum-suffixed path for p.
func (m *mergeIndex) freeCollisionPath(p string, sum uint32) string {
	for n := 0; ; n++ {
		candidate := CollisionPath(p, sum, n)
		_, pathTaken := m.paths[candidate]
		_, nameTaken := m.sums[path.Base(candidate)]
		if !pathTaken && !nameTaken {
			return candidate
		}
	}
}

// CollisionPath inserts the six-hex checksum fragment before the extension
// of p, followed by "(n)" when n > 0. Names without an extension and
// dotfiles get the fragment appended.
func CollisionPath(p string, sum uint32, n int) string {
	dir, base := path.Split(p)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}
	name := stem + "." + utils.ShortChecksum(sum)
	if n > 0 {
		name += fmt.Sprintf("(%d)", n)
	}
	return dir + name + ext
}

func sourceOf(f StagedFile) string {
	if f.SourcePath != "" {
		return f.SourcePath
	}
	return f.Path
}

func sourceBase(f StagedFile) string {
	return path.Base(sourceOf(f))
}
