package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"promptforge/internal/events"
	"promptforge/internal/fsaccess"
	"promptforge/internal/importer"
)

var ErrScanInProgress = errors.New("another import is in progress")

// ImporterService owns the importer state and the root handles behind it.
// All transitions go through importer.Reduce.
type ImporterService struct {
	limits importer.Limits

	mu          sync.Mutex
	state       importer.State
	roots       map[importer.Slot]fsaccess.DirectoryHandle
	inflight    map[string]bool
	attachments []importer.Attachment
}

func NewImporterService(limits importer.Limits) *ImporterService {
	return &ImporterService{
		limits:   limits,
		state:    importer.Initial(),
		roots:    make(map[importer.Slot]fsaccess.DirectoryHandle),
		inflight: make(map[string]bool),
	}
}

// State returns the current state. Reduce never mutates a state in place
// so the value is safe to keep.
func (s *ImporterService) State() importer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ImporterService) Limits() importer.Limits {
	return s.limits
}

func (s *ImporterService) Root(slot importer.Slot) (fsaccess.DirectoryHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	root, ok := s.roots[slot]
	return root, ok
}

// Scan lists root into the filter step. A second scan of a root that is
// already being scanned does nothing and reports started false. Any other
// import in flight yields ErrScanInProgress.
func (s *ImporterService) Scan(ctx context.Context, slot importer.Slot, root fsaccess.DirectoryHandle) (bool, error) {
	if root == nil {
		return false, ErrNoRoot
	}
	id := root.ID()

	s.mu.Lock()
	if s.inflight[id] {
		s.mu.Unlock()
		return false, nil
	}
	if tag := s.state.Tag; tag != importer.TagIdle && tag != importer.TagStaged {
		busy := s.state.Busy()
		s.mu.Unlock()
		if busy {
			return false, ErrScanInProgress
		}
		return false, fmt.Errorf("cannot scan while %s", tag)
	}
	s.transition(importer.Reduce(s.state, importer.ScanStarted{Slot: slot, Root: importer.RootRef{ID: id, Name: root.Name()}}))
	s.roots[slot] = root
	s.inflight[id] = true
	s.mu.Unlock()

	res := importer.ScanMinimalMetadata(ctx, root, s.limits)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
	s.transition(importer.Reduce(s.state, importer.ScanFinished{Result: res}))
	if _, ok := s.state.Roots[slot]; !ok {
		delete(s.roots, slot)
	}
	return true, nil
}

func (s *ImporterService) Toggle(name string) importer.State {
	return s.apply(importer.ToggleSelection{Name: name})
}

func (s *ImporterService) SetSelection(names []string) importer.State {
	return s.apply(importer.SetSelection{Names: names})
}

func (s *ImporterService) CancelFilter() importer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.state.Slot
	next := importer.Reduce(s.state, importer.CancelFilter{})
	if next.Tag != s.state.Tag {
		delete(s.roots, slot)
	}
	s.transition(next)
	return next
}

// Stage reads the selected entries and merges them into the staged set.
func (s *ImporterService) Stage(ctx context.Context) (importer.State, error) {
	s.mu.Lock()
	if s.state.Tag != importer.TagFilter {
		tag := s.state.Tag
		s.mu.Unlock()
		return importer.State{}, fmt.Errorf("nothing to stage while %s", tag)
	}
	root := s.roots[s.state.Slot]
	in := importer.StageInput{Root: root, Meta: s.state.Meta, Selected: s.state.Selected}
	s.transition(importer.Reduce(s.state, importer.StagingStarted{}))
	s.inflight[root.ID()] = true
	s.mu.Unlock()

	res := importer.ProcessSelectedFiles(ctx, in, s.limits)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, root.ID())
	s.transition(importer.Reduce(s.state, importer.StagingFinished{Result: res, FileLimit: s.limits.FileLimit}))
	return s.state, nil
}

// Pick stages individually chosen files. Images and PDFs become
// attachments.
func (s *ImporterService) Pick(ctx context.Context, files []fsaccess.FileHandle) (importer.PickResult, error) {
	s.mu.Lock()
	if s.state.Tag != importer.TagIdle && s.state.Tag != importer.TagStaged {
		s.mu.Unlock()
		return importer.PickResult{}, ErrScanInProgress
	}
	in := importer.PickInput{Files: files, Staged: len(s.state.Files), Attached: len(s.attachments)}
	s.mu.Unlock()

	res := importer.StagePicked(ctx, in, s.limits)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Tag != importer.TagIdle && s.state.Tag != importer.TagStaged {
		return importer.PickResult{}, ErrScanInProgress
	}
	s.transition(importer.Reduce(s.state, importer.FilesPicked{Files: res.Files, Stats: res.Stats, FileLimit: s.limits.FileLimit}))
	s.attachments = append(s.attachments, res.Attachments...)
	return res, nil
}

// Remove drops a staged file or an attachment by id.
func (s *ImporterService) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.IndexFunc(s.attachments, func(a importer.Attachment) bool { return a.ID == id }); i >= 0 {
		s.attachments = slices.Delete(slices.Clone(s.attachments), i, i+1)
		return true
	}
	before := len(s.state.Files)
	s.transition(importer.Reduce(s.state, importer.RemoveFile{ID: id}))
	return len(s.state.Files) < before
}

func (s *ImporterService) Clear() importer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := importer.Reduce(s.state, importer.ClearAll{})
	if next.Tag == importer.TagIdle {
		s.roots = make(map[importer.Slot]fsaccess.DirectoryHandle)
		s.attachments = nil
	}
	s.transition(next)
	return next
}

func (s *ImporterService) Attachments() []importer.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.attachments)
}

// Summary describes what the last batch skipped, or "".
func (s *ImporterService) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Stats.Summary(s.limits)
}

// SessionSummary describes everything skipped since the last clear.
func (s *ImporterService) SessionSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session.Summary(s.limits)
}

// transition stores next and reports tag changes. Callers hold mu.
func (s *ImporterService) transition(next importer.State) {
	prev := s.state.Tag
	s.state = next
	if next.Tag != prev {
		events.Emit(context.Background(), events.ImporterState, events.NewDebug("importer state changed").
			WithMeta("from", string(prev)).
			WithMeta("to", string(next.Tag)).
			WithMeta("files", strconv.Itoa(len(next.Files))))
	}
}

func (s *ImporterService) apply(e importer.Event) importer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transition(importer.Reduce(s.state, e))
	return s.state
}
