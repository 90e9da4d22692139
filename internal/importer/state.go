package importer

import "slices"

type Tag string

const (
	TagIdle     Tag = "IDLE"
	TagScanning Tag = "SCANNING"
	TagFilter   Tag = "FILTER"
	TagStaging  Tag = "STAGING"
	TagStaged   Tag = "STAGED"
)

// Slot tells the primary root apart from an additional one imported into
// the same staged set.
type Slot string

const (
	SlotPrimary   Slot = "primary"
	SlotSecondary Slot = "secondary"
)

// RootRef names a granted root without holding the handle.
type RootRef struct {
	ID   string
	Name string
}

// State is the importer state machine value. Only Reduce produces new
// states. Slices are never shared with the previous value.
type State struct {
	Tag      Tag
	Slot     Slot
	Roots    map[Slot]RootRef
	Tops     []TopEntry
	Selected []string
	Meta     []ScanMetaEntry
	Files    []StagedFile
	// Stats covers the current batch: one scan with its stage, or one pick.
	// Session accumulates every settled batch since the last clear.
	Stats   RejectionStats
	Session RejectionStats
	Merge   MergeOutcome
}

// Event is a state machine input.
type Event interface {
	isEvent()
}

type ScanStarted struct {
	Slot Slot
	Root RootRef
}

type ScanFinished struct {
	Result ScanResult
}

type ToggleSelection struct {
	Name string
}

type SetSelection struct {
	Names []string
}

type CancelFilter struct{}

type StagingStarted struct{}

type StagingFinished struct {
	Result    StageResult
	FileLimit int
}

type FilesPicked struct {
	Files     []StagedFile
	Stats     RejectionStats
	FileLimit int
}

type RemoveFile struct {
	ID string
}

type ClearAll struct{}

func (ScanStarted) isEvent()     {}
func (ScanFinished) isEvent()    {}
func (ToggleSelection) isEvent() {}
func (SetSelection) isEvent()    {}
func (CancelFilter) isEvent()    {}
func (StagingStarted) isEvent()  {}
func (StagingFinished) isEvent() {}
func (FilesPicked) isEvent()     {}
func (RemoveFile) isEvent()      {}
func (ClearAll) isEvent()        {}

// Initial is the empty IDLE state.
func Initial() State {
	return State{Tag: TagIdle}
}

// Reduce applies e to s. Events that are not valid for the current tag
// return s unchanged.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case ScanStarted:
		if s.Tag != TagIdle && s.Tag != TagStaged {
			return s
		}
		next := s.clone()
		next.Tag = TagScanning
		next.Slot = ev.Slot
		next.Roots[ev.Slot] = ev.Root
		next.Tops, next.Selected, next.Meta = nil, nil, nil
		next.Stats = RejectionStats{}
		return next

	case ScanFinished:
		if s.Tag != TagScanning {
			return s
		}
		next := s.clone()
		next.Stats = ev.Result.Stats
		if len(ev.Result.Tops) == 0 {
			next.Tag = settled(next)
			delete(next.Roots, next.Slot)
			next.Session.Add(next.Stats)
			return next
		}
		next.Tag = TagFilter
		next.Tops = slices.Clone(ev.Result.Tops)
		next.Meta = slices.Clone(ev.Result.Meta)
		next.Selected = make([]string, 0, len(ev.Result.Tops))
		for _, t := range ev.Result.Tops {
			next.Selected = append(next.Selected, t.Name)
		}
		return next

	case ToggleSelection:
		if s.Tag != TagFilter || !s.hasTop(ev.Name) {
			return s
		}
		next := s.clone()
		if i := slices.Index(next.Selected, ev.Name); i >= 0 {
			next.Selected = slices.Delete(next.Selected, i, i+1)
		} else {
			next.Selected = next.orderedSelection(append(next.Selected, ev.Name))
		}
		return next

	case SetSelection:
		if s.Tag != TagFilter {
			return s
		}
		next := s.clone()
		var keep []string
		for _, n := range ev.Names {
			if s.hasTop(n) {
				keep = append(keep, n)
			}
		}
		next.Selected = next.orderedSelection(keep)
		return next

	case CancelFilter:
		if s.Tag != TagFilter {
			return s
		}
		next := s.clone()
		delete(next.Roots, next.Slot)
		next.Tops, next.Selected, next.Meta = nil, nil, nil
		next.Tag = settled(next)
		next.Session.Add(next.Stats)
		return next

	case StagingStarted:
		if s.Tag != TagFilter {
			return s
		}
		next := s.clone()
		next.Tag = TagStaging
		return next

	case StagingFinished:
		if s.Tag != TagStaging {
			return s
		}
		next := s.clone()
		next.Merge = Merge(s.Files, ev.Result.Files, ev.FileLimit)
		next.Files = next.Merge.Files
		next.Stats.Add(ev.Result.Stats)
		next.Stats.LimitReached += next.Merge.Dropped
		next.Session.Add(next.Stats)
		next.Tops, next.Selected, next.Meta = nil, nil, nil
		next.Tag = TagStaged
		return next

	case FilesPicked:
		if s.Tag != TagIdle && s.Tag != TagStaged {
			return s
		}
		next := s.clone()
		next.Merge = Merge(s.Files, ev.Files, ev.FileLimit)
		next.Files = next.Merge.Files
		next.Stats = ev.Stats
		next.Stats.LimitReached += next.Merge.Dropped
		next.Session.Add(next.Stats)
		next.Tag = settled(next)
		return next

	case RemoveFile:
		if s.Tag != TagStaged {
			return s
		}
		i := slices.IndexFunc(s.Files, func(f StagedFile) bool { return f.ID == ev.ID })
		if i < 0 {
			return s
		}
		next := s.clone()
		next.Files = slices.Delete(next.Files, i, i+1)
		next.Tag = settled(next)
		return next

	case ClearAll:
		if s.Tag == TagScanning || s.Tag == TagStaging {
			return s
		}
		return Initial()
	}
	return s
}

// Busy reports whether a scan or stage is in flight.
func (s State) Busy() bool {
	return s.Tag == TagScanning || s.Tag == TagStaging
}

func (s State) clone() State {
	next := s
	next.Roots = make(map[Slot]RootRef, len(s.Roots)+1)
	for k, v := range s.Roots {
		next.Roots[k] = v
	}
	next.Tops = slices.Clone(s.Tops)
	next.Selected = slices.Clone(s.Selected)
	next.Meta = slices.Clone(s.Meta)
	next.Files = slices.Clone(s.Files)
	return next
}

func (s State) hasTop(name string) bool {
	return slices.ContainsFunc(s.Tops, func(t TopEntry) bool { return t.Name == name })
}

// orderedSelection returns names in Tops order without duplicates.
func (s State) orderedSelection(names []string) []string {
	out := make([]string, 0, len(names))
	for _, t := range s.Tops {
		if slices.Contains(names, t.Name) {
			out = append(out, t.Name)
		}
	}
	return out
}

func settled(s State) Tag {
	if len(s.Files) > 0 {
		return TagStaged
	}
	return TagIdle
}
