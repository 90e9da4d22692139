package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/fsaccess"
)

func scanned(names ...string) ScanResult {
	var res ScanResult
	for _, n := range names {
		res.Tops = append(res.Tops, TopEntry{Name: n, Kind: fsaccess.KindDirectory})
		res.Meta = append(res.Meta, ScanMetaEntry{Path: n, Kind: fsaccess.KindDirectory})
	}
	return res
}

func TestReduceHappyPath(t *testing.T) {
	s := Initial()
	s = Reduce(s, ScanStarted{Slot: SlotPrimary, Root: RootRef{ID: "r1", Name: "proj"}})
	require.Equal(t, TagScanning, s.Tag)
	assert.True(t, s.Busy())

	s = Reduce(s, ScanFinished{Result: scanned("src", "docs")})
	require.Equal(t, TagFilter, s.Tag)
	assert.Equal(t, []string{"src", "docs"}, s.Selected)

	s = Reduce(s, ToggleSelection{Name: "docs"})
	assert.Equal(t, []string{"src"}, s.Selected)
	s = Reduce(s, ToggleSelection{Name: "docs"})
	assert.Equal(t, []string{"src", "docs"}, s.Selected)
	s = Reduce(s, SetSelection{Names: []string{"docs", "nope"}})
	assert.Equal(t, []string{"docs"}, s.Selected)

	s = Reduce(s, StagingStarted{})
	require.Equal(t, TagStaging, s.Tag)

	s = Reduce(s, StagingFinished{Result: StageResult{Files: []StagedFile{staged("docs/a.md", 1)}}, FileLimit: 500})
	require.Equal(t, TagStaged, s.Tag)
	assert.Len(t, s.Files, 1)
	assert.Nil(t, s.Tops)
	assert.Equal(t, RootRef{ID: "r1", Name: "proj"}, s.Roots[SlotPrimary])
}

func TestReduceIgnoresInvalidEvents(t *testing.T) {
	idle := Initial()
	assert.Equal(t, idle, Reduce(idle, StagingStarted{}))
	assert.Equal(t, idle, Reduce(idle, ScanFinished{Result: scanned("a")}))
	assert.Equal(t, idle, Reduce(idle, ToggleSelection{Name: "a"}))
	assert.Equal(t, idle, Reduce(idle, RemoveFile{ID: "x"}))

	scanning := Reduce(idle, ScanStarted{Slot: SlotPrimary, Root: RootRef{ID: "r"}})
	assert.Equal(t, scanning, Reduce(scanning, ScanStarted{Slot: SlotSecondary}))
	assert.Equal(t, scanning, Reduce(scanning, ClearAll{}))
	assert.Equal(t, scanning, Reduce(scanning, StagingFinished{}))
}

func TestReduceEmptyScanSettles(t *testing.T) {
	s := Reduce(Initial(), ScanStarted{Slot: SlotPrimary, Root: RootRef{ID: "r"}})
	s = Reduce(s, ScanFinished{Result: ScanResult{Stats: RejectionStats{PermissionDenied: 1}}})
	assert.Equal(t, TagIdle, s.Tag)
	assert.Equal(t, 1, s.Stats.PermissionDenied)
	assert.Empty(t, s.Roots)
}

func TestReduceSecondRootMergesIntoStaged(t *testing.T) {
	s := Reduce(Initial(), FilesPicked{Files: []StagedFile{staged("a.js", 1)}, FileLimit: 500})
	require.Equal(t, TagStaged, s.Tag)

	s = Reduce(s, ScanStarted{Slot: SlotSecondary, Root: RootRef{ID: "r2", Name: "other"}})
	s = Reduce(s, ScanFinished{Result: scanned("lib")})
	s = Reduce(s, StagingStarted{})
	s = Reduce(s, StagingFinished{Result: StageResult{Files: []StagedFile{staged("a.js", 2)}}, FileLimit: 500})

	require.Len(t, s.Files, 2)
	assert.Equal(t, "a.000002.js", s.Files[1].Path)
	assert.Equal(t, 1, s.Merge.Renamed)
	assert.Equal(t, "other", s.Roots[SlotSecondary].Name)
}

func TestReduceCancelFilterKeepsFiles(t *testing.T) {
	s := Reduce(Initial(), FilesPicked{Files: []StagedFile{staged("a.js", 1)}, FileLimit: 500})
	s = Reduce(s, ScanStarted{Slot: SlotPrimary, Root: RootRef{ID: "r"}})
	s = Reduce(s, ScanFinished{Result: scanned("src")})
	s = Reduce(s, CancelFilter{})
	assert.Equal(t, TagStaged, s.Tag)
	assert.Len(t, s.Files, 1)
}

func TestReduceRemoveAndClear(t *testing.T) {
	s := Reduce(Initial(), FilesPicked{Files: []StagedFile{staged("a.js", 1), staged("b.js", 2)}, FileLimit: 500})
	before := s
	s = Reduce(s, RemoveFile{ID: "a.js-1"})
	require.Len(t, s.Files, 1)
	assert.Equal(t, "b.js", s.Files[0].Path)
	assert.Len(t, before.Files, 2, "previous state must not change")

	s = Reduce(s, ClearAll{})
	assert.Equal(t, Initial(), s)
}

func TestReduceMergeDropsCountAsLimitReached(t *testing.T) {
	s := Reduce(Initial(), FilesPicked{Files: []StagedFile{staged("a.js", 1), staged("b.js", 2)}, FileLimit: 1})
	assert.Len(t, s.Files, 1)
	assert.Equal(t, 1, s.Stats.LimitReached)
}

func TestReduceStagingAlwaysResolvesToStaged(t *testing.T) {
	s := Reduce(Initial(), ScanStarted{Slot: SlotPrimary, Root: RootRef{ID: "r"}})
	s = Reduce(s, ScanFinished{Result: scanned("bin")})
	s = Reduce(s, StagingStarted{})
	s = Reduce(s, StagingFinished{Result: StageResult{Stats: RejectionStats{UnsupportedType: 2}}, FileLimit: 500})
	assert.Equal(t, TagStaged, s.Tag)
	assert.Empty(t, s.Files)
	assert.Equal(t, 2, s.Stats.UnsupportedType)

	s = Reduce(s, FilesPicked{Files: []StagedFile{staged("a.js", 1)}, FileLimit: 500})
	s = Reduce(s, RemoveFile{ID: "a.js-1"})
	assert.Equal(t, TagIdle, s.Tag)
	assert.Empty(t, s.Files)
}

func TestReduceStatsPerBatchAndSession(t *testing.T) {
	scan := scanned("src")
	scan.Stats = RejectionStats{LimitReached: 3}

	s := Reduce(Initial(), ScanStarted{Slot: SlotPrimary, Root: RootRef{ID: "a"}})
	s = Reduce(s, ScanFinished{Result: scan})
	s = Reduce(s, StagingStarted{})
	s = Reduce(s, StagingFinished{Result: StageResult{Files: []StagedFile{staged("a.js", 1)}, Stats: RejectionStats{TooLarge: 1}}, FileLimit: 500})
	assert.Equal(t, RejectionStats{LimitReached: 3, TooLarge: 1}, s.Stats, "stage keeps the scan's counts")

	s = Reduce(s, ScanStarted{Slot: SlotSecondary, Root: RootRef{ID: "b"}})
	assert.Zero(t, s.Stats.Total())
	s = Reduce(s, ScanFinished{Result: scanned("lib")})
	s = Reduce(s, StagingStarted{})
	s = Reduce(s, StagingFinished{Result: StageResult{Stats: RejectionStats{TooLong: 1}}, FileLimit: 500})
	assert.Equal(t, RejectionStats{TooLong: 1}, s.Stats)

	s = Reduce(s, FilesPicked{Stats: RejectionStats{UnsupportedType: 2}, FileLimit: 500})
	assert.Equal(t, RejectionStats{UnsupportedType: 2}, s.Stats)
	assert.Equal(t, RejectionStats{LimitReached: 3, TooLarge: 1, TooLong: 1, UnsupportedType: 2}, s.Session)

	assert.Equal(t, RejectionStats{}, Reduce(s, ClearAll{}).Session)
}

func TestReduceCancelledScanCountsInSession(t *testing.T) {
	scan := scanned("src")
	scan.Stats = RejectionStats{PermissionDenied: 1}
	s := Reduce(Initial(), ScanStarted{Slot: SlotPrimary, Root: RootRef{ID: "a"}})
	s = Reduce(s, ScanFinished{Result: scan})
	s = Reduce(s, CancelFilter{})
	assert.Equal(t, 1, s.Session.PermissionDenied)
}
