package importer

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/fsaccess/memfs"
	"promptforge/internal/utils"
)

func staged(p string, sum uint32) StagedFile {
	return StagedFile{ID: fmt.Sprintf("%s-%d", p, sum), Path: p, Checksum: sum, Text: fmt.Sprint(sum)}
}

func TestMergeRenamesOnCollision(t *testing.T) {
	existing := []StagedFile{staged("a.js", 1)}
	incoming := []StagedFile{{ID: "n", Path: "a.js", Checksum: 2, Text: "different"}}

	out := Merge(existing, incoming, 500)

	require.Len(t, out.Files, 2)
	assert.Equal(t, "a.js", out.Files[0].Path)
	assert.Equal(t, uint32(1), out.Files[0].Checksum)
	assert.Regexp(t, regexp.MustCompile(`^a\.000002\.js$`), out.Files[1].Path)
	assert.Equal(t, uint32(2), out.Files[1].Checksum)
	assert.NotEmpty(t, out.Files[1].Note)
	assert.Equal(t, 1, out.Renamed)
}

func TestMergeExactDuplicateIsIdempotent(t *testing.T) {
	existing := []StagedFile{staged("src/a.js", 7)}
	out := Merge(existing, []StagedFile{staged("src/a.js", 7)}, 500)

	assert.Len(t, out.Files, 1)
	assert.Equal(t, 1, out.Duplicates)
	assert.Equal(t, existing[0], out.Files[0])
}

func TestMergeSameContentOtherDirectoryKeepsName(t *testing.T) {
	out := Merge([]StagedFile{staged("src/a.js", 7)}, []StagedFile{staged("lib/a.js", 7)}, 500)

	require.Len(t, out.Files, 2)
	assert.Equal(t, "lib/a.js", out.Files[1].Path)
	assert.Empty(t, out.Files[1].Note)
}

func TestMergeDisambiguatesTakenNames(t *testing.T) {
	existing := []StagedFile{staged("a.js", 1), staged("a.000002.js", 9)}
	out := Merge(existing, []StagedFile{staged("a.js", 2)}, 500)

	require.Len(t, out.Files, 3)
	assert.Equal(t, "a.000002(1).js", out.Files[2].Path)
}

func TestMergeReAddAfterRenameIsDuplicate(t *testing.T) {
	first := Merge(nil, []StagedFile{staged("src/a.js", 1), staged("lib/a.js", 2)}, 500)
	require.Len(t, first.Files, 2)
	require.Equal(t, "lib/a.000002.js", first.Files[1].Path)

	second := Merge(first.Files, []StagedFile{staged("src/a.js", 1), staged("lib/a.js", 2)}, 500)

	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, 2, second.Duplicates)
}

func TestMergeRespectsFileLimit(t *testing.T) {
	var existing, incoming []StagedFile
	for i := 0; i < 4; i++ {
		existing = append(existing, staged(fmt.Sprintf("e%d.txt", i), uint32(i)))
		incoming = append(incoming, staged(fmt.Sprintf("n%d.txt", i), uint32(i+10)))
	}

	for _, limit := range []int{0, 2, 4, 6, 8, 20} {
		out := Merge(existing, incoming, limit)
		assert.LessOrEqual(t, len(out.Files), limit)
		assert.Equal(t, min(limit, 8), len(out.Files))
		assert.Equal(t, 8-len(out.Files), out.Dropped)
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	incoming := []StagedFile{staged("x/u.js", 3), staged("y/u.js", 4), staged("z/u.js", 5)}
	a := Merge(nil, incoming, 500)
	b := Merge(nil, incoming, 500)
	assert.Equal(t, a, b)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := []StagedFile{staged("a.js", 1)}
	incoming := []StagedFile{staged("a.js", 2)}
	_ = Merge(existing, incoming, 500)
	assert.Equal(t, "a.js", incoming[0].Path)
	assert.Empty(t, incoming[0].Note)
}

func TestCollisionPath(t *testing.T) {
	assert.Equal(t, "src/utils.a1b2c3.js", CollisionPath("src/utils.js", 0xffa1b2c3, 0))
	assert.Equal(t, "src/utils.a1b2c3(2).js", CollisionPath("src/utils.js", 0xa1b2c3, 2))
	assert.Equal(t, "Makefile.00000f", CollisionPath("Makefile", 15, 0))
	assert.Equal(t, "cfg/.env.00000f", CollisionPath("cfg/.env", 15, 0))
	assert.Equal(t, "a.tar.00000f.gz", CollisionPath("a.tar.gz", 15, 0))
}

// Two a.js files from different folders of one root.
func TestStageAndMergeCollidingBasenames(t *testing.T) {
	root := memfs.NewDir("proj")
	root.AddFile("src/a.js", "X")
	root.AddFile("lib/a.js", "Y")

	res := stageAll(t, root, testLimits())
	merged := Merge(nil, res.Files, 500)

	require.Len(t, merged.Files, 2)
	paths := []string{merged.Files[0].Path, merged.Files[1].Path}
	assert.Contains(t, paths, "src/a.js")
	assert.Contains(t, paths, "lib/a."+utils.ShortChecksum(utils.Checksum32("Y"))+".js")
	assert.Equal(t, 1, merged.Renamed)

	// Re-stage the same tree: nothing new.
	again := Merge(merged.Files, stageAll(t, root, testLimits()).Files, 500)
	assert.Len(t, again.Files, 2)
	assert.Equal(t, 2, again.Duplicates)
}
