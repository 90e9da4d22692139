package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/utils"
)

func TestBlockSetFixedBlocks(t *testing.T) {
	s := NewBlockSet(2)
	blocks := s.Blocks()
	require.Len(t, blocks, 5)
	var labels []string
	for _, b := range blocks {
		labels = append(labels, b.Label)
		assert.Equal(t, BlockText, b.Type)
	}
	assert.Equal(t, []string{LabelGoal, LabelFeatures, LabelReturnFormat, LabelWarnings, LabelContext}, labels)
	assert.Error(t, s.SetText("NOPE", "x"))
}

func TestBlockSetRender(t *testing.T) {
	s := NewBlockSet(2)
	require.NoError(t, s.SetText(LabelGoal, "Fix bug"))
	require.NoError(t, s.SetText(LabelFeatures, "keep API"))
	_, err := s.AddFile("main.go", "package main")
	require.NoError(t, err)

	assert.Equal(t, "## MODE # DEVELOP\nGOAL: Fix bug\nREQUIREMENTS: keep API\n\n```\nmain.go\n```\n```\npackage main\n```", s.Render())
}

func TestBlockSetFileCap(t *testing.T) {
	s := NewBlockSet(1)
	b, err := s.AddFile("a.txt", "a")
	require.NoError(t, err)
	_, err = s.AddFile("b.txt", "b")
	assert.ErrorIs(t, err, ErrBlockLimit)

	assert.True(t, s.RemoveFile(b.ID))
	assert.False(t, s.RemoveFile("goal"))
	_, err = s.AddFile("b.txt", "b")
	assert.NoError(t, err)
}

func TestBlockSetTokenItems(t *testing.T) {
	s := NewBlockSet(3)
	require.NoError(t, s.SetText(LabelGoal, "goal"))
	_, err := s.AddFile("x.go", "package x")
	require.NoError(t, err)

	items := s.TokenItems()
	require.Len(t, items, 2)
	assert.Equal(t, utils.Checksum32("goal"), items[0].Checksum)
	assert.Equal(t, "package x", items[1].Text)
}
