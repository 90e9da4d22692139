package prompt

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"promptforge/internal/tokens"
	"promptforge/internal/utils"
)

type BlockType string

const (
	BlockText BlockType = "text"
	BlockFile BlockType = "file"
)

// Fixed text block labels, in display order.
const (
	LabelGoal         = "GOAL"
	LabelFeatures     = "FEATURES"
	LabelReturnFormat = "RETURN FORMAT"
	LabelWarnings     = "WARNINGS"
	LabelContext      = "CONTEXT"
)

var ErrBlockLimit = errors.New("file block limit reached")

// Block is one editable section of a form-driven prompt. Text blocks use
// Label, file blocks use Name.
type Block struct {
	ID        string
	Type      BlockType
	Label     string
	Name      string
	Rows      int
	PlainText string
	Checksum  uint32
}

// BlockSet is an ordered list of the fixed text blocks followed by file
// blocks up to a cap.
type BlockSet struct {
	blocks   []Block
	maxFiles int
}

func NewBlockSet(maxFiles int) *BlockSet {
	s := &BlockSet{maxFiles: maxFiles}
	for _, tb := range []struct {
		label string
		rows  int
	}{
		{LabelGoal, 3},
		{LabelFeatures, 6},
		{LabelReturnFormat, 3},
		{LabelWarnings, 3},
		{LabelContext, 6},
	} {
		s.blocks = append(s.blocks, Block{
			ID:       strings.ToLower(strings.ReplaceAll(tb.label, " ", "-")),
			Type:     BlockText,
			Label:    tb.label,
			Rows:     tb.rows,
			Checksum: utils.Checksum32(""),
		})
	}
	return s
}

// SetText replaces the text of the fixed block with label.
func (s *BlockSet) SetText(label, text string) error {
	for i := range s.blocks {
		if s.blocks[i].Type == BlockText && s.blocks[i].Label == label {
			s.blocks[i].PlainText = text
			s.blocks[i].Checksum = utils.Checksum32(text)
			return nil
		}
	}
	return fmt.Errorf("unknown block %q", label)
}

// AddFile appends a file block. It fails with ErrBlockLimit at the cap.
func (s *BlockSet) AddFile(name, text string) (Block, error) {
	if s.FileCount() >= s.maxFiles {
		return Block{}, fmt.Errorf("%s: %w (max %d)", name, ErrBlockLimit, s.maxFiles)
	}
	b := Block{
		ID:        uuid.NewString(),
		Type:      BlockFile,
		Name:      name,
		Rows:      min(max(strings.Count(text, "\n")+1, 3), 20),
		PlainText: text,
		Checksum:  utils.Checksum32(text),
	}
	s.blocks = append(s.blocks, b)
	return b, nil
}

// RemoveFile drops the file block with id. Text blocks cannot be removed.
func (s *BlockSet) RemoveFile(id string) bool {
	i := slices.IndexFunc(s.blocks, func(b Block) bool { return b.ID == id && b.Type == BlockFile })
	if i < 0 {
		return false
	}
	s.blocks = slices.Delete(s.blocks, i, i+1)
	return true
}

func (s *BlockSet) FileCount() int {
	n := 0
	for _, b := range s.blocks {
		if b.Type == BlockFile {
			n++
		}
	}
	return n
}

// Blocks returns a copy of the ordered blocks.
func (s *BlockSet) Blocks() []Block {
	return slices.Clone(s.blocks)
}

// Form maps the text blocks onto a DEVELOP form.
func (s *BlockSet) Form() Form {
	var f Form
	for _, b := range s.blocks {
		switch b.Label {
		case LabelGoal:
			f.Goal = b.PlainText
		case LabelFeatures:
			f.Requirements = b.PlainText
		case LabelReturnFormat:
			f.ReturnFormat = b.PlainText
		case LabelWarnings:
			f.Warnings = b.PlainText
		case LabelContext:
			f.Context = b.PlainText
		}
	}
	return f
}

// Render assembles the DEVELOP document for the set.
func (s *BlockSet) Render() string {
	out := BuildPrompt(s.Form(), ModeDevelop, nil, "")
	for _, b := range s.blocks {
		if b.Type == BlockFile {
			out += "\n\n" + FileBlock(b.Name, b.PlainText)
		}
	}
	return out
}

// TokenItems lists the non-empty blocks for the estimator.
func (s *BlockSet) TokenItems() []tokens.Item {
	var items []tokens.Item
	for _, b := range s.blocks {
		if strings.TrimSpace(b.PlainText) == "" {
			continue
		}
		items = append(items, tokens.Item{Checksum: b.Checksum, Text: b.PlainText})
	}
	return items
}
