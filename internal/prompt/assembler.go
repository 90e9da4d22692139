// Package prompt assembles the outbound prompt document from form fields
// and staged files. Everything here is a pure function of its inputs.
package prompt

import (
	"fmt"
	"strings"

	"promptforge/internal/importer"
)

type Mode string

const (
	ModeDevelop   Mode = "DEVELOP"
	ModeCommit    Mode = "COMMIT"
	ModeCodeCheck Mode = "CODE CHECK"
)

// ParseMode accepts the mode names case-insensitively. "CODE_CHECK" and
// "code-check" are accepted for CODE CHECK.
func ParseMode(s string) (Mode, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch Mode(norm) {
	case "":
		return ModeDevelop, nil
	case ModeDevelop, ModeCommit, ModeCodeCheck:
		return Mode(norm), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Form holds the user-entered fields of a DEVELOP prompt.
type Form struct {
	Goal                   string `yaml:"goal"`
	Requirements           string `yaml:"requirements"`
	ReturnFormat           string `yaml:"return_format"`
	UseDefaultReturnFormat bool   `yaml:"use_default_return_format"`
	Warnings               string `yaml:"warnings"`
	Context                string `yaml:"context"`
}

// DefaultReturnFormat is appended to RETURN FORMAT when requested.
const DefaultReturnFormat = "Return the complete contents of every file you change, each in its own fenced code block preceded by its path. Do not omit unchanged parts of a changed file."

const commitInstructions = "## MODE # COMMIT\n" +
	"Write a git commit message for the changes discussed in this conversation.\n" +
	"Use an imperative subject line of at most 72 characters, then a blank line, then a short body explaining what changed.\n" +
	"Return only the commit message."

const codeCheckInstructions = "## MODE # CODE CHECK\n" +
	"Review the code discussed in this conversation.\n" +
	"List bugs, unhandled edge cases and risky constructs, most severe first, each with the file and a concrete fix.\n" +
	"If nothing needs to change, say so."

// BuildPrompt renders the prompt for mode. COMMIT and CODE CHECK return
// fixed instructions. DEVELOP emits the non-empty labeled fields, then the
// project tree and one fenced path block plus one fenced content block per
// staged file.
func BuildPrompt(form Form, mode Mode, files []importer.StagedFile, projectRootName string) string {
	switch mode {
	case ModeCommit:
		return commitInstructions
	case ModeCodeCheck:
		return codeCheckInstructions
	}

	var b strings.Builder
	b.WriteString("## MODE # ")
	b.WriteString(string(ModeDevelop))
	for _, line := range labeledLines(form) {
		b.WriteString("\n")
		b.WriteString(line)
	}
	if len(files) > 0 {
		b.WriteString("\n\n")
		b.WriteString(renderFiles(files, projectRootName))
	}
	return b.String()
}

func labeledLines(form Form) []string {
	var lines []string
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("GOAL", form.Goal)
	add("REQUIREMENTS", form.Requirements)

	ret := strings.TrimSpace(form.ReturnFormat)
	if form.UseDefaultReturnFormat {
		if ret != "" {
			ret += "\n"
		}
		ret += DefaultReturnFormat
	}
	add("RETURN FORMAT", ret)

	add("WARNINGS", form.Warnings)
	add("CONTEXT", form.Context)
	return lines
}

// renderFiles emits one tree per root, followed by every file block in
// input order. Files outside a project get blocks but no tree.
func renderFiles(files []importer.StagedFile, projectRootName string) string {
	var sections []string

	if projectRootName != "" {
		var roots []string
		byRoot := map[string][]string{}
		for _, f := range files {
			if !f.InsideProject || f.RootName == "" {
				continue
			}
			if _, ok := byRoot[f.RootName]; !ok {
				roots = append(roots, f.RootName)
			}
			byRoot[f.RootName] = append(byRoot[f.RootName], f.Path)
		}
		for _, r := range roots {
			sections = append(sections, "```\n"+RenderTree(r, byRoot[r])+"\n```")
		}
	}

	for _, f := range files {
		sections = append(sections, FileBlock(displayPath(f, projectRootName), f.Text))
	}
	return strings.Join(sections, "\n\n")
}

// FileBlock renders a fenced path block followed by a fenced content
// block. The content fence is longer than any backtick run in text.
func FileBlock(path, text string) string {
	fence := Fence(text)
	return "```\n" + path + "\n```\n" + fence + "\n" + strings.TrimSuffix(text, "\n") + "\n" + fence
}

// Fence returns a backtick fence that cannot be closed by text.
func Fence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}

func displayPath(f importer.StagedFile, projectRootName string) string {
	if projectRootName != "" && f.InsideProject && f.RootName != "" && f.RootName != projectRootName {
		return f.RootName + "/" + f.Path
	}
	return f.Path
}
