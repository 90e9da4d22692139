package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTree(t *testing.T) {
	got := RenderTree("proj", []string{"src/b.js", "README.md", "src/a.js", "lib/util/x.go", "go.mod"})
	want := "proj\n" +
		"├─ lib\n" +
		"│  └─ util\n" +
		"│     └─ x.go\n" +
		"├─ src\n" +
		"│  ├─ a.js\n" +
		"│  └─ b.js\n" +
		"├─ README.md\n" +
		"└─ go.mod"
	assert.Equal(t, want, got)
}

func TestRenderTreeDirectoriesBeforeFiles(t *testing.T) {
	got := RenderTree("r", []string{"a.txt", "z/b.txt"})
	assert.Equal(t, "r\n├─ z\n│  └─ b.txt\n└─ a.txt", got)
}

func TestRenderTreeEmpty(t *testing.T) {
	assert.Equal(t, "proj", RenderTree("proj", nil))
}
