package guard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

const maxSize = 300 * 1024

func TestIsTextLike(t *testing.T) {
	cases := []struct {
		name string
		in   Candidate
		want bool
	}{
		{"text mime", Candidate{Name: "notes", Type: "text/plain", Size: 10}, true},
		{"json mime", Candidate{Name: "data.bin", Type: "application/json", Size: 10}, true},
		{"mime with params", Candidate{Name: "a", Type: "text/html; charset=utf-8", Size: 10}, true},
		{"image mime wins over ext", Candidate{Name: "a.txt", Type: "image/png", Size: 10}, false},
		{"pdf mime", Candidate{Name: "a.md", Type: "application/pdf", Size: 10}, false},
		{"video mime", Candidate{Name: "a.go", Type: "video/mp4", Size: 10}, false},
		{"octet-stream falls back to ext", Candidate{Name: "main.go", Type: "application/octet-stream", Size: 10}, true},
		{"no mime ext", Candidate{Name: "src/App.tsx", Size: 10}, true},
		{"no mime unknown ext", Candidate{Name: "archive.xyz", Size: 10}, false},
		{"makefile", Candidate{Name: "Makefile", Size: 10}, true},
		{"dockerfile", Candidate{Name: "build/Dockerfile", Size: 10}, true},
		{"license", Candidate{Name: "LICENSE", Size: 10}, true},
		{"rc dotfile", Candidate{Name: ".eslintrc", Size: 10}, true},
		{"gitignore", Candidate{Name: ".gitignore", Size: 10}, true},
		{"png by ext", Candidate{Name: "logo.png", Size: 10}, false},
		{"mp3 by ext", Candidate{Name: "song.mp3", Size: 10}, false},
		{"svg", Candidate{Name: "icon.svg", Type: "image/svg+xml", Size: 10}, true},
		{"at limit", Candidate{Name: "a.go", Size: maxSize}, true},
		{"over limit", Candidate{Name: "a.go", Size: maxSize + 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTextLike(tc.in, maxSize))
		})
	}
}

func TestIsTextLikeSizeMonotonic(t *testing.T) {
	accepted := []Candidate{
		{Name: "a.go"},
		{Name: "x", Type: "text/plain"},
		{Name: "Makefile"},
	}
	for _, c := range accepted {
		c.Size = 1
		assert.True(t, IsTextLike(c, maxSize))
		c.Size = maxSize + 1
		assert.False(t, IsTextLike(c, maxSize), "%s should be rejected when oversized", c.Name)
	}

	rejected := Candidate{Name: "a.png", Type: "image/png"}
	for _, size := range []int64{0, 1, maxSize} {
		rejected.Size = size
		assert.False(t, IsTextLike(rejected, maxSize))
	}
}

func TestAuxiliaryPredicates(t *testing.T) {
	assert.True(t, IsImage(Candidate{Name: "a.JPG"}))
	assert.True(t, IsImage(Candidate{Name: "blob", Type: "image/webp"}))
	assert.False(t, IsImage(Candidate{Name: "a.svg", Type: "image/svg+xml"}))
	assert.True(t, IsAudioOrVideo(Candidate{Name: "a.mov"}))
	assert.True(t, IsAudioOrVideo(Candidate{Name: "x", Type: "audio/ogg"}))
	assert.True(t, IsPDF(Candidate{Name: "paper.PDF"}))
	assert.False(t, IsPDF(Candidate{Name: "paper.md"}))
	assert.Equal(t, "image/png", ImageMIME("shot.png"))
	assert.Equal(t, "", ImageMIME("shot.go"))
}

func TestLooksBinary(t *testing.T) {
	assert.False(t, LooksBinary(nil))
	assert.False(t, LooksBinary([]byte("hello\tworld\n")))
	assert.False(t, LooksBinary([]byte("héllo wörld")))
	assert.True(t, LooksBinary([]byte{'a', 0, 'b'}))
	assert.True(t, LooksBinary(bytes.Repeat([]byte{0x01, 0x02, 'a'}, 100)))

	// A multi-byte rune split by the sniff window does not count.
	data := append(bytes.Repeat([]byte("a"), sniffLen-1), []byte("é")...)
	assert.False(t, LooksBinary(data))
}
