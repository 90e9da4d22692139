package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/importer"
)

func TestBuildUserMessage(t *testing.T) {
	msg := BuildUserMessage("hello", []importer.Attachment{
		{Name: "a.png", MIME: "image/png", Data: []byte("png")},
		{Name: "b.pdf", MIME: "application/pdf", Data: []byte("%PDF")},
	})

	assert.Equal(t, RoleUser, msg.Role)
	require.Len(t, msg.Parts, 3)
	assert.Equal(t, ContentPart{Type: PartText, Text: "hello"}, msg.Parts[0])
	assert.Equal(t, PartImageURL, msg.Parts[1].Type)
	assert.Equal(t, "data:image/png;base64,cG5n", msg.Parts[1].ImageURL)
	assert.Equal(t, PartFile, msg.Parts[2].Type)
	assert.Equal(t, "application/pdf", msg.Parts[2].MIMEType)
	assert.Equal(t, "hello", msg.PlainText())
}
