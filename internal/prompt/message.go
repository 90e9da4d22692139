package prompt

import (
	"encoding/base64"
	"strings"

	"promptforge/internal/importer"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type PartType string

const (
	PartText     PartType = "text"
	PartImageURL PartType = "image_url"
	PartFile     PartType = "file"
)

// ContentPart is one element of a message's content list.
type ContentPart struct {
	Type     PartType
	Text     string
	ImageURL string
	FileURI  string
	MIMEType string
	Name     string
	Data     []byte
}

// Message is the shape handed to the model call.
type Message struct {
	Role  Role
	Parts []ContentPart
}

func TextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []ContentPart{{Type: PartText, Text: text}}}
}

// BuildUserMessage attaches images as data URLs and other attachments as
// inline file parts after the prompt text.
func BuildUserMessage(text string, attachments []importer.Attachment) Message {
	msg := TextMessage(RoleUser, text)
	for _, a := range attachments {
		if strings.HasPrefix(a.MIME, "image/") {
			msg.Parts = append(msg.Parts, ContentPart{
				Type:     PartImageURL,
				ImageURL: "data:" + a.MIME + ";base64," + base64.StdEncoding.EncodeToString(a.Data),
				MIMEType: a.MIME,
				Name:     a.Name,
			})
			continue
		}
		msg.Parts = append(msg.Parts, ContentPart{
			Type:     PartFile,
			MIMEType: a.MIME,
			Name:     a.Name,
			Data:     a.Data,
		})
	}
	return msg
}

// PlainText joins the text parts.
func (m Message) PlainText() string {
	var texts []string
	for _, p := range m.Parts {
		if p.Type == PartText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
