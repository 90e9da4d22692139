package client

import (
	"embed"
	"strings"
)

// embeddedPrompts holds the built-in prompt templates so packaged executables
// can load them without needing access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

// SystemPrompt returns the default system message sent ahead of a
// conversation.
func SystemPrompt() string {
	data, err := embeddedPrompts.ReadFile("prompts/system.txt")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
