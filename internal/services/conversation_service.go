package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"promptforge/internal/importer"
	"promptforge/internal/llm/client"
	"promptforge/internal/models"
	"promptforge/internal/prompt"
	"promptforge/internal/tokens"
)

var ErrModelCall = errors.New("model call failed")

// CallerProvider hands out model callers by key. ClientService is the
// production implementation.
type CallerProvider interface {
	Caller(ctx context.Context, modelKey string) (Caller, *models.LLMModel, error)
}

type SendInput struct {
	// ChatID 0 starts a new chat titled after the text.
	ChatID      uint
	ModelKey    string
	Mode        prompt.Mode
	Text        string
	Attachments []importer.Attachment
}

type SendResult struct {
	Chat      *models.Chat
	User      *models.ChatMessage
	Assistant *models.ChatMessage
}

// ConversationService sends a prompt together with the chat history.
// Messages are stored only after the model replied, so a failed send
// leaves the chat as it was.
type ConversationService struct {
	chats     ChatService
	callers   CallerProvider
	tokenizer tokens.Tokenizer
	system    string
}

func NewConversationService(chats ChatService, callers CallerProvider, tokenizer tokens.Tokenizer) *ConversationService {
	return &ConversationService{
		chats:     chats,
		callers:   callers,
		tokenizer: tokenizer,
		system:    client.SystemPrompt(),
	}
}

func (s *ConversationService) Send(ctx context.Context, in SendInput) (*SendResult, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && len(in.Attachments) == 0 {
		return nil, errors.New("nothing to send")
	}

	var history []models.ChatMessage
	var chat *models.Chat
	modelKey := strings.TrimSpace(in.ModelKey)
	if in.ChatID != 0 {
		existing, err := s.chats.Get(ctx, in.ChatID)
		if err != nil {
			return nil, err
		}
		chat, history = existing, existing.Messages
		if modelKey == "" {
			modelKey = existing.ModelKey
		}
	}

	caller, model, err := s.callers.Caller(ctx, modelKey)
	if err != nil {
		return nil, err
	}

	msgs := make([]prompt.Message, 0, len(history)+2)
	if s.system != "" {
		msgs = append(msgs, prompt.TextMessage(prompt.RoleSystem, s.system))
	}
	for _, m := range history {
		msgs = append(msgs, prompt.TextMessage(prompt.Role(m.Role), m.Content))
	}
	msgs = append(msgs, prompt.BuildUserMessage(in.Text, in.Attachments))

	res := caller.Call(ctx, msgs)
	if !res.OK() {
		return nil, fmt.Errorf("%w: %s", ErrModelCall, res.Error)
	}

	if chat == nil {
		chat, err = s.chats.Create(ctx, titleFrom(text), model.Key, string(in.Mode))
		if err != nil {
			return nil, err
		}
	}
	user := &models.ChatMessage{
		Role:        string(prompt.RoleUser),
		Content:     in.Text,
		Attachments: attachmentNames(in.Attachments),
		Tokens:      s.count(in.Text),
	}
	assistant := &models.ChatMessage{
		Role:    string(prompt.RoleAssistant),
		Content: res.Content,
		Tokens:  s.count(res.Content),
	}
	if err := s.chats.AppendMessages(ctx, chat.ID, user, assistant); err != nil {
		return nil, err
	}
	return &SendResult{Chat: chat, User: user, Assistant: assistant}, nil
}

func (s *ConversationService) count(text string) int {
	if s.tokenizer == nil {
		return 0
	}
	return s.tokenizer.CountTokens(text)
}

const maxTitleRunes = 60

func titleFrom(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(strings.TrimLeft(line, "#"))
	if utf8.RuneCountInString(line) > maxTitleRunes {
		line = string([]rune(line)[:maxTitleRunes]) + "..."
	}
	return line
}

func attachmentNames(atts []importer.Attachment) string {
	names := make([]string, 0, len(atts))
	for _, a := range atts {
		names = append(names, a.Name)
	}
	return strings.Join(names, ",")
}
