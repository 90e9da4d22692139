package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"promptforge/internal/events"
	"promptforge/internal/logging"
	"promptforge/internal/prompt"
)

var ErrTimeout = errors.New("model call timed out")

const (
	DefaultTimeout         = 5 * time.Minute
	defaultClaudeMaxTokens = 8192
	defaultHistoryFallback = "Please continue."
)

// Result is the outcome of a model call. Exactly one of Content and Error
// is set.
type Result struct {
	Content string
	Error   string
}

func (r Result) OK() bool { return r.Error == "" }

// LLMClient wraps a chat model behind a call that never returns an error
// value; failures come back as a readable Result.Error.
type LLMClient struct {
	ChatModel model.BaseChatModel
	Provider  string
	Model     string
	Timeout   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewLLMClient(chatModel model.BaseChatModel, provider, modelName string) *LLMClient {
	return &LLMClient{ChatModel: chatModel, Provider: provider, Model: modelName, Timeout: DefaultTimeout}
}

type OpenAIModelOptions struct {
	Model           string
	ReasoningEffort string
}

type ClaudeModelOptions struct {
	Model     string
	Thinking  bool
	MaxTokens int
}

type GeminiModelOptions struct {
	Model    string
	Thinking bool
}

func NewOpenAIClient(ctx context.Context, key string, opts OpenAIModelOptions) (*LLMClient, error) {
	cfg := &openai.ChatModelConfig{
		APIKey: key,
		Model:  opts.Model,
	}
	if effort := strings.TrimSpace(opts.ReasoningEffort); effort != "" {
		cfg.ReasoningEffort = openai.ReasoningEffortLevel(effort)
	}
	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		logging.Error("failed to create OpenAI chat model", zap.String("model", opts.Model), zap.Error(err))
		return nil, err
	}
	return NewLLMClient(chatModel, "openai", opts.Model), nil
}

func NewClaudeClient(ctx context.Context, key string, opts ClaudeModelOptions) (*LLMClient, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}
	cfg := &claude.Config{
		APIKey:    key,
		Model:     opts.Model,
		MaxTokens: maxTokens,
	}
	if opts.Thinking {
		cfg.Thinking = &claude.Thinking{Enable: true, BudgetTokens: maxTokens / 2}
	}
	chatModel, err := claude.NewChatModel(ctx, cfg)
	if err != nil {
		logging.Error("failed to create Claude chat model", zap.String("model", opts.Model), zap.Error(err))
		return nil, err
	}
	return NewLLMClient(chatModel, "anthropic", opts.Model), nil
}

func NewGeminiClient(ctx context.Context, key string, opts GeminiModelOptions) (*LLMClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logging.Error("failed to create Gemini client", zap.Error(err))
		return nil, err
	}
	cfg := &gemini.Config{
		Client: genaiClient,
		Model:  opts.Model,
	}
	if opts.Thinking {
		cfg.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true}
	}
	chatModel, err := gemini.NewChatModel(ctx, cfg)
	if err != nil {
		logging.Error("failed to create Gemini chat model", zap.String("model", opts.Model), zap.Error(err))
		return nil, err
	}
	return NewLLMClient(chatModel, "gemini", opts.Model), nil
}

// Call sends msgs and waits for the full reply, bounded by Timeout.
func (c *LLMClient) Call(ctx context.Context, msgs []prompt.Message) Result {
	in, changed := normalizeConversationHistory(ToSchemaMessages(msgs), "")
	if len(in) == 0 {
		return Result{Error: "nothing to send"}
	}
	if changed {
		logging.Debug("normalized conversation history", zap.Int("messages", len(in)))
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
	}()

	started := time.Now()
	out, err := c.ChatModel.Generate(callCtx, in)
	meta := func(e events.Event) events.Event {
		return e.WithMeta("provider", c.Provider).
			WithMeta("model", c.Model).
			WithMeta("elapsed", time.Since(started).Round(time.Millisecond).String())
	}

	if err != nil {
		res := Result{Error: describeError(callCtx, err)}
		events.Emit(ctx, events.LLMCall, meta(events.NewError(res.Error)))
		return res
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		res := Result{Error: "the model returned an empty response"}
		events.Emit(ctx, events.LLMCall, meta(events.NewWarn(res.Error)))
		return res
	}
	events.Emit(ctx, events.LLMCall, meta(events.NewSuccess("model replied")))
	return Result{Content: out.Content}
}

// Stop cancels the call in flight, if any.
func (c *LLMClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

func describeError(ctx context.Context, err error) string {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout.Error()
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return "model call cancelled"
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("model call failed: %s", msg)
}

// ToSchemaMessages converts prompt messages to eino messages. A message
// holding a single text part is sent as plain content.
func ToSchemaMessages(msgs []prompt.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		sm := &schema.Message{Role: toRole(m.Role)}
		if len(m.Parts) == 1 && m.Parts[0].Type == prompt.PartText {
			sm.Content = m.Parts[0].Text
			out = append(out, sm)
			continue
		}
		for _, p := range m.Parts {
			switch p.Type {
			case prompt.PartText:
				sm.MultiContent = append(sm.MultiContent, schema.ChatMessagePart{
					Type: schema.ChatMessagePartTypeText,
					Text: p.Text,
				})
			case prompt.PartImageURL:
				sm.MultiContent = append(sm.MultiContent, schema.ChatMessagePart{
					Type:     schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{URL: p.ImageURL, MIMEType: p.MIMEType},
				})
			case prompt.PartFile:
				url := p.FileURI
				if url == "" {
					url = "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
				}
				sm.MultiContent = append(sm.MultiContent, schema.ChatMessagePart{
					Type:    schema.ChatMessagePartTypeFileURL,
					FileURL: &schema.ChatMessageFileURL{URL: url, MIMEType: p.MIMEType, Name: p.Name},
				})
			}
		}
		out = append(out, sm)
	}
	return out
}

func toRole(r prompt.Role) schema.RoleType {
	switch r {
	case prompt.RoleSystem:
		return schema.System
	case prompt.RoleAssistant:
		return schema.Assistant
	default:
		return schema.User
	}
}

// normalizeConversationHistory makes sure the first non-system message is
// from the user. Assistant messages before the first user message are
// dropped; without any user message a fallback one is inserted.
func normalizeConversationHistory(msgs []*schema.Message, fallback string) ([]*schema.Message, bool) {
	if len(msgs) == 0 {
		return msgs, false
	}
	start := 0
	for start < len(msgs) && msgs[start] != nil && msgs[start].Role == schema.System {
		start++
	}
	if start < len(msgs) && msgs[start] != nil && msgs[start].Role == schema.User {
		return msgs, false
	}

	for i := start; i < len(msgs); i++ {
		if msgs[i] != nil && msgs[i].Role == schema.User {
			out := make([]*schema.Message, 0, start+len(msgs)-i)
			out = append(out, msgs[:start]...)
			out = append(out, msgs[i:]...)
			return out, true
		}
	}

	if strings.TrimSpace(fallback) == "" {
		fallback = defaultHistoryFallback
	}
	out := make([]*schema.Message, 0, len(msgs)+1)
	out = append(out, msgs[:start]...)
	out = append(out, schema.UserMessage(fallback))
	for _, m := range msgs[start:] {
		if m != nil {
			out = append(out, m)
		}
	}
	return out, true
}
