package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"promptforge/internal/llm/client"
	"promptforge/internal/models"
	"promptforge/internal/prompt"
	"promptforge/internal/tokens"
)

// Caller is the model call used by conversations.
type Caller interface {
	Call(ctx context.Context, msgs []prompt.Message) client.Result
}

type providerFactory func(ctx context.Context, apiKey string, model *models.LLMModel) (*client.LLMClient, error)

// ClientService builds model clients from the catalog and stored API keys
// and keeps one client per model key.
type ClientService struct {
	keyringService *KeyringService
	modelConfigs   ModelConfigService
	timeout        time.Duration
	factories      map[string]providerFactory

	mu      sync.Mutex
	clients map[string]*client.LLMClient
}

func NewClientService(keyringService *KeyringService, modelConfigs ModelConfigService, timeout time.Duration) *ClientService {
	return &ClientService{
		keyringService: keyringService,
		modelConfigs:   modelConfigs,
		timeout:        timeout,
		factories: map[string]providerFactory{
			"anthropic": func(ctx context.Context, key string, m *models.LLMModel) (*client.LLMClient, error) {
				return client.NewClaudeClient(ctx, key, client.ClaudeModelOptions{
					Model:    m.APIName,
					Thinking: m.Thinking != nil && *m.Thinking,
				})
			},
			"openai": func(ctx context.Context, key string, m *models.LLMModel) (*client.LLMClient, error) {
				return client.NewOpenAIClient(ctx, key, client.OpenAIModelOptions{
					Model:           m.APIName,
					ReasoningEffort: m.ReasoningEffort,
				})
			},
			"gemini": func(ctx context.Context, key string, m *models.LLMModel) (*client.LLMClient, error) {
				return client.NewGeminiClient(ctx, key, client.GeminiModelOptions{
					Model:    m.APIName,
					Thinking: m.Thinking != nil && *m.Thinking,
				})
			},
		},
		clients: make(map[string]*client.LLMClient),
	}
}

// Caller returns the client for modelKey, creating it on first use.
func (s *ClientService) Caller(ctx context.Context, modelKey string) (Caller, *models.LLMModel, error) {
	model, err := s.resolve(modelKey)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[model.Key]; ok {
		return c, model, nil
	}

	factory, ok := s.factories[model.ProviderID]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported provider: %s", model.ProviderID)
	}
	apiKey, err := s.keyringService.GetApiKey(model.ProviderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get API key for %s: %w", model.ProviderID, err)
	}
	llmClient, err := factory(ctx, apiKey, model)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", model.ProviderID, err)
	}
	if s.timeout > 0 {
		llmClient.Timeout = s.timeout
	}
	s.clients[model.Key] = llmClient
	return llmClient, model, nil
}

// TokenBackend returns the Gemini countTokens backend when a Gemini key is
// available.
func (s *ClientService) TokenBackend(ctx context.Context) (tokens.Backend, error) {
	apiKey, err := s.keyringService.GetApiKey("gemini")
	if err != nil {
		return nil, err
	}
	return tokens.DialGenAI(ctx, apiKey)
}

// StopAll cancels every call in flight.
func (s *ClientService) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.Stop()
	}
}

func (s *ClientService) resolve(modelKey string) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, errors.New("model is required")
	}
	model, err := s.modelConfigs.GetModel(modelKey)
	if err != nil {
		return nil, err
	}
	if !model.Enabled {
		return nil, fmt.Errorf("model %s is disabled", model.Key)
	}
	return model, nil
}
