package services

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/llm/client"
	"promptforge/internal/models"
	"promptforge/internal/prompt"
)

type echoChatModel struct{}

func (echoChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage("echo: "+input[len(input)-1].Content, nil), nil
}

func (echoChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func newTestClientService(t *testing.T) (*ClientService, *int) {
	t.Helper()
	configs := NewModelConfigService(nil, []byte(testCatalog))
	require.NoError(t, configs.Startup(context.Background()))
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: "openai", Data: []byte("sk-test")}})

	built := 0
	svc := NewClientService(NewKeyringService(ring), configs, 0)
	svc.factories = map[string]providerFactory{
		"openai": func(ctx context.Context, key string, m *models.LLMModel) (*client.LLMClient, error) {
			built++
			if key != "sk-test" {
				return nil, errors.New("wrong key")
			}
			return client.NewLLMClient(echoChatModel{}, m.ProviderID, m.APIName), nil
		},
	}
	return svc, &built
}

func TestClientService_CallerIsCached(t *testing.T) {
	svc, built := newTestClientService(t)
	ctx := context.Background()

	caller, m, err := svc.Caller(ctx, "openai|gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", m.APIName)

	res := caller.Call(ctx, []prompt.Message{prompt.TextMessage(prompt.RoleUser, "hi")})
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, "echo: hi", res.Content)

	_, _, err = svc.Caller(ctx, "openai|gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, 1, *built)
}

func TestClientService_DisabledModel(t *testing.T) {
	svc, _ := newTestClientService(t)
	_, err := svc.modelConfigs.SetModelEnabled("openai|gpt-4o", false)
	require.NoError(t, err)

	_, _, err = svc.Caller(context.Background(), "openai|gpt-4o")
	assert.EqualError(t, err, "model openai|gpt-4o is disabled")
}

func TestClientService_UnsupportedProvider(t *testing.T) {
	svc, _ := newTestClientService(t)
	_, _, err := svc.Caller(context.Background(), "gemini|gemini-2.5-flash")
	assert.EqualError(t, err, "unsupported provider: gemini")
}

func TestClientService_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	svc, _ := newTestClientService(t)
	svc.keyringService = NewKeyringService(keyring.NewArrayKeyring(nil))

	_, _, err := svc.Caller(context.Background(), "openai|gpt-4o")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestClientService_RequiresModel(t *testing.T) {
	svc, _ := newTestClientService(t)
	_, _, err := svc.Caller(context.Background(), "  ")
	assert.EqualError(t, err, "model is required")
}

func TestClientService_TokenBackendNeedsGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	svc, _ := newTestClientService(t)
	_, err := svc.TokenBackend(context.Background())
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
