package tokens

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// TokenCounter is the part of the genai Models service used here.
type TokenCounter interface {
	CountTokens(ctx context.Context, model string, contents []*genai.Content, config *genai.CountTokensConfig) (*genai.CountTokensResponse, error)
}

// GenAIBackend counts tokens with the Gemini countTokens endpoint.
type GenAIBackend struct {
	counter TokenCounter
}

func NewGenAIBackend(counter TokenCounter) *GenAIBackend {
	return &GenAIBackend{counter: counter}
}

// DialGenAI creates a Gemini API client and wraps its Models service.
func DialGenAI(ctx context.Context, apiKey string) (*GenAIBackend, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return NewGenAIBackend(c.Models), nil
}

func (b *GenAIBackend) CountText(ctx context.Context, model string, texts []string) ([]int, error) {
	out := make([]int, len(texts))
	for i, t := range texts {
		if t == "" {
			continue
		}
		n, err := b.count(ctx, model, []*genai.Part{genai.NewPartFromText(t)})
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// CountRefs counts uploaded files by URI and inline data by bytes. Refs
// carrying neither are approximated.
func (b *GenAIBackend) CountRefs(ctx context.Context, model string, refs []FileRef) (int, error) {
	var parts []*genai.Part
	var rest []FileRef
	for _, r := range refs {
		switch {
		case r.URI != "":
			parts = append(parts, genai.NewPartFromURI(r.URI, r.MIMEType))
		case len(r.Data) > 0:
			parts = append(parts, genai.NewPartFromBytes(r.Data, r.MIMEType))
		default:
			rest = append(rest, r)
		}
	}
	total := ApproximateRefTokens(rest)
	if len(parts) == 0 {
		return total, nil
	}
	n, err := b.count(ctx, model, parts)
	if err != nil {
		return 0, err
	}
	return total + n, nil
}

func (b *GenAIBackend) count(ctx context.Context, model string, parts []*genai.Part) (int, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := b.counter.CountTokens(ctx, model, contents, nil)
	if err != nil {
		return 0, fmt.Errorf("countTokens: %w", err)
	}
	if resp == nil {
		return 0, fmt.Errorf("countTokens: empty response")
	}
	return int(resp.TotalTokens), nil
}
