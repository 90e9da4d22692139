package models

// LLMModel is a model from the bundled catalog merged with its stored
// setting.
type LLMModel struct {
	Key             string `json:"key"`
	DisplayName     string `json:"displayName"`
	APIName         string `json:"apiName"`
	ProviderID      string `json:"providerId"`
	ProviderName    string `json:"providerName"`
	ReasoningEffort string `json:"reasoningEffort,omitempty"`
	Thinking        *bool  `json:"thinking,omitempty"`
	ContextWindow   int    `json:"contextWindow,omitempty"`
	Enabled         bool   `json:"enabled"`
}

// LLMModelGroup groups models by their provider.
type LLMModelGroup struct {
	ProviderID   string     `json:"providerId"`
	ProviderName string     `json:"providerName"`
	Models       []LLMModel `json:"models"`
}
