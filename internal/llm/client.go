package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Request is a single structured generation call.
type Request struct {
	System string // system instructions
	Prompt string // user content
	// Schema is the JSON Schema the answer must satisfy. Providers with native
	// schema support enforce it; the others receive it inside the prompt.
	Schema     json.RawMessage
	SchemaName string
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateJSON returns the model's JSON answer with any markdown fences removed
	GenerateJSON(ctx context.Context, req Request, tier ModelTier) (string, error)
	// GetModel returns the provider model used for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderAnthropic:
		return NewAnthropicClient(config, apiKey)
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// promptWithSchema appends the answer schema for providers without native
// structured output.
func promptWithSchema(req Request) string {
	if len(req.Schema) == 0 {
		return req.Prompt
	}
	return req.Prompt + "\n\nReturn ONLY a JSON object that validates against this JSON Schema:\n" + string(req.Schema)
}
