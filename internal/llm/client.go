package llm

import (
	"context"
	"fmt"
)

// Role is the author of a chat message sent to a model.
type Role string

// Message roles
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a model conversation.
type Message struct {
	Role    Role
	Content string
	// ImageURL is an optional data URL attached before the text.
	ImageURL string
}

// Request is a provider-neutral completion request.
type Request struct {
	Tier        ModelTier
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Client is an abstraction over LLM providers
type Client interface {
	// Complete sends the conversation and returns the first candidate's text
	Complete(ctx context.Context, req Request) (string, error)
	// GetModel returns the model name that serves a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderDoubao, ProviderOpenAI:
		return NewChatCompletionsClient(config, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", config.Provider)
	}
}
