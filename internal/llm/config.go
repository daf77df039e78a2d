// Package llm provides model configuration and client abstractions for the
// hosted language models used by job extraction and the chat assistant.
package llm

import "time"

// ModelTier selects which configured model serves a request.
type ModelTier string

const (
	// TierText is the text-only extraction model
	TierText ModelTier = "text"
	// TierVision is the multimodal model used when an image is attached
	TierVision ModelTier = "vision"
	// TierChat is the conversational model
	TierChat ModelTier = "chat"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderDoubao is Volcengine Ark (chat-completions compatible)
	ProviderDoubao Provider = "doubao"
	// ProviderOpenAI is any OpenAI-compatible chat-completions endpoint
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultHTTPTimeout bounds a single HTTP exchange when the caller's context has no deadline.
const DefaultHTTPTimeout = 90 * time.Second

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	// BaseURL is the full chat-completions endpoint. Unused by Gemini.
	BaseURL string
	Models  map[ModelTier]string
	Timeout time.Duration
}

// DefaultConfig returns the default configuration (Doubao)
func DefaultConfig() *Config {
	return DefaultDoubaoConfig()
}

// DefaultDoubaoConfig returns the default Volcengine Ark configuration
func DefaultDoubaoConfig() *Config {
	return &Config{
		Provider: ProviderDoubao,
		BaseURL:  "https://ark.cn-beijing.volces.com/api/v3/chat/completions",
		Models: map[ModelTier]string{
			TierText:   "doubao-1.5-pro-32k-250115",
			TierVision: "doubao-1.5-vision-pro-32k-250115",
			TierChat:   "doubao-pro-32k-241215",
		},
		Timeout: DefaultHTTPTimeout,
	}
}

// DefaultOpenAIConfig returns a configuration for the OpenAI API
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		BaseURL:  "https://api.openai.com/v1/chat/completions",
		Models: map[ModelTier]string{
			TierText:   "gpt-4o-mini",
			TierVision: "gpt-4o",
			TierChat:   "gpt-4o-mini",
		},
		Timeout: DefaultHTTPTimeout,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierText:   "gemini-2.5-flash",
			TierVision: "gemini-2.5-flash",
			TierChat:   "gemini-2.5-flash-lite",
		},
		Timeout: DefaultHTTPTimeout,
	}
}

// ConfigFor returns the default configuration for a provider name.
// Unknown names fall back to Doubao.
func ConfigFor(provider Provider) *Config {
	switch provider {
	case ProviderGemini:
		return DefaultGeminiConfig()
	case ProviderOpenAI:
		return DefaultOpenAIConfig()
	default:
		return DefaultDoubaoConfig()
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	// Vision and chat both degrade to the text model
	if model, ok := c.Models[TierText]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		Models:   make(map[ModelTier]string, len(c.Models)+1),
		Timeout:  c.Timeout,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
