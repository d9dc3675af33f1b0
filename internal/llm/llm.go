// Package llm adapts generative model SDKs to a single text-in/text-out
// Client used by the summary package.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Client sends one system instruction and one user prompt and returns the
// raw response text. An empty string is a valid response.
type Client interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Provider identifies the model backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

const (
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultOpenAIURL   = "https://api.openai.com/v1"
)

// GenerationConfig holds sampling parameters shared by all providers.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int
	// JSONMode requests json_object responses from OpenAI-compatible
	// servers. Gemini always receives a JSON MIME type.
	JSONMode bool
}

// DefaultGenerationConfig favors low randomness and structured output.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.2,
		TopP:            0.9,
		MaxOutputTokens: 1500,
	}
}

// Config selects and configures a provider.
type Config struct {
	Provider   Provider
	Model      string
	APIKey     string
	BaseURL    string
	Generation GenerationConfig
}

// ErrMissingAPIKey is returned by NewClient when no key is configured.
var ErrMissingAPIKey = errors.New("API key is required")

// NewClient builds the Client for cfg.Provider.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrMissingAPIKey)
	}

	switch ParseProvider(string(cfg.Provider)) {
	case ProviderGemini:
		model := cfg.Model
		if model == "" {
			model = DefaultGeminiModel
		}
		return NewGeminiClient(ctx, cfg.APIKey, model, cfg.Generation)
	case ProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOpenAIURL
		}
		return NewOpenAIClient(baseURL, cfg.APIKey, model, cfg.Generation), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: gemini, openai)", cfg.Provider)
	}
}

// ParseProvider normalizes a provider name; "" means Gemini.
func ParseProvider(s string) Provider {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return ProviderGemini
	}
	return p
}
