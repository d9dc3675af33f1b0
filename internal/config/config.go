package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kevinmichaelchen/profile-analyzer/internal/analysis"
	"github.com/kevinmichaelchen/profile-analyzer/internal/llm"
	"github.com/kevinmichaelchen/profile-analyzer/internal/summary"
)

// Output formats understood by the analyze command.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Config struct {
	SurrealURL  string `mapstructure:"surreal_url" validate:"required_if=Store true"`
	SurrealNS   string `mapstructure:"surreal_ns"`
	SurrealDB   string `mapstructure:"surreal_db"`
	SurrealUser string `mapstructure:"surreal_user"`
	SurrealPass string `mapstructure:"surreal_pass"`

	GitHubToken string `mapstructure:"github_token"`

	LLMProvider  string `mapstructure:"llm_provider" validate:"oneof=gemini openai"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`
	LLMAPIKey    string `mapstructure:"llm_api_key"`
	LLMBaseURL   string `mapstructure:"llm_base_url" validate:"omitempty,url"`
	LLMModel     string `mapstructure:"llm_model"`
	LLMJSONMode  bool   `mapstructure:"llm_json_mode"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// Strategy is passed to the selector as-is; unknown values fall back
	// to the default ranking there.
	Strategy        string `mapstructure:"strategy"`
	Limit           int    `mapstructure:"limit" validate:"gte=0"`
	IncludeSnippets bool   `mapstructure:"include_snippets"`
	RoleInference   bool   `mapstructure:"role_inference"`
	Offline         bool   `mapstructure:"offline"`
	Format          string `mapstructure:"format" validate:"oneof=text json yaml"`
	Output          string `mapstructure:"output"`
	Store           bool   `mapstructure:"store"`
	Concurrency     int    `mapstructure:"concurrency" validate:"gte=1"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"provider":         "llm_provider",
	"model":            "model",
	"log-level":        "log_level",
	"strategy":         "strategy",
	"limit":            "limit",
	"include-snippets": "include_snippets",
	"role-inference":   "role_inference",
	"offline":          "offline",
	"format":           "format",
	"output":           "output",
	"store":            "store",
	"concurrency":      "concurrency",
}

// Load reads .env, the environment and, when flags is non-nil, CLI flags.
// Priority: CLI flags > environment variables > .env file > defaults.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("llm_provider", string(llm.ProviderGemini))
	v.SetDefault("gemini_model", llm.DefaultGeminiModel)
	v.SetDefault("llm_base_url", llm.DefaultOpenAIURL)
	v.SetDefault("llm_model", llm.DefaultOpenAIModel)
	v.SetDefault("log_level", "warn")
	v.SetDefault("strategy", string(analysis.StrategyStars))
	v.SetDefault("limit", 20)
	v.SetDefault("include_snippets", true)
	v.SetDefault("role_inference", true)
	v.SetDefault("format", FormatText)
	v.SetDefault("concurrency", 2)

	v.AutomaticEnv()
	for _, key := range []string{
		"surreal_url", "surreal_ns", "surreal_db", "surreal_user", "surreal_pass",
		"github_token",
		"llm_provider", "gemini_api_key", "gemini_model",
		"llm_api_key", "llm_base_url", "llm_model", "llm_json_mode",
		"log_level", "strategy", "limit", "include_snippets", "role_inference",
		"offline", "format", "output", "store", "concurrency",
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	var modelFlag string
	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if key == "model" {
				if f.Changed {
					modelFlag = f.Value.String()
				}
				continue
			}
			_ = v.BindPFlag(key, f)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.LLMProvider = string(llm.ParseProvider(cfg.LLMProvider))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))

	// --model applies to whichever provider is selected.
	if modelFlag != "" {
		if cfg.LLMProvider == string(llm.ProviderOpenAI) {
			cfg.LLMModel = modelFlag
		} else {
			cfg.GeminiModel = modelFlag
		}
	}

	// The SDK appends /rpc automatically
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/rpc")
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks enumerations and bounds.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// SummaryOptions is the summary configuration for the selected provider.
func (c *Config) SummaryOptions() summary.Options {
	gen := llm.DefaultGenerationConfig()
	gen.JSONMode = c.LLMJSONMode

	opts := summary.Options{
		Provider:      llm.ParseProvider(c.LLMProvider),
		Generation:    gen,
		Offline:       c.Offline,
		RoleInference: c.RoleInference,
	}
	switch opts.Provider {
	case llm.ProviderOpenAI:
		opts.Model = c.LLMModel
		opts.APIKey = c.LLMAPIKey
		opts.BaseURL = c.LLMBaseURL
	default:
		opts.Model = c.GeminiModel
		opts.APIKey = c.GeminiAPIKey
	}
	return opts
}

// CorpusOptions is the corpus configuration derived from IncludeSnippets.
func (c *Config) CorpusOptions() analysis.CorpusOptions {
	opts := analysis.DefaultCorpusOptions()
	opts.IncludeSnippets = c.IncludeSnippets
	return opts
}
