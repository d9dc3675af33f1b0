// Package summary produces a ProfileSummary from prepared entries, either
// with a generative model or with the local heuristic.
package summary

import (
	"context"
	"errors"

	"github.com/kevinmichaelchen/profile-analyzer/internal/analysis"
	"github.com/kevinmichaelchen/profile-analyzer/internal/llm"
	"github.com/kevinmichaelchen/profile-analyzer/internal/logger"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrUnparseableResponse means the model answered with text that holds
	// no ProfileSummary object.
	ErrUnparseableResponse = errors.New("could not parse JSON from model response")
	// ErrModelInvocation means the model call itself failed.
	ErrModelInvocation = errors.New("model invocation failed")
)

// SummaryProducer turns prepared entries into a ProfileSummary.
type SummaryProducer interface {
	Name() string
	Produce(ctx context.Context, entries []models.PreparedEntry) (models.ProfileSummary, error)
}

// Options is the explicit configuration of the summary step.
type Options struct {
	Provider   llm.Provider
	Model      string
	APIKey     string
	BaseURL    string
	Generation llm.GenerationConfig

	// Offline forces the heuristic producer even when a key is present.
	Offline bool
	// RoleInference is passed to the heuristic producer.
	RoleInference bool
}

// clientFactory is swapped in tests.
var clientFactory = llm.NewClient

// NewProducer picks the model-backed producer when credentials are present
// and a client can be built, and the heuristic producer otherwise.
func NewProducer(ctx context.Context, opts Options) SummaryProducer {
	heuristic := NewHeuristic(analysis.SummaryOptions{RoleInference: opts.RoleInference})

	if opts.Offline {
		logger.Info("Offline mode, using local summarizer")
		return heuristic
	}
	if opts.APIKey == "" {
		logger.Info("No model API key configured, using local summarizer")
		return heuristic
	}

	client, err := clientFactory(ctx, llm.Config{
		Provider:   opts.Provider,
		Model:      opts.Model,
		APIKey:     opts.APIKey,
		BaseURL:    opts.BaseURL,
		Generation: opts.Generation,
	})
	if err != nil {
		logger.Warn("Model client unavailable, using local summarizer",
			zap.String("provider", string(opts.Provider)),
			zap.Error(err))
		return heuristic
	}
	return NewModel(client, modelLabel(opts))
}

// Generate selects a producer for opts and runs it once.
func Generate(ctx context.Context, entries []models.PreparedEntry, opts Options) (models.ProfileSummary, error) {
	return NewProducer(ctx, opts).Produce(ctx, entries)
}

func modelLabel(opts Options) string {
	provider := llm.ParseProvider(string(opts.Provider))
	name := opts.Model
	if name == "" {
		switch provider {
		case llm.ProviderOpenAI:
			name = llm.DefaultOpenAIModel
		default:
			name = llm.DefaultGeminiModel
		}
	}
	return string(provider) + ":" + name
}
