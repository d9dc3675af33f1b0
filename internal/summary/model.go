package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kevinmichaelchen/profile-analyzer/internal/analysis"
	"github.com/kevinmichaelchen/profile-analyzer/internal/llm"
	"github.com/kevinmichaelchen/profile-analyzer/internal/logger"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
	"go.uber.org/zap"
)

// MaxPayloadChars bounds the serialized entries embedded in the prompt.
const MaxPayloadChars = 180_000

const systemPrompt = "You are an expert tech talent analyst."

const promptTemplate = `
You are an expert tech talent analyst. Return ONLY JSON with the following fields:
{
  "overall_summary": string,
  "key_languages_and_frameworks": [string],
  "tools_and_technologies": [string],
  "top_projects": [
    { "name": string, "url": string, "why_it_stands_out": string }
  ],
  "areas_of_expertise": [string]
}
INPUT_DATA:
%s
`

// Model is the SummaryProducer backed by a generative model.
type Model struct {
	client llm.Client
	name   string
}

func NewModel(client llm.Client, name string) *Model {
	return &Model{client: client, name: name}
}

func (m *Model) Name() string { return m.name }

func (m *Model) Produce(ctx context.Context, entries []models.PreparedEntry) (models.ProfileSummary, error) {
	prompt, err := BuildPrompt(entries)
	if err != nil {
		return models.ProfileSummary{}, err
	}

	logger.Debug("Invoking model",
		zap.String("model", m.name),
		zap.Int("entries", len(entries)),
		zap.Int("prompt_bytes", len(prompt)))

	text, err := m.client.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return models.ProfileSummary{}, fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}

	s, err := ParseResponse(text)
	if err != nil {
		logger.Warn("Model response not parseable",
			zap.String("model", m.name),
			zap.Int("response_bytes", len(text)))
		return models.ProfileSummary{}, err
	}
	return s, nil
}

// BuildPrompt serializes entries, cuts the payload to MaxPayloadChars
// characters and embeds it in the instruction template.
func BuildPrompt(entries []models.PreparedEntry) (string, error) {
	if entries == nil {
		entries = []models.PreparedEntry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return "", fmt.Errorf("encoding entries: %w", err)
	}
	payload := strings.TrimSuffix(buf.String(), "\n")

	return fmt.Sprintf(promptTemplate, analysis.TruncateChars(payload, MaxPayloadChars)), nil
}
