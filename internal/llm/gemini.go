package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the Google GenAI SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
	gen    GenerationConfig
}

func NewGeminiClient(ctx context.Context, apiKey, model string, gen GenerationConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, gen: gen}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(c.gen.Temperature),
		TopP:              genai.Ptr(c.gen.TopP),
		MaxOutputTokens:   int32(c.gen.MaxOutputTokens),
		ResponseMIMEType:  "application/json",
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content (%s): %w", c.model, err)
	}
	return resp.Text(), nil
}
