package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	assert.Equal(t, ProviderGemini, ParseProvider(""))
	assert.Equal(t, ProviderGemini, ParseProvider(" Gemini "))
	assert.Equal(t, ProviderOpenAI, ParseProvider("OPENAI"))
	assert.Equal(t, Provider("mistral"), ParseProvider("mistral"))
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, Config{Provider: ProviderOpenAI})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient(ctx, Config{Provider: "mistral", APIKey: "k"})
	assert.ErrorContains(t, err, "unsupported LLM provider")

	c, err := NewClient(ctx, Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	oc, ok := c.(*OpenAIClient)
	require.True(t, ok)
	assert.Equal(t, DefaultOpenAIModel, oc.model)
}

func TestOpenAIClientGenerate(t *testing.T) {
	tests := []struct {
		name     string
		jsonMode bool
		response string
		status   int
		want     string
		wantErr  string
	}{
		{
			name:     "returns first choice",
			response: `{"choices":[{"message":{"role":"assistant","content":"{\"overall_summary\":\"ok\"}"}}]}`,
			status:   http.StatusOK,
			want:     `{"overall_summary":"ok"}`,
		},
		{
			name:     "json mode",
			jsonMode: true,
			response: `{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`,
			status:   http.StatusOK,
			want:     `{}`,
		},
		{
			name:     "no choices",
			response: `{"choices":[]}`,
			status:   http.StatusOK,
			wantErr:  "no choices",
		},
		{
			name:     "server error",
			response: `{"error":{"message":"boom"}}`,
			status:   http.StatusInternalServerError,
			wantErr:  "chat completion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "test-model", body["model"])
				assert.InDelta(t, 0.2, body["temperature"], 0.0001)
				assert.InDelta(t, 0.9, body["top_p"], 0.0001)
				assert.EqualValues(t, 1500, body["max_tokens"])
				if tt.jsonMode {
					assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
				} else {
					assert.NotContains(t, body, "response_format")
				}

				msgs, _ := body["messages"].([]any)
				require.Len(t, msgs, 2)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			gen := DefaultGenerationConfig()
			gen.JSONMode = tt.jsonMode
			client := NewOpenAIClient(server.URL+"/", "test-key", "test-model", gen)

			got, err := client.Generate(context.Background(), "system", "prompt")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
