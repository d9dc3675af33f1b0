package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

// ParseResponse reads a ProfileSummary from model output. The whole text is
// tried first; failing that, the object that ends at the last closing brace.
func ParseResponse(text string) (models.ProfileSummary, error) {
	if s, ok := decodeSummary(stripCodeFences(text)); ok {
		return s, nil
	}

	end := strings.LastIndex(text, "}")
	if end != -1 {
		for start := strings.Index(text, "{"); start != -1 && start < end; {
			if s, ok := decodeSummary(text[start : end+1]); ok {
				return s, nil
			}
			next := strings.Index(text[start+1:], "{")
			if next == -1 {
				break
			}
			start += next + 1
		}
	}

	return models.ProfileSummary{}, fmt.Errorf("%w: %s", ErrUnparseableResponse, preview(text, 200))
}

func decodeSummary(text string) (models.ProfileSummary, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return models.ProfileSummary{}, false
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return models.ProfileSummary{}, false
	}
	// Anything after the object means the text was not a single object.
	if dec.More() {
		return models.ProfileSummary{}, false
	}
	// Error and refusal objects carry none of the summary keys.
	if !hasSummaryKey(fields) {
		return models.ProfileSummary{}, false
	}

	var s models.ProfileSummary
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return models.ProfileSummary{}, false
	}
	s.Normalize()
	return s, true
}

// summaryKeys are the top-level fields of a ProfileSummary.
var summaryKeys = []string{
	"overall_summary",
	"key_languages_and_frameworks",
	"tools_and_technologies",
	"top_projects",
	"areas_of_expertise",
}

func hasSummaryKey(fields map[string]json.RawMessage) bool {
	for _, k := range summaryKeys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

// stripCodeFences removes markdown code fences that some models wrap around JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

func preview(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
