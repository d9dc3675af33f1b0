package analysis

import (
	"strings"

	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

// DefaultMaxReadmeChars is the README budget per repository, in characters.
const DefaultMaxReadmeChars = 60_000

// CorpusOptions controls Prepare.
type CorpusOptions struct {
	MaxReadmeChars  int
	IncludeSnippets bool
}

// DefaultCorpusOptions returns the README budget above with snippets on.
func DefaultCorpusOptions() CorpusOptions {
	return CorpusOptions{MaxReadmeChars: DefaultMaxReadmeChars, IncludeSnippets: true}
}

// Prepare converts enriched records into prepared entries, preserving order.
// owner is accepted for symmetry with the fetch calls and is not part of
// the output.
func Prepare(owner string, repos []models.RepositoryRecord, opts CorpusOptions) []models.PreparedEntry {
	out := make([]models.PreparedEntry, 0, len(repos))
	for _, r := range repos {
		readme := ""
		if r.Readme != nil {
			readme = TruncateChars(*r.Readme, opts.MaxReadmeChars)
		}

		var snippets []models.CodeSnippet
		if opts.IncludeSnippets && len(r.Snippets) > 0 {
			snippets = r.Snippets
		}

		topics := r.Topics
		if topics == nil {
			topics = []string{}
		}

		out = append(out, models.PreparedEntry{
			Name:         r.Name,
			URL:          r.URL,
			Description:  r.Description,
			Language:     r.LanguageName(),
			Stars:        r.Stars,
			Forks:        r.Forks,
			Topics:       topics,
			License:      r.License,
			PushedAt:     r.PushedAt,
			Readme:       readme,
			CodeSnippets: snippets,
			Content:      BuildContent(r.Description, readme, snippets),
		})
	}
	return out
}

// BuildContent joins description, README and snippet bodies into the text
// blob used for keyword scanning and the model payload.
func BuildContent(description, readme string, snippets []models.CodeSnippet) string {
	var b strings.Builder
	b.WriteString(description)
	b.WriteString("\n\n")
	b.WriteString(readme)
	if len(snippets) > 0 {
		bodies := make([]string, len(snippets))
		for i, s := range snippets {
			bodies[i] = s.Content
		}
		b.WriteString("\n\n")
		b.WriteString(strings.Join(bodies, "\n"))
	}
	return b.String()
}

// TruncateChars cuts s to at most n characters (runes, not bytes).
// A non-positive n leaves s untouched.
func TruncateChars(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
