package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/kevinmichaelchen/profile-analyzer/internal/logger"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

// Enrich fetches the README, and snippets when includeSnippets is set, for
// each record in place. Records are processed one at a time. Fetch failures
// surface as empty content; only cancellation is returned.
func Enrich(ctx context.Context, source Source, owner string, repos []models.RepositoryRecord, includeSnippets bool) error {
	for i := range repos {
		if err := ctx.Err(); err != nil {
			return err
		}

		r := &repos[i]
		if r.Readme == nil {
			r.SetReadme(source.FetchReadme(ctx, owner, r.Name))
		}
		if includeSnippets && !r.SnippetsFetched {
			r.SetSnippets(source.FetchCodeSnippets(ctx, owner, r.Name))
		}

		logger.Debug("Enriched repository",
			zap.String("owner", owner),
			zap.String("repo", r.Name),
			zap.Int("readme_bytes", len(*r.Readme)),
			zap.Int("snippets", len(r.Snippets)))
	}
	return nil
}
