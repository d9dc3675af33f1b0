package pipeline

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/kevinmichaelchen/profile-analyzer/internal/logger"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

type cacheKey struct {
	owner string
	token string
}

// Cache memoizes repository listings per (owner, token) for the life of the
// process. Nothing is written to disk. Listings fetched with different
// credentials never mix, since a token can see repositories another cannot.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey][]models.RepositoryRecord
}

func NewCache() *Cache {
	return &Cache{entries: map[cacheKey][]models.RepositoryRecord{}}
}

// Repositories returns the cached listing for (owner, token), fetching it
// from source on a miss. Callers get their own copy and may enrich it freely.
func (c *Cache) Repositories(ctx context.Context, source Source, owner, token string) ([]models.RepositoryRecord, error) {
	key := cacheKey{owner: owner, token: token}

	c.mu.Lock()
	cached, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		logger.Debug("Repository listing cache hit", zap.String("owner", owner))
		return slices.Clone(cached), nil
	}

	repos, err := source.FetchRepositories(ctx, owner)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = repos
	c.mu.Unlock()

	return slices.Clone(repos), nil
}
