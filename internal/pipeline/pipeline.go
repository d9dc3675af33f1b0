// Package pipeline runs the analysis of one or more owners: fetch, select,
// enrich, prepare and summarize.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kevinmichaelchen/profile-analyzer/internal/analysis"
	"github.com/kevinmichaelchen/profile-analyzer/internal/logger"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
	"github.com/kevinmichaelchen/profile-analyzer/internal/summary"
)

// ErrNoRepositories is returned when an owner has no public repositories.
var ErrNoRepositories = errors.New("no public repos found for user")

// Source supplies repository records and their README/snippet content.
type Source interface {
	FetchRepositories(ctx context.Context, owner string) ([]models.RepositoryRecord, error)
	FetchReadme(ctx context.Context, owner, repo string) string
	FetchCodeSnippets(ctx context.Context, owner, repo string) []models.CodeSnippet
}

// ReportStore persists generated summaries.
type ReportStore interface {
	SaveReport(ctx context.Context, r models.Report) error
}

type Options struct {
	Strategy    analysis.Strategy
	Limit       int
	Corpus      analysis.CorpusOptions
	Concurrency int
	// Token identifies the credentials behind Source in the listing cache.
	Token       string
}

// ProgressFunc is called after each owner finishes, with the number of
// owners done so far. Calls may come from concurrent goroutines.
type ProgressFunc func(owner string, done, total int)

// Result is the outcome of analyzing one owner.
type Result struct {
	Owner    string
	Selected []models.RepositoryRecord
	Entries  []models.PreparedEntry
	Summary  models.ProfileSummary
	Producer string
	ReportID string
}

// Analyzer wires a Source, a SummaryProducer and an optional ReportStore.
type Analyzer struct {
	source   Source
	cache    *Cache
	producer summary.SummaryProducer
	store    ReportStore
	progress ProgressFunc
	opts     Options
	now      func() time.Time
}

func NewAnalyzer(source Source, cache *Cache, producer summary.SummaryProducer, opts Options) *Analyzer {
	if cache == nil {
		cache = NewCache()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Analyzer{
		source:   source,
		cache:    cache,
		producer: producer,
		opts:     opts,
		now:      time.Now,
	}
}

// WithStore saves every generated summary to store.
func (a *Analyzer) WithStore(store ReportStore) *Analyzer {
	a.store = store
	return a
}

// WithProgress reports each finished owner to fn.
func (a *Analyzer) WithProgress(fn ProgressFunc) *Analyzer {
	a.progress = fn
	return a
}

// Analyze runs the pipeline for a single owner. Enrichment is sequential.
func (a *Analyzer) Analyze(ctx context.Context, owner string) (*Result, error) {
	repos, err := a.cache.Repositories(ctx, a.source, owner, a.opts.Token)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("%s: %w", owner, ErrNoRepositories)
	}

	chosen := analysis.SelectTop(repos, a.opts.Strategy, a.opts.Limit)
	logger.Info("Selected repositories",
		zap.String("owner", owner),
		zap.Int("fetched", len(repos)),
		zap.Int("selected", len(chosen)),
		zap.String("strategy", string(a.opts.Strategy)))

	if err := Enrich(ctx, a.source, owner, chosen, a.opts.Corpus.IncludeSnippets); err != nil {
		return nil, err
	}

	entries := analysis.Prepare(owner, chosen, a.opts.Corpus)

	s, err := a.producer.Produce(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("summarizing %s: %w", owner, err)
	}

	res := &Result{
		Owner:    owner,
		Selected: chosen,
		Entries:  entries,
		Summary:  s,
		Producer: a.producer.Name(),
	}

	if a.store != nil {
		report := models.Report{
			ID:        uuid.NewString(),
			Owner:     owner,
			Producer:  res.Producer,
			Summary:   s,
			CreatedAt: a.now().UTC().Format(time.RFC3339),
		}
		if err := a.store.SaveReport(ctx, report); err != nil {
			return nil, fmt.Errorf("storing report for %s: %w", owner, err)
		}
		res.ReportID = report.ID
	}
	return res, nil
}

// Run analyzes owners with at most Options.Concurrency in flight. Results
// are returned in the order of owners. The first failure cancels the rest.
func (a *Analyzer) Run(ctx context.Context, owners []string) ([]*Result, error) {
	results := make([]*Result, len(owners))
	var done atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for i, owner := range owners {
		g.Go(func() error {
			res, err := a.Analyze(gCtx, owner)
			if err != nil {
				return err
			}
			results[i] = res
			n := done.Add(1)
			if a.progress != nil {
				a.progress(owner, int(n), len(owners))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
