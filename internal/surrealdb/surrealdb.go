package surrealdb

import (
	"context"
	"fmt"

	sdk "github.com/surrealdb/surrealdb.go"

	"github.com/kevinmichaelchen/profile-analyzer/internal/config"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

// DefaultHistoryLimit caps ListReports when no limit is given.
const DefaultHistoryLimit = 20

type Client struct {
	db *sdk.DB
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.SurrealURL == "" {
		return nil, fmt.Errorf("connecting to SurrealDB: SURREAL_URL is not set")
	}

	db, err := sdk.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, sdk.Auth{
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}

	if err := db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting ns/db: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}

// Schema holds generated reports only. Fetched repository data is never
// stored.
const Schema = `
DEFINE TABLE IF NOT EXISTS report SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS owner      ON TABLE report TYPE string;
DEFINE FIELD IF NOT EXISTS producer   ON TABLE report TYPE string;
DEFINE FIELD IF NOT EXISTS created_at ON TABLE report TYPE string;
DEFINE FIELD IF NOT EXISTS summary    ON TABLE report FLEXIBLE TYPE object;

DEFINE INDEX IF NOT EXISTS idx_owner_created ON TABLE report FIELDS owner, created_at;
`

func (c *Client) InitSchema(ctx context.Context) error {
	_, err := sdk.Query[any](ctx, c.db, Schema, nil)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// SaveReport creates a report record keyed by r.ID.
func (c *Client) SaveReport(ctx context.Context, r models.Report) error {
	_, err := sdk.Query[any](ctx, c.db,
		`CREATE type::thing("report", $id) CONTENT $data`,
		map[string]any{
			"id":   r.ID,
			"data": reportData(r),
		})
	if err != nil {
		return fmt.Errorf("saving report for %s: %w", r.Owner, err)
	}
	return nil
}

// ListReports returns the newest reports for owner first.
func (c *Client) ListReports(ctx context.Context, owner string, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query := fmt.Sprintf(`
		SELECT record::id(id) AS id, owner, producer, summary, created_at
		FROM report
		WHERE owner = $owner
		ORDER BY created_at DESC
		LIMIT %d
	`, limit)

	results, err := sdk.Query[[]models.Report](ctx, c.db, query,
		map[string]any{"owner": owner})
	if err != nil {
		return nil, fmt.Errorf("listing reports for %s: %w", owner, err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	reports := (*results)[0].Result
	for i := range reports {
		reports[i].Summary.Normalize()
	}
	return reports, nil
}

// reportData builds the record body. Sequences are always present so that
// a stored summary reads back with the same shape.
func reportData(r models.Report) map[string]any {
	s := r.Summary
	s.Normalize()

	projects := make([]map[string]any, len(s.TopProjects))
	for i, p := range s.TopProjects {
		projects[i] = map[string]any{
			"name":              p.Name,
			"url":               p.URL,
			"why_it_stands_out": p.WhyItStandsOut,
		}
	}

	return map[string]any{
		"owner":      r.Owner,
		"producer":   r.Producer,
		"created_at": r.CreatedAt,
		"summary": map[string]any{
			"overall_summary":              s.OverallSummary,
			"key_languages_and_frameworks": s.KeyLanguagesAndFrameworks,
			"tools_and_technologies":       s.ToolsAndTechnologies,
			"top_projects":                 projects,
			"areas_of_expertise":           s.AreasOfExpertise,
		},
	}
}
