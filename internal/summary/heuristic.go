package summary

import (
	"context"

	"github.com/kevinmichaelchen/profile-analyzer/internal/analysis"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

// Heuristic is the SummaryProducer backed by analysis.SummarizeLocally.
type Heuristic struct {
	opts analysis.SummaryOptions
}

func NewHeuristic(opts analysis.SummaryOptions) *Heuristic {
	return &Heuristic{opts: opts}
}

func (h *Heuristic) Name() string { return "local" }

func (h *Heuristic) Produce(_ context.Context, entries []models.PreparedEntry) (models.ProfileSummary, error) {
	return analysis.SummarizeLocally(entries, h.opts), nil
}
