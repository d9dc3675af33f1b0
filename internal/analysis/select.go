// Package analysis turns raw repository records into a bounded corpus and
// derives a profile summary from it without calling a model.
package analysis

import (
	"slices"

	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

// Strategy names how SelectTop ranks repositories.
type Strategy string

const (
	StrategyStars         Strategy = "stars"
	StrategyRecent        Strategy = "recent"
	StrategyStarsAndForks Strategy = "stars_and_forks"
)

// Strategies lists the named strategies in the order offered to users.
var Strategies = []Strategy{StrategyStars, StrategyRecent, StrategyStarsAndForks}

// SelectTop drops forks, ranks what remains and returns at most limit
// records. Ties keep their input order.
//
// Any strategy other than "stars" or "recent", including unknown ones,
// ranks by (stars, forks) descending.
func SelectTop(repos []models.RepositoryRecord, strategy Strategy, limit int) []models.RepositoryRecord {
	out := make([]models.RepositoryRecord, 0, len(repos))
	for _, r := range repos {
		if !r.Fork {
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, compareFor(strategy))

	if limit < 0 {
		limit = 0
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func compareFor(strategy Strategy) func(a, b models.RepositoryRecord) int {
	switch strategy {
	case StrategyStars:
		return func(a, b models.RepositoryRecord) int {
			return b.Stars - a.Stars
		}
	case StrategyRecent:
		return func(a, b models.RepositoryRecord) int {
			switch {
			case a.PushedAt > b.PushedAt:
				return -1
			case a.PushedAt < b.PushedAt:
				return 1
			}
			return 0
		}
	default:
		return func(a, b models.RepositoryRecord) int {
			if a.Stars != b.Stars {
				return b.Stars - a.Stars
			}
			return b.Forks - a.Forks
		}
	}
}
