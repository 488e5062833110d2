// internal/matching/rank/rank.go

// Package rank orders scored candidates into a MatchResult sequence.
package rank

import (
	"sort"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

// Rank sorts candidates by aggregate score descending and truncates to limit.
// Ties break on higher proximity sub-score, then earlier availability start,
// then lower vehicle id, which makes the order a deterministic total order.
// Disqualified candidates are dropped; empty input yields empty output.
func Rank(candidates []models.MatchCandidate, limit int) []models.MatchCandidate {
	ranked := make([]models.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Disqualified {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.Slice(ranked, func(i, j int) bool {
		return less(&ranked[i], &ranked[j])
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

func less(a, b *models.MatchCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.SubScores.Proximity != b.SubScores.Proximity {
		return a.SubScores.Proximity > b.SubScores.Proximity
	}
	if !a.AvailableFrom.Equal(b.AvailableFrom) {
		return a.AvailableFrom.Before(b.AvailableFrom)
	}
	return a.VehicleID < b.VehicleID
}
