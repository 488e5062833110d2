// internal/matching/rank/rank_test.go
package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

var baseTime = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

func candidate(vehicleID string, score float64) models.MatchCandidate {
	return models.MatchCandidate{
		VehicleID:     vehicleID,
		FreightID:     "freight-001",
		Score:         score,
		AvailableFrom: baseTime,
	}
}

func ids(candidates []models.MatchCandidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.VehicleID)
	}
	return out
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	ranked := Rank([]models.MatchCandidate{
		candidate("veh-low", 40),
		candidate("veh-high", 95),
		candidate("veh-mid", 70),
	}, 0)

	assert.Equal(t, []string{"veh-high", "veh-mid", "veh-low"}, ids(ranked))
}

func TestRank_DropsDisqualified(t *testing.T) {
	bad := candidate("veh-bad", 99)
	bad.Disqualified = true
	bad.DisqualifyReason = models.DisqualifyCapacityWeight

	ranked := Rank([]models.MatchCandidate{bad, candidate("veh-ok", 50)}, 0)
	assert.Equal(t, []string{"veh-ok"}, ids(ranked))
}

func TestRank_TieBreaks(t *testing.T) {
	// Equal score: higher proximity wins.
	a := candidate("veh-a", 80)
	a.SubScores.Proximity = 90
	b := candidate("veh-b", 80)
	b.SubScores.Proximity = 60
	assert.Equal(t, []string{"veh-a", "veh-b"}, ids(Rank([]models.MatchCandidate{b, a}, 0)))

	// Equal score and proximity: earlier availability wins.
	c := candidate("veh-c", 80)
	c.AvailableFrom = baseTime.Add(-24 * time.Hour)
	d := candidate("veh-d", 80)
	assert.Equal(t, []string{"veh-c", "veh-d"}, ids(Rank([]models.MatchCandidate{d, c}, 0)))

	// All equal: lower vehicle id wins, making the order total.
	e := candidate("veh-e", 80)
	f := candidate("veh-f", 80)
	assert.Equal(t, []string{"veh-e", "veh-f"}, ids(Rank([]models.MatchCandidate{f, e}, 0)))
}

func TestRank_Limit(t *testing.T) {
	input := []models.MatchCandidate{
		candidate("veh-1", 90),
		candidate("veh-2", 80),
		candidate("veh-3", 70),
	}

	assert.Len(t, Rank(input, 2), 2)
	assert.Len(t, Rank(input, 0), 3, "zero limit keeps everything")
	assert.Len(t, Rank(input, 10), 3, "limit beyond input is harmless")
}

func TestRank_EmptyInput(t *testing.T) {
	ranked := Rank(nil, 5)
	require.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	input := []models.MatchCandidate{
		candidate("veh-1", 10),
		candidate("veh-2", 90),
	}
	_ = Rank(input, 0)
	assert.Equal(t, "veh-1", input[0].VehicleID)
	assert.Equal(t, "veh-2", input[1].VehicleID)
}
