// internal/models/match.go
package models

import "time"

// Disqualification reasons. A disqualified candidate never appears in a
// MatchResult, independent of its graded sub-scores.
const (
	DisqualifyCapacityWeight = "CAPACITY_WEIGHT"
	DisqualifyCapacityVolume = "CAPACITY_VOLUME"
	DisqualifyLoadingMeters  = "LOADING_METERS"
	DisqualifyEquipment      = "EQUIPMENT_MISSING"
	DisqualifyADR            = "ADR_REQUIRED"
	DisqualifyTemperature    = "TEMPERATURE_CONTROL"
)

// SubScores holds the per-dimension fitness scores, each in [0,100].
type SubScores struct {
	Capacity    int `json:"capacity"`
	Equipment   int `json:"equipment"`
	Proximity   int `json:"proximity"`
	TimeFit     int `json:"timeFit"`
	Destination int `json:"destination"`
}

// MatchCandidate is the scored pairing of one freight with one vehicle.
// Derived and ephemeral; recomputed on every call, never persisted.
type MatchCandidate struct {
	VehicleID        string    `json:"vehicleId"`
	FreightID        string    `json:"freightId"`
	CompanyID        string    `json:"company"`
	SubScores        SubScores `json:"subScores"`
	Score            float64   `json:"score"`
	Disqualified     bool      `json:"-"`
	DisqualifyReason string    `json:"-"`

	// AvailableFrom carries the vehicle's availability start for the
	// ranker's tie-break; not part of the API payload.
	AvailableFrom time.Time `json:"-"`
}

// MatchResult is the ordered sequence of candidates for one freight,
// truncated to the caller's limit.
type MatchResult struct {
	FreightID  string           `json:"freightId"`
	Candidates []MatchCandidate `json:"candidates"`
	ComputedAt time.Time        `json:"computedAt"`
}

// BestScore returns the aggregate score of the top candidate, or 0 for an
// empty result.
func (r *MatchResult) BestScore() float64 {
	if len(r.Candidates) == 0 {
		return 0
	}
	return r.Candidates[0].Score
}

// BatchFailure records a single freight whose match computation failed inside
// an otherwise successful batch run.
type BatchFailure struct {
	FreightID string `json:"freightId"`
	Error     string `json:"error"`
}

// BatchReport summarizes one batch matching run.
type BatchReport struct {
	FreightsProcessed int            `json:"freightsProcessed"`
	FreightsMatched   int            `json:"freightsMatched"`
	NotificationsSent int            `json:"notificationsSent"`
	Failures          []BatchFailure `json:"failures,omitempty"`
}
