// internal/matching/retrieve/repository.go

// Package retrieve implements the candidate retrieval read model: structural,
// non-graded prefilters that bound the candidate set before scoring.
package retrieve

import (
	"context"
	"errors"
	"time"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

var (
	// ErrFreightNotFound marks a freight id that does not resolve to an
	// existing, active offer.
	ErrFreightNotFound = errors.New("freight offer not found")

	// ErrRetrievalTimeout marks a repository read that exceeded its
	// context deadline.
	ErrRetrievalTimeout = errors.New("candidate retrieval timed out")
)

// VehicleSource returns the vehicle offers structurally eligible to be
// scored against a freight. An empty set is valid, not an error.
type VehicleSource interface {
	ListCandidateVehicles(ctx context.Context, freight *models.FreightOffer) ([]models.VehicleOffer, error)
}

// OfferRepository is the engine's read-only view of persisted offers. It
// must reflect current status and availability at call time.
type OfferRepository interface {
	VehicleSource
	GetFreight(ctx context.Context, id string) (*models.FreightOffer, error)
	ListActiveFreightsSince(ctx context.Context, since time.Time) ([]models.FreightOffer, error)
}
