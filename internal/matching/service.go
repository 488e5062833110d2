// internal/matching/service.go

// Package matching composes retrieval, scoring and ranking into the match
// computation used by both the interactive API and the batch dispatcher.
package matching

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/errors"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/metrics"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/matching/rank"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/matching/retrieve"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/matching/scoring"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

// Request sources for metrics labelling.
const (
	SourceAPI   = "api"
	SourceBatch = "batch"
)

// Service computes ranked match results for freight offers.
type Service struct {
	repo   retrieve.OfferRepository
	engine *scoring.Engine
	cfg    config.MatchingConfig
	logger logger.Logger
}

// NewService creates the matching service.
func NewService(repo retrieve.OfferRepository, cfg config.MatchingConfig, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: scoring.NewEngine(cfg),
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "matching-service"}),
	}
}

// Match computes the ranked match result for one freight on behalf of the
// interactive API.
func (s *Service) Match(ctx context.Context, freightID string, limit int) (*models.MatchResult, error) {
	return s.MatchFrom(ctx, SourceAPI, freightID, limit)
}

// MatchFrom is Match with an explicit request source for metrics. An empty
// candidate list is a valid result, not an error.
func (s *Service) MatchFrom(ctx context.Context, source, freightID string, limit int) (*models.MatchResult, error) {
	start := time.Now()

	limit, err := s.normalizeLimit(freightID, limit)
	if err != nil {
		metrics.MatchRequests.WithLabelValues(source, "invalid").Inc()
		return nil, err
	}

	freight, err := s.repo.GetFreight(ctx, freightID)
	if err != nil {
		return nil, s.mapRetrievalError(source, freightID, err)
	}

	result, err := s.matchFreight(ctx, source, freight, limit)
	if err != nil {
		return nil, err
	}

	metrics.MatchRequests.WithLabelValues(source, "success").Inc()
	metrics.MatchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	s.logger.Info("match computed", map[string]interface{}{
		"freightId":  freightID,
		"candidates": len(result.Candidates),
		"bestScore":  result.BestScore(),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return result, nil
}

// MatchOffer scores an already-loaded freight. The batch dispatcher uses this
// to avoid a second freight lookup per item.
func (s *Service) MatchOffer(ctx context.Context, freight *models.FreightOffer, limit int) (*models.MatchResult, error) {
	limit, err := s.normalizeLimit(freight.ID, limit)
	if err != nil {
		metrics.MatchRequests.WithLabelValues(SourceBatch, "invalid").Inc()
		return nil, err
	}

	result, err := s.matchFreight(ctx, SourceBatch, freight, limit)
	if err != nil {
		return nil, err
	}

	metrics.MatchRequests.WithLabelValues(SourceBatch, "success").Inc()
	return result, nil
}

func (s *Service) matchFreight(ctx context.Context, source string, freight *models.FreightOffer, limit int) (*models.MatchResult, error) {
	vehicles, err := s.repo.ListCandidateVehicles(ctx, freight)
	if err != nil {
		return nil, s.mapRetrievalError(source, freight.ID, err)
	}

	if s.cfg.MaxCandidates > 0 && len(vehicles) > s.cfg.MaxCandidates {
		s.logger.Warn("candidate set truncated", map[string]interface{}{
			"freightId": freight.ID,
			"retrieved": len(vehicles),
			"cap":       s.cfg.MaxCandidates,
		})
		vehicles = vehicles[:s.cfg.MaxCandidates]
	}

	candidates := make([]models.MatchCandidate, 0, len(vehicles))
	for i := range vehicles {
		if err := ctx.Err(); err != nil {
			metrics.MatchRequests.WithLabelValues(source, "timeout").Inc()
			return nil, errors.NewMatchTimeoutError(freight.ID)
		}

		candidate, err := s.engine.Score(freight, &vehicles[i])
		metrics.CandidatesScored.Inc()
		if err != nil {
			// A malformed offer poisons one candidate, not the match.
			s.logger.Warn("candidate scoring fault", map[string]interface{}{
				"freightId": freight.ID,
				"vehicleId": vehicles[i].ID,
				"error":     err.Error(),
			})
			continue
		}
		if candidate.Disqualified {
			metrics.CandidatesDisqualified.WithLabelValues(candidate.DisqualifyReason).Inc()
		}
		candidates = append(candidates, candidate)
	}

	return &models.MatchResult{
		FreightID:  freight.ID,
		Candidates: rank.Rank(candidates, limit),
		ComputedAt: time.Now().UTC(),
	}, nil
}

// normalizeLimit applies the default for a zero limit and caps overly large
// requests at the configured maximum.
func (s *Service) normalizeLimit(freightID string, limit int) (int, error) {
	if freightID == "" {
		return 0, errors.NewValidationError("freight id must not be empty")
	}
	if limit < 0 {
		return 0, errors.NewValidationError(fmt.Sprintf("limit must not be negative, got %d", limit))
	}
	if limit == 0 {
		return s.cfg.DefaultLimit, nil
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit, nil
	}
	return limit, nil
}

func (s *Service) mapRetrievalError(source, freightID string, err error) *errors.StandardError {
	switch {
	case stderrors.Is(err, retrieve.ErrFreightNotFound):
		metrics.MatchRequests.WithLabelValues(source, "not_found").Inc()
		return errors.NewFreightNotFoundError(freightID)
	case stderrors.Is(err, retrieve.ErrRetrievalTimeout):
		metrics.MatchRequests.WithLabelValues(source, "timeout").Inc()
		return errors.NewCandidateRetrievalTimeoutError()
	default:
		metrics.MatchRequests.WithLabelValues(source, "error").Inc()
		s.logger.Error("candidate retrieval failed", map[string]interface{}{
			"freightId": freightID,
			"error":     err.Error(),
		})
		return errors.NewCandidateRetrievalFailedError(err)
	}
}
