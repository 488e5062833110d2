// internal/api/matching/handler.go

// Package matching exposes the interactive match computation over HTTP.
package matching

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/errors"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

// Matcher computes the ranked match result for one freight.
type Matcher interface {
	Match(ctx context.Context, freightID string, limit int) (*models.MatchResult, error)
}

// Handler serves GET /matching.
type Handler struct {
	matcher Matcher
	timeout time.Duration
	logger  logger.Logger
}

// NewHandler creates the match API handler.
func NewHandler(matcher Matcher, cfg config.APIConfig, log logger.Logger) *Handler {
	return &Handler{
		matcher: matcher,
		timeout: time.Duration(cfg.RequestTimeout) * time.Millisecond,
		logger:  log.WithFields(map[string]interface{}{"component": "matching-api"}),
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, &errorResponse{
			Code:    string(errors.ErrCodeValidation),
			Message: "method not allowed",
		})
		return
	}

	freightID := r.URL.Query().Get("freight_id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, &errorResponse{
				Code:    string(errors.ErrCodeValidation),
				Message: "limit must be an integer",
			})
			return
		}
		limit = parsed
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.matcher.Match(ctx, freightID, limit)
	if err != nil {
		h.writeMatchError(w, freightID, err)
		return
	}

	// An empty candidate list is a valid 200 response.
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("encode response failed", map[string]interface{}{
			"freightId": freightID,
			"error":     err.Error(),
		})
	}
}

func (h *Handler) writeMatchError(w http.ResponseWriter, freightID string, err error) {
	stdErr, ok := err.(*errors.StandardError)
	if !ok {
		h.logger.Error("match failed", map[string]interface{}{
			"freightId": freightID,
			"error":     err.Error(),
		})
		writeError(w, http.StatusInternalServerError, &errorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "internal error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch stdErr.Code {
	case errors.ErrCodeValidation:
		status = http.StatusBadRequest
	case errors.ErrCodeFreightNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeCandidateRetrievalTimeout, errors.ErrCodeMatchTimeout:
		status = http.StatusGatewayTimeout
	}

	if status >= 500 {
		h.logger.Error("match failed", map[string]interface{}{
			"freightId": freightID,
			"code":      string(stdErr.Code),
			"error":     stdErr.Message,
		})
	}

	writeError(w, status, &errorResponse{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

func writeError(w http.ResponseWriter, status int, body *errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
