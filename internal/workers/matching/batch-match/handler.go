// internal/workers/matching/batch-match/handler.go
package batchmatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/errgroup"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/errors"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/metrics"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/observability"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

const (
	TaskType = "batch-match-freights"
)

// MatchService computes the ranked candidates for one freight.
type MatchService interface {
	MatchOffer(ctx context.Context, freight *models.FreightOffer, limit int) (*models.MatchResult, error)
}

// FreightLister returns the freights a batch run must process.
type FreightLister interface {
	ListActiveFreightsSince(ctx context.Context, since time.Time) ([]models.FreightOffer, error)
}

// Notifier fans out notifications for one freight's result.
type Notifier interface {
	Send(ctx context.Context, freight *models.FreightOffer, result *models.MatchResult) (int, error)
}

type Handler struct {
	config   *Config
	freights FreightLister
	matcher  MatchService
	notifier Notifier
	obs      *observability.Observability
	logger   logger.Logger
}

func NewHandler(config *Config, freights FreightLister, matcher MatchService, notifier Notifier, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		freights: freights,
		matcher:  matcher,
		notifier: notifier,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	if err := h.validateInput(job.Variables); err != nil {
		h.failJob(client, job, string(errors.ErrCodeValidation), err.Error(), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	start := time.Now()
	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.BatchRuns.WithLabelValues("failure").Inc()
		h.obs.RecordRun(ctx, "failure")
		code := errors.ErrCodeBatchRunFailed
		if stdErr, ok := err.(*errors.StandardError); ok {
			code = stdErr.Code
		}
		h.failJob(client, job, string(code), err.Error(), h.remainingRetries(job, code))
		return
	}

	metrics.BatchRuns.WithLabelValues("success").Inc()
	h.obs.RecordRun(ctx, "success")
	h.obs.RecordRunDuration(ctx, time.Since(start), "success")
	h.completeJob(client, job, output)
}

func (h *Handler) validateInput(variables string) error {
	schemaLoader := gojsonschema.NewGoLoader(inputSchema)
	documentLoader := gojsonschema.NewStringLoader(variables)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("input validation failed: %v", errs)
	}
	return nil
}

// execute runs one batch pass: list recent freights, match each with bounded
// parallelism, and fan out notifications per matched freight. A single
// freight's failure is recorded in the report; only a failure to list the
// freights fails the whole run.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	hoursBack := h.config.HoursBack
	if input.HoursBack > 0 {
		hoursBack = input.HoursBack
	}
	limit := h.config.LimitPerFreight
	if input.LimitPerFreight > 0 {
		limit = input.LimitPerFreight
	}

	since := time.Now().UTC().Add(-time.Duration(hoursBack) * time.Hour)
	freights, err := h.freights.ListActiveFreightsSince(ctx, since)
	if err != nil {
		return nil, errors.NewBatchRunFailedError(fmt.Errorf("list freights since %s: %w", since.Format(time.RFC3339), err))
	}

	h.logger.Info("batch run started", map[string]interface{}{
		"freights":  len(freights),
		"hoursBack": hoursBack,
		"limit":     limit,
	})

	var mu sync.Mutex
	report := models.BatchReport{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.Concurrency)

	for i := range freights {
		freight := &freights[i]
		g.Go(func() error {
			// A deadline stops the run; already-processed freights keep
			// their notifications.
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := h.matcher.MatchOffer(gctx, freight, limit)

			mu.Lock()
			defer mu.Unlock()
			report.FreightsProcessed++
			metrics.BatchFreightsProcessed.Inc()

			if err != nil {
				report.Failures = append(report.Failures, models.BatchFailure{
					FreightID: freight.ID,
					Error:     err.Error(),
				})
				return nil
			}
			if len(result.Candidates) == 0 {
				return nil
			}
			report.FreightsMatched++

			// Fan-out stays serialized per freight so the dedup pass sees
			// the whole result at once.
			sent, err := h.notifier.Send(gctx, freight, result)
			report.NotificationsSent += sent
			if err != nil {
				report.Failures = append(report.Failures, models.BatchFailure{
					FreightID: freight.ID,
					Error:     err.Error(),
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Partial progress is reported on the error path too, so the
		// operator can see how far the run got before the deadline.
		h.logger.Error("batch run aborted", map[string]interface{}{
			"processed": report.FreightsProcessed,
			"error":     err.Error(),
		})
		return nil, errors.NewBatchRunFailedError(err)
	}

	h.logger.Info("batch run finished", map[string]interface{}{
		"processed":     report.FreightsProcessed,
		"matched":       report.FreightsMatched,
		"notifications": report.NotificationsSent,
		"failures":      len(report.Failures),
	})

	return &Output{
		BatchReport: report,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// remainingRetries decrements the broker's remaining-retry counter. FailJob
// replaces the job's counter with the value sent, so a constant would never
// reach zero and the run would retry forever. The configured bound caps the
// counter when the process model seeds a larger one.
func (h *Handler) remainingRetries(job entities.Job, code errors.ErrorCode) int32 {
	if errors.GetRetryCount(code) == 0 {
		return 0
	}
	remaining := job.Retries - 1
	if remaining < 0 {
		remaining = 0
	}
	if bound := int32(h.config.MaxRetries); remaining > bound {
		remaining = bound
	}
	return remaining
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(fmt.Sprintf("%s: %s", errorCode, errorMessage)).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
