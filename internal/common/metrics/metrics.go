// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_requests_total",
			Help: "Total number of match computations by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Total number of (freight, vehicle) pairs scored",
		},
	)

	CandidatesDisqualified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_disqualified_total",
			Help: "Total number of candidates excluded by hard constraints",
		},
		[]string{"reason"},
	)

	MatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "matching_duration_seconds",
			Help: "Duration of a single-freight match computation",
		},
		[]string{"source"},
	)

	BatchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_batch_runs_total",
			Help: "Total number of batch matching runs by outcome",
		},
		[]string{"outcome"},
	)

	BatchFreightsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_batch_freights_processed_total",
			Help: "Total number of freights processed by batch runs",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_notifications_sent_total",
			Help: "Total number of match notifications sent by recipient kind",
		},
		[]string{"recipient"},
	)
)
