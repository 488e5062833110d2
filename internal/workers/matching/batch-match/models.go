// internal/workers/matching/batch-match/models.go
package batchmatch

import "github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"

// Input allows the process to override the scan window and per-freight limit.
// Zero values fall back to the worker's configuration.
type Input struct {
	HoursBack       int `json:"hoursBack,omitempty"`
	LimitPerFreight int `json:"limitPerFreight,omitempty"`
}

// Output is the batch report published back to the process instance.
type Output struct {
	models.BatchReport
	CompletedAt string `json:"completedAt"`
}

// inputSchema validates the job variables before the run starts. Overrides
// must be non-negative integers within sane bounds.
var inputSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"hoursBack": map[string]interface{}{
			"type":    "integer",
			"minimum": 0,
			"maximum": 168,
		},
		"limitPerFreight": map[string]interface{}{
			"type":    "integer",
			"minimum": 0,
			"maximum": 50,
		},
	},
}
