// Package errors provides standardized error handling for the matching engine
// and its Zeebe/BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFreightNotFound ErrorCode = "FREIGHT_NOT_FOUND"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"

	ErrCodeDatabaseConnectionFailed  ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCandidateRetrievalFailed  ErrorCode = "CANDIDATE_RETRIEVAL_FAILED"
	ErrCodeCandidateRetrievalTimeout ErrorCode = "CANDIDATE_RETRIEVAL_TIMEOUT"

	ErrCodeScoringFault ErrorCode = "SCORING_FAULT"
	ErrCodeMatchTimeout ErrorCode = "MATCH_TIMEOUT"

	ErrCodeBatchRunFailed ErrorCode = "BATCH_RUN_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFreightNotFoundError creates a non-retryable lookup error. A missing
// freight id is a caller problem, never a reason to retry the batch.
func NewFreightNotFoundError(freightID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFreightNotFound,
		Message:   "Freight offer not found or inactive",
		Details:   fmt.Sprintf("freightId: %s", freightID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable parameter validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Invalid request parameters",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCandidateRetrievalFailedError creates a retryable retrieval error. The
// interactive path surfaces it immediately; only the batch path retries.
func NewCandidateRetrievalFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateRetrievalFailed,
		Message:   "Candidate vehicle retrieval failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCandidateRetrievalTimeoutError creates a retryable retrieval timeout error.
func NewCandidateRetrievalTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateRetrievalTimeout,
		Message:   "Candidate vehicle retrieval timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringFaultError creates a non-retryable per-candidate scoring error.
// The faulty candidate is excluded; the rest of the MatchResult survives.
func NewScoringFaultError(vehicleID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringFault,
		Message:   "Scoring failed for candidate vehicle",
		Details:   fmt.Sprintf("vehicleId: %s, error: %s", vehicleID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchTimeoutError creates a retryable match timeout error.
func NewMatchTimeoutError(freightID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchTimeout,
		Message:   "Match computation exceeded deadline",
		Details:   fmt.Sprintf("freightId: %s", freightID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates a retryable timeout error for an external service.
func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBatchRunFailedError creates a retryable whole-run batch error.
func NewBatchRunFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBatchRunFailed,
		Message:   "Batch matching run failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Zeebe workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Zeebe job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// GetRetryCount returns the recommended retry count per error code. Whole-run
// batch failures and timeouts get a bounded 2 retries; business errors none.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeCandidateRetrievalFailed,
		ErrCodeCandidateRetrievalTimeout,
		ErrCodeMatchTimeout,
		ErrCodeBatchRunFailed:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Zeebe.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "FREIGHT") || strings.Contains(codeStr, "VALIDATION"):
		return "REQUEST"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "RETRIEVAL"):
		return "RETRIEVAL"
	case strings.Contains(codeStr, "SCORING") || strings.Contains(codeStr, "MATCH"):
		return "MATCHING"
	case strings.Contains(codeStr, "BATCH"):
		return "BATCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
