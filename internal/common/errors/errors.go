// Package errors provides standardized error handling for BPMN workflow integration.
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

// Deduplication engine error codes.
const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEntityType  ErrorCode = "INVALID_ENTITY_TYPE"
	ErrCodeComputationFailed  ErrorCode = "COMPUTATION_FAILED"
	ErrCodeReviewItemNotFound ErrorCode = "REVIEW_ITEM_NOT_FOUND"
	ErrCodeChunkFailed        ErrorCode = "CHUNK_FAILED"

	ErrCodeEntityFetchFailed  ErrorCode = "ENTITY_FETCH_FAILED"
	ErrCodeMergePersistFailed ErrorCode = "MERGE_PERSIST_FAILED"
	ErrCodeSearchQueryFailed  ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeCacheUnavailable       ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeOperationTimeout         ErrorCode = "OPERATION_TIMEOUT"
	ErrCodeBrokerUnavailable        ErrorCode = "BROKER_UNAVAILABLE"
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
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidEntityTypeError creates a non-retryable entity type error.
func NewInvalidEntityTypeError(entityType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidEntityType,
		Message:   "Unsupported entity type",
		Details:   fmt.Sprintf("entityType: %s", entityType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewComputationFailedError wraps an unexpected failure inside scoring or
// merge resolution. Non-retryable: the same input would fail the same way.
func NewComputationFailedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeComputationFailed,
		Message:   "Deduplication computation failed",
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReviewItemNotFoundError creates a non-retryable not-found error for
// approve/reject calls against an unknown or already-resolved review item.
func NewReviewItemNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReviewItemNotFound,
		Message:   "Review item not found in queue",
		Details:   fmt.Sprintf("reviewItemId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChunkFailedError records a failure isolated to one chunk of a batch run.
func NewChunkFailedError(chunkIndex int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChunkFailed,
		Message:   "Batch chunk processing failed",
		Details:   fmt.Sprintf("chunkIndex: %d, error: %s", chunkIndex, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{"chunkIndex": chunkIndex},
		Timestamp: time.Now().UTC(),
	}
}

// NewEntityFetchFailedError creates a retryable store read error.
func NewEntityFetchFailedError(entityType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEntityFetchFailed,
		Message:   "Failed to fetch entities from store",
		Details:   fmt.Sprintf("entityType: %s, error: %s", entityType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMergePersistFailedError creates a retryable store write error.
func NewMergePersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMergePersistFailed,
		Message:   "Failed to persist merge outcome",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable candidate search error.
func NewSearchQueryFailedError(entityType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Candidate entity search failed",
		Details:   fmt.Sprintf("entityType: %s, error: %s", entityType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Callers degrade to
// an uncached run rather than failing the operation.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Result cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Review notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
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

// NewOperationTimeoutError creates a retryable timeout error for a dedup call
// that exceeded its deadline.
func NewOperationTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOperationTimeout,
		Message:   "Deduplication operation timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBrokerUnavailableError creates a retryable workflow broker error.
func NewBrokerUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBrokerUnavailable,
		Message:   "Workflow broker unavailable",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Retry Policy & BPMN Mapping
// ==========================

// BPMNErrorMapping maps internal codes to workflow-visible error codes. Kept
// as a map so BPMN models can rename codes without touching engine code.
var BPMNErrorMapping = map[ErrorCode]string{}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeEntityFetchFailed,
		ErrCodeMergePersistFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeBrokerUnavailable:
		return 3 // Retryable technical errors

	case ErrCodeOperationTimeout,
		ErrCodeCacheUnavailable:
		return 2 // Partial retry for timeouts and transient cache loss

	default:
		return 0 // Validation and computation errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
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
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "REVIEW"):
		return "REVIEW"
	case strings.Contains(codeStr, "CHUNK") || strings.Contains(codeStr, "COMPUTATION"):
		return "ENGINE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "ENTITY") || strings.Contains(codeStr, "MERGE"):
		return "STORE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "BROKER"):
		return "BROKER"
	default:
		return "OTHER"
	}
}
