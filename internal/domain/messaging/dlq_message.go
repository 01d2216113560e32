package messaging

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DLQError represents a domain-specific error in DLQ operations.
type DLQError struct {
	Op      string // The operation that failed
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

// Error implements the error interface.
func (e *DLQError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dlq %s: %s (%s): %v", e.Op, e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("dlq %s: %s (%s)", e.Op, e.Message, e.Code)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *DLQError) Unwrap() error {
	return e.Err
}

// NewDLQError creates a new domain-specific DLQ error.
func NewDLQError(op, code, message string, err error) *DLQError {
	return &DLQError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error codes for programmatic error handling.
const (
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeMessageTooLarge    = "MESSAGE_TOO_LARGE"
	ErrCodeInvalidFailureType = "INVALID_FAILURE_TYPE"
)

// FailureType categorizes why a file analysis job failed. Temporary
// failures are safe to retry with backoff; permanent ones need operator
// intervention or a source change.
type FailureType string

const (
	// Temporary failures, retried with backoff.
	FailureTypeNetworkError      FailureType = "NETWORK_ERROR"
	FailureTypeTimeoutError      FailureType = "TIMEOUT_ERROR"
	FailureTypeResourceExhausted FailureType = "RESOURCE_EXHAUSTED"

	// Permanent failures, not retried without intervention.
	FailureTypeValidationError FailureType = "VALIDATION_ERROR"
	FailureTypeParseError      FailureType = "PARSE_ERROR"
	FailureTypeSystemError     FailureType = "SYSTEM_ERROR"
	FailureTypeFileNotFound    FailureType = "FILE_NOT_FOUND"
)

// NewFailureType creates a new FailureType with validation.
func NewFailureType(failureType string) (FailureType, error) {
	switch failureType {
	case "NETWORK_ERROR":
		return FailureTypeNetworkError, nil
	case "TIMEOUT_ERROR":
		return FailureTypeTimeoutError, nil
	case "RESOURCE_EXHAUSTED":
		return FailureTypeResourceExhausted, nil
	case "VALIDATION_ERROR":
		return FailureTypeValidationError, nil
	case "PARSE_ERROR":
		return FailureTypeParseError, nil
	case "SYSTEM_ERROR":
		return FailureTypeSystemError, nil
	case "FILE_NOT_FOUND":
		return FailureTypeFileNotFound, nil
	default:
		return "", NewDLQError("NewFailureType", ErrCodeInvalidFailureType,
			fmt.Sprintf("unsupported failure type: %s", failureType), nil)
	}
}

// IsTemporary returns true if the failure type is temporary and can be
// retried.
func (f FailureType) IsTemporary() bool {
	switch f {
	case FailureTypeNetworkError, FailureTypeTimeoutError, FailureTypeResourceExhausted:
		return true
	case FailureTypeValidationError, FailureTypeParseError, FailureTypeSystemError, FailureTypeFileNotFound:
		return false
	default:
		return false
	}
}

// IsPermanent returns true if the failure type should not be retried.
func (f FailureType) IsPermanent() bool {
	return !f.IsTemporary()
}

// FailureContext holds detailed context about a failure.
type FailureContext struct {
	ErrorMessage   string                 `json:"error_message"`
	ErrorCode      string                 `json:"error_code,omitempty"`
	Component      string                 `json:"component"`
	Operation      string                 `json:"operation"`
	CorrelationID  string                 `json:"correlation_id,omitempty"`
	AdditionalInfo map[string]interface{} `json:"additional_info,omitempty"`
}

// Validate validates the failure context.
func (fc *FailureContext) Validate() error {
	if fc.ErrorMessage == "" {
		return errors.New("error_message is required")
	}
	if fc.Component == "" {
		return errors.New("component is required")
	}
	if fc.Operation == "" {
		return errors.New("operation is required")
	}
	return nil
}

// DLQMessage represents a failed analysis job parked on the dead letter
// queue.
type DLQMessage struct {
	DLQMessageID     string                 `json:"dlq_message_id"`
	OriginalMessage  FileAnalysisJobMessage `json:"original_message"`
	FailureType      FailureType            `json:"failure_type"`
	FailureContext   FailureContext         `json:"failure_context"`
	FirstFailedAt    time.Time              `json:"first_failed_at"`
	LastFailedAt     time.Time              `json:"last_failed_at"`
	TotalFailures    int                    `json:"total_failures"`
	LastRetryAttempt int                    `json:"last_retry_attempt"`
	DeadLetterReason string                 `json:"dead_letter_reason"`
	ProcessingStage  string                 `json:"processing_stage"`
}

// Validate validates the DLQ message.
func (dlq *DLQMessage) Validate() error {
	if dlq.DLQMessageID == "" {
		return errors.New("dlq_message_id is required")
	}

	if err := dlq.OriginalMessage.Validate(); err != nil {
		return fmt.Errorf("original message validation failed: %w", err)
	}

	if dlq.FailureType == "" {
		return errors.New("failure_type is required")
	}

	if dlq.TotalFailures < 0 {
		return errors.New("total_failures cannot be negative")
	}

	if !dlq.FirstFailedAt.IsZero() && !dlq.LastFailedAt.IsZero() && dlq.LastFailedAt.Before(dlq.FirstFailedAt) {
		return errors.New("last_failed_at cannot be before first_failed_at")
	}

	return nil
}

// IsRetryable returns true if the failure type allows retries.
func (dlq *DLQMessage) IsRetryable() bool {
	return dlq.FailureType.IsTemporary()
}

// FailureDuration calculates the duration between first and last failure.
func (dlq *DLQMessage) FailureDuration() time.Duration {
	return dlq.LastFailedAt.Sub(dlq.FirstFailedAt)
}

// CreateRetryMessage creates a fresh job message from the DLQ entry.
func (dlq *DLQMessage) CreateRetryMessage() (FileAnalysisJobMessage, error) {
	if !dlq.IsRetryable() {
		return FileAnalysisJobMessage{}, fmt.Errorf("failure type is not retryable: %s", dlq.FailureType)
	}

	retryMessage := dlq.OriginalMessage
	retryMessage.MessageID = GenerateUniqueMessageID()
	retryMessage.RetryAttempt = 0
	retryMessage.Timestamp = time.Now()

	return retryMessage, nil
}

// GenerateDLQMessageID generates a unique DLQ message ID.
func GenerateDLQMessageID() string {
	return fmt.Sprintf("dlq-%d-%s", time.Now().UnixNano(), uuid.New().String()[:8])
}

// Failure classification patterns, matched in priority order.
var (
	networkPatterns  = []string{"connection", "dial tcp", "network"}
	timeoutPatterns  = []string{"timeout", "deadline exceeded", "timed out"}
	parsePatterns    = []string{"parse", "syntax error"}
	notFoundPatterns = []string{"no such file", "file not found", "not exist"}
	resourcePatterns = []string{"out of memory", "disk full"}
	validatePatterns = []string{"invalid", "required field"}
)

// ClassifyFailureFromError classifies failure type based on an error
// message. Matching is case-insensitive and checks the most common
// temporary failures first.
func ClassifyFailureFromError(errorMessage string) FailureType {
	if errorMessage == "" {
		return FailureTypeSystemError
	}

	errorLower := strings.ToLower(errorMessage)

	if containsAnyPattern(errorLower, networkPatterns) {
		return FailureTypeNetworkError
	}

	if containsAnyPattern(errorLower, timeoutPatterns) {
		return FailureTypeTimeoutError
	}

	if containsAnyPattern(errorLower, notFoundPatterns) {
		return FailureTypeFileNotFound
	}

	if containsAnyPattern(errorLower, parsePatterns) {
		return FailureTypeParseError
	}

	if containsAnyPattern(errorLower, resourcePatterns) {
		return FailureTypeResourceExhausted
	}

	if containsAnyPattern(errorLower, validatePatterns) {
		return FailureTypeValidationError
	}

	return FailureTypeSystemError
}

// containsAnyPattern checks if the error message contains any pattern.
func containsAnyPattern(errorLower string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(errorLower, pattern) {
			return true
		}
	}
	return false
}

// TransformToDLQMessage transforms a failed job message to DLQ format.
func TransformToDLQMessage(
	original FileAnalysisJobMessage,
	failureType FailureType,
	failureContext FailureContext,
	processingStage string,
) (DLQMessage, error) {
	now := time.Now()

	dlqMessage := DLQMessage{
		DLQMessageID:     GenerateDLQMessageID(),
		OriginalMessage:  original,
		FailureType:      failureType,
		FailureContext:   failureContext,
		FirstFailedAt:    now,
		LastFailedAt:     now,
		TotalFailures:    1,
		LastRetryAttempt: original.RetryAttempt,
		ProcessingStage:  processingStage,
	}

	if err := dlqMessage.Validate(); err != nil {
		return DLQMessage{}, fmt.Errorf("DLQ message validation failed: %w", err)
	}

	return dlqMessage, nil
}
