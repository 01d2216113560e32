package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFailureType tests the FailureType enumeration and validation.
func TestFailureType(t *testing.T) {
	t.Run("should create valid failure types", func(t *testing.T) {
		validTypes := []string{
			"NETWORK_ERROR",
			"TIMEOUT_ERROR",
			"RESOURCE_EXHAUSTED",
			"VALIDATION_ERROR",
			"PARSE_ERROR",
			"SYSTEM_ERROR",
			"FILE_NOT_FOUND",
		}

		for _, validType := range validTypes {
			failureType, err := NewFailureType(validType)
			require.NoError(t, err, "Should create valid failure type: %s", validType)
			assert.Equal(t, validType, string(failureType))
		}
	})

	t.Run("should reject invalid failure types", func(t *testing.T) {
		invalidTypes := []string{
			"INVALID_TYPE",
			"",
			"network_error",
			"UNKNOWN",
		}

		for _, invalidType := range invalidTypes {
			_, err := NewFailureType(invalidType)
			require.Error(t, err, "Should reject invalid failure type: %s", invalidType)

			var dlqErr *DLQError
			require.ErrorAs(t, err, &dlqErr)
			assert.Equal(t, ErrCodeInvalidFailureType, dlqErr.Code)
		}
	})

	t.Run("should classify failure types correctly", func(t *testing.T) {
		temporaryFailures := []FailureType{
			FailureTypeNetworkError,
			FailureTypeTimeoutError,
			FailureTypeResourceExhausted,
		}

		for _, failureType := range temporaryFailures {
			assert.True(t, failureType.IsTemporary(),
				"Should classify %s as temporary", string(failureType))
			assert.False(t, failureType.IsPermanent(),
				"Should not classify %s as permanent", string(failureType))
		}

		permanentFailures := []FailureType{
			FailureTypeValidationError,
			FailureTypeParseError,
			FailureTypeSystemError,
			FailureTypeFileNotFound,
		}

		for _, failureType := range permanentFailures {
			assert.True(t, failureType.IsPermanent(),
				"Should classify %s as permanent", string(failureType))
			assert.False(t, failureType.IsTemporary(),
				"Should not classify %s as temporary", string(failureType))
		}
	})
}

// TestClassifyFailureFromError tests error message classification.
func TestClassifyFailureFromError(t *testing.T) {
	tests := []struct {
		name         string
		errorMessage string
		expected     FailureType
	}{
		{
			name:         "connection refused is a network error",
			errorMessage: "dial tcp 127.0.0.1:4222: connection refused",
			expected:     FailureTypeNetworkError,
		},
		{
			name:         "deadline exceeded is a timeout",
			errorMessage: "context deadline exceeded",
			expected:     FailureTypeTimeoutError,
		},
		{
			name:         "missing file is file not found",
			errorMessage: "open Sources/App.swift: no such file or directory",
			expected:     FailureTypeFileNotFound,
		},
		{
			name:         "syntax error is a parse failure",
			errorMessage: "syntax error at line 3",
			expected:     FailureTypeParseError,
		},
		{
			name:         "out of memory is resource exhaustion",
			errorMessage: "runtime: out of memory",
			expected:     FailureTypeResourceExhausted,
		},
		{
			name:         "invalid field is a validation error",
			errorMessage: "invalid message_id",
			expected:     FailureTypeValidationError,
		},
		{
			name:         "timeout wins over parse when both match",
			errorMessage: "parse timed out",
			expected:     FailureTypeTimeoutError,
		},
		{
			name:         "classification is case-insensitive",
			errorMessage: "CONNECTION reset by peer",
			expected:     FailureTypeNetworkError,
		},
		{
			name:         "empty message falls back to system error",
			errorMessage: "",
			expected:     FailureTypeSystemError,
		},
		{
			name:         "unrecognized message falls back to system error",
			errorMessage: "something odd happened",
			expected:     FailureTypeSystemError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyFailureFromError(tt.errorMessage))
		})
	}
}

// TestFailureContextValidate tests required failure context fields.
func TestFailureContextValidate(t *testing.T) {
	valid := FailureContext{
		ErrorMessage: "parse failed",
		Component:    "worker",
		Operation:    "analyze_file",
	}
	require.NoError(t, valid.Validate())

	t.Run("should require error message", func(t *testing.T) {
		fc := valid
		fc.ErrorMessage = ""
		require.ErrorContains(t, fc.Validate(), "error_message is required")
	})

	t.Run("should require component", func(t *testing.T) {
		fc := valid
		fc.Component = ""
		require.ErrorContains(t, fc.Validate(), "component is required")
	})

	t.Run("should require operation", func(t *testing.T) {
		fc := valid
		fc.Operation = ""
		require.ErrorContains(t, fc.Validate(), "operation is required")
	})
}

// TestDLQMessageValidate tests DLQ message validation rules.
func TestDLQMessageValidate(t *testing.T) {
	newValidDLQMessage := func() DLQMessage {
		now := time.Now()
		return DLQMessage{
			DLQMessageID:    GenerateDLQMessageID(),
			OriginalMessage: newValidJobMessage(),
			FailureType:     FailureTypeParseError,
			FailureContext: FailureContext{
				ErrorMessage: "syntax error at line 3",
				Component:    "worker",
				Operation:    "analyze_file",
			},
			FirstFailedAt:    now.Add(-time.Minute),
			LastFailedAt:     now,
			TotalFailures:    3,
			DeadLetterReason: "max retries exhausted",
			ProcessingStage:  "parse",
		}
	}

	t.Run("should accept a valid message", func(t *testing.T) {
		msg := newValidDLQMessage()
		require.NoError(t, msg.Validate())
	})

	t.Run("should require dlq_message_id", func(t *testing.T) {
		msg := newValidDLQMessage()
		msg.DLQMessageID = ""
		require.ErrorContains(t, msg.Validate(), "dlq_message_id is required")
	})

	t.Run("should validate the original message", func(t *testing.T) {
		msg := newValidDLQMessage()
		msg.OriginalMessage.FilePath = ""
		require.ErrorContains(t, msg.Validate(), "original message validation failed")
	})

	t.Run("should require a failure type", func(t *testing.T) {
		msg := newValidDLQMessage()
		msg.FailureType = ""
		require.ErrorContains(t, msg.Validate(), "failure_type is required")
	})

	t.Run("should reject negative failure counts", func(t *testing.T) {
		msg := newValidDLQMessage()
		msg.TotalFailures = -1
		require.ErrorContains(t, msg.Validate(), "total_failures cannot be negative")
	})

	t.Run("should reject reversed failure timestamps", func(t *testing.T) {
		msg := newValidDLQMessage()
		msg.FirstFailedAt = time.Now()
		msg.LastFailedAt = msg.FirstFailedAt.Add(-time.Hour)
		require.ErrorContains(t, msg.Validate(), "last_failed_at cannot be before first_failed_at")
	})

	t.Run("should compute failure duration", func(t *testing.T) {
		msg := newValidDLQMessage()
		msg.FirstFailedAt = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		msg.LastFailedAt = msg.FirstFailedAt.Add(90 * time.Second)
		assert.Equal(t, 90*time.Second, msg.FailureDuration())
	})
}

// TestDLQMessageRetry tests retry message creation from DLQ entries.
func TestDLQMessageRetry(t *testing.T) {
	t.Run("should retry temporary failures with a fresh message", func(t *testing.T) {
		original := newValidJobMessage()
		original.RetryAttempt = 2

		msg := DLQMessage{
			DLQMessageID:    GenerateDLQMessageID(),
			OriginalMessage: original,
			FailureType:     FailureTypeNetworkError,
		}
		require.True(t, msg.IsRetryable())

		retry, err := msg.CreateRetryMessage()
		require.NoError(t, err)
		assert.NotEqual(t, original.MessageID, retry.MessageID)
		assert.Equal(t, original.CorrelationID, retry.CorrelationID)
		assert.Equal(t, 0, retry.RetryAttempt)
		assert.Equal(t, original.FilePath, retry.FilePath)
	})

	t.Run("should refuse to retry permanent failures", func(t *testing.T) {
		msg := DLQMessage{
			DLQMessageID:    GenerateDLQMessageID(),
			OriginalMessage: newValidJobMessage(),
			FailureType:     FailureTypeFileNotFound,
		}
		require.False(t, msg.IsRetryable())

		_, err := msg.CreateRetryMessage()
		require.ErrorContains(t, err, "not retryable")
	})
}

// TestTransformToDLQMessage tests dead-lettering a failed job.
func TestTransformToDLQMessage(t *testing.T) {
	failureContext := FailureContext{
		ErrorMessage:  "open Sources/App.swift: no such file or directory",
		Component:     "worker",
		Operation:     "analyze_file",
		CorrelationID: "corr-test",
	}

	t.Run("should build a valid DLQ message", func(t *testing.T) {
		original := newValidJobMessage()
		original.RetryAttempt = 2

		dlqMessage, err := TransformToDLQMessage(original, FailureTypeFileNotFound, failureContext, "read")
		require.NoError(t, err)

		assert.NotEmpty(t, dlqMessage.DLQMessageID)
		assert.Equal(t, original.MessageID, dlqMessage.OriginalMessage.MessageID)
		assert.Equal(t, FailureTypeFileNotFound, dlqMessage.FailureType)
		assert.Equal(t, 1, dlqMessage.TotalFailures)
		assert.Equal(t, 2, dlqMessage.LastRetryAttempt)
		assert.Equal(t, "read", dlqMessage.ProcessingStage)
		assert.Equal(t, dlqMessage.FirstFailedAt, dlqMessage.LastFailedAt)
	})

	t.Run("should reject an invalid original message", func(t *testing.T) {
		original := newValidJobMessage()
		original.ProjectRoot = ""

		_, err := TransformToDLQMessage(original, FailureTypeParseError, failureContext, "parse")
		require.ErrorContains(t, err, "DLQ message validation failed")
	})
}

// TestDLQError tests the error type's formatting and unwrapping.
func TestDLQError(t *testing.T) {
	underlying := assert.AnError
	err := NewDLQError("publish", ErrCodeMessageTooLarge, "message exceeds limit", underlying)

	assert.Contains(t, err.Error(), "publish")
	assert.Contains(t, err.Error(), ErrCodeMessageTooLarge)
	assert.Contains(t, err.Error(), "message exceeds limit")
	require.ErrorIs(t, err, underlying)

	bare := NewDLQError("validate", ErrCodeValidationFailed, "missing field", nil)
	assert.NotContains(t, bare.Error(), "<nil>")
	require.NoError(t, bare.Unwrap())
}
