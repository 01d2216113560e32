// Package messaging provides domain types and operations for file analysis
// job messages. Messages flow from the index command through the job queue
// to analysis workers; the package covers validation, retry handling and
// priority ordering for that pipeline.
package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Constants for validation limits and values.
const (
	// Priority values.
	priorityHighValue   = 3
	priorityNormalValue = 2
	priorityLowValue    = 1

	// Message validation limits.
	maxMessageIDLength = 255
	maxRetryLimit      = 100
	maxFilePathLength  = 4096

	// Analysis option limits.
	maxTimeoutSeconds = 3600
	maxContextLines   = 100

	// SHA-256 hash length.
	sha256HashLength = 64

	// Default values.
	defaultTimeoutSeconds = 60
	currentSchemaVersion  = "1.0"

	// Timestamp validation.
	minValidYear = 2000
)

// Error messages for validation.
const (
	errorMessageIDRequired   = "message_id is required"
	errorMessageIDTooLong    = "message_id too long"
	errorProjectIDNil        = "project_id cannot be nil"
	errorProjectRootRequired = "project_root is required"
	errorFilePathRequired    = "file_path is required"
	errorFilePathTooLong     = "file_path too long"
	errorFilePathAbsolute    = "file_path must be relative to project_root"
	errorContentHashInvalid  = "content_hash must be a valid SHA-256 hash"

	errorRetryAttemptNegative = "retry_attempt cannot be negative"
	errorMaxRetriesNegative   = "max_retries cannot be negative"
	errorMaxRetriesExceeds    = "max_retries exceeds maximum allowed"
	errorRetryAttemptExceeds  = "retry_attempt cannot exceed max_retries"

	errorTimeoutNegative   = "timeout_seconds cannot be negative"
	errorTimeoutTooLarge   = "timeout_seconds too large"
	errorVisibilityInvalid = "min_visibility is not a known visibility level"

	errorTimestampTooOld = "timestamp too old"
	errorRetryExceedsMax = "retry attempt exceeds max retries"
)

// Pre-compiled regex patterns for performance.
var sha256HashRegex = regexp.MustCompile("^[a-fA-F0-9]{64}$")

// JobPriority represents the priority level for job processing.
// Valid values are HIGH, NORMAL, and LOW with HIGH having the highest
// precedence.
type JobPriority string

// JobPriority constants.
const (
	JobPriorityHigh   JobPriority = "HIGH"
	JobPriorityNormal JobPriority = "NORMAL"
	JobPriorityLow    JobPriority = "LOW"
)

// AnalysisOptions holds configuration for how a file should be analyzed.
type AnalysisOptions struct {
	MinVisibility        string `json:"min_visibility,omitempty"`
	IncludeDocumentation bool   `json:"include_documentation"`
	CollectDiagnostics   bool   `json:"collect_diagnostics"`
	ContextLines         int    `json:"context_lines,omitempty"`
	TimeoutSeconds       int    `json:"timeout_seconds"`
}

// FileAnalysisJobMessage is the schema for per-file analysis jobs. The
// index command publishes one message per discovered source file; workers
// consume them, extract the outline and persist it.
type FileAnalysisJobMessage struct {
	MessageID     string    `json:"message_id"`
	CorrelationID string    `json:"correlation_id"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`

	ProjectID   uuid.UUID `json:"project_id"`
	ProjectRoot string    `json:"project_root"`
	FilePath    string    `json:"file_path"`
	ContentHash string    `json:"content_hash,omitempty"`
	FileSize    int64     `json:"file_size_bytes,omitempty"`

	Priority     JobPriority `json:"priority"`
	RetryAttempt int         `json:"retry_attempt"`
	MaxRetries   int         `json:"max_retries"`

	AnalysisOptions AnalysisOptions `json:"analysis_options"`
}

// NewJobPriority creates a new JobPriority with validation.
func NewJobPriority(priority string) (JobPriority, error) {
	switch priority {
	case "HIGH":
		return JobPriorityHigh, nil
	case "NORMAL":
		return JobPriorityNormal, nil
	case "LOW":
		return JobPriorityLow, nil
	default:
		return "", fmt.Errorf("invalid priority: %s", priority)
	}
}

// IsHigherThan compares two job priorities.
func (p JobPriority) IsHigherThan(other JobPriority) bool {
	return p.getValue() > other.getValue()
}

// getValue returns the numeric priority value for comparison.
func (p JobPriority) getValue() int {
	switch p {
	case JobPriorityHigh:
		return priorityHighValue
	case JobPriorityNormal:
		return priorityNormalValue
	case JobPriorityLow:
		return priorityLowValue
	default:
		return 0
	}
}

// Validate validates the file analysis job message against all business
// rules. Returns the first validation error encountered, or nil if all
// fields are valid.
func (m *FileAnalysisJobMessage) Validate() error {
	if err := m.validateBasicFields(); err != nil {
		return err
	}

	if err := m.validateFileFields(); err != nil {
		return err
	}

	if err := m.validateRetryFields(); err != nil {
		return err
	}

	if err := m.AnalysisOptions.Validate(); err != nil {
		return err
	}

	return m.validateTimestamp()
}

func (m *FileAnalysisJobMessage) validateBasicFields() error {
	if m.MessageID == "" {
		return errors.New(errorMessageIDRequired)
	}

	if len(m.MessageID) > maxMessageIDLength {
		return errors.New(errorMessageIDTooLong)
	}

	return nil
}

func (m *FileAnalysisJobMessage) validateFileFields() error {
	if m.ProjectID == uuid.Nil {
		return errors.New(errorProjectIDNil)
	}

	if m.ProjectRoot == "" {
		return errors.New(errorProjectRootRequired)
	}

	if m.FilePath == "" {
		return errors.New(errorFilePathRequired)
	}

	if len(m.FilePath) > maxFilePathLength {
		return errors.New(errorFilePathTooLong)
	}

	if filepath.IsAbs(m.FilePath) {
		return errors.New(errorFilePathAbsolute)
	}

	if m.ContentHash != "" && !isValidSHA256Hash(m.ContentHash) {
		return errors.New(errorContentHashInvalid)
	}

	return nil
}

func (m *FileAnalysisJobMessage) validateRetryFields() error {
	if m.RetryAttempt < 0 {
		return errors.New(errorRetryAttemptNegative)
	}

	if m.MaxRetries < 0 {
		return errors.New(errorMaxRetriesNegative)
	}

	if m.MaxRetries > maxRetryLimit {
		return errors.New(errorMaxRetriesExceeds)
	}

	if m.RetryAttempt >= m.MaxRetries && m.MaxRetries > 0 {
		return errors.New(errorRetryAttemptExceeds)
	}

	return nil
}

func (m *FileAnalysisJobMessage) validateTimestamp() error {
	if !m.Timestamp.IsZero() && m.Timestamp.Before(time.Date(minValidYear, 1, 1, 0, 0, 0, 0, time.UTC)) {
		return errors.New(errorTimestampTooOld)
	}

	return nil
}

// Validate validates analysis options for correctness and constraints.
func (o *AnalysisOptions) Validate() error {
	if o.TimeoutSeconds < 0 {
		return errors.New(errorTimeoutNegative)
	}

	if o.TimeoutSeconds > maxTimeoutSeconds {
		return errors.New(errorTimeoutTooLarge)
	}

	if o.ContextLines < 0 || o.ContextLines > maxContextLines {
		return fmt.Errorf("context_lines %d out of range [0, %d]", o.ContextLines, maxContextLines)
	}

	if o.MinVisibility != "" {
		switch o.MinVisibility {
		case "private", "fileprivate", "internal", "package", "public", "open":
		default:
			return errors.New(errorVisibilityInvalid)
		}
	}

	return nil
}

// Timeout returns the analysis timeout as a duration, applying the default
// when unset.
func (o AnalysisOptions) Timeout() time.Duration {
	seconds := o.TimeoutSeconds
	if seconds == 0 {
		seconds = defaultTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// GenerateCorrelationID generates a unique correlation ID for tracking
// related operations. The format is "corr-{timestamp}-{uuid}" so related
// log lines sort chronologically.
func GenerateCorrelationID() string {
	return fmt.Sprintf("corr-%d-%s", time.Now().UnixNano(), uuid.New().String()[:8])
}

// GenerateUniqueMessageID generates a unique message ID for each message
// instance.
func GenerateUniqueMessageID() string {
	return fmt.Sprintf("msg-%d-%s", time.Now().UnixNano(), uuid.New().String()[:8])
}

// NewFileAnalysisJobMessage builds a valid message for one file with
// generated IDs and the current schema version.
func NewFileAnalysisJobMessage(
	projectID uuid.UUID,
	projectRoot, filePath string,
	options AnalysisOptions,
) FileAnalysisJobMessage {
	return FileAnalysisJobMessage{
		MessageID:       GenerateUniqueMessageID(),
		CorrelationID:   GenerateCorrelationID(),
		SchemaVersion:   currentSchemaVersion,
		Timestamp:       time.Now(),
		ProjectID:       projectID,
		ProjectRoot:     projectRoot,
		FilePath:        filePath,
		Priority:        JobPriorityNormal,
		MaxRetries:      3,
		AnalysisOptions: options,
	}
}

// IsSchemaVersionCompatible checks if a message schema version is
// compatible with supported versions. Patch versions of a supported
// version are accepted ("1.0" matches "1.0.2").
func IsSchemaVersionCompatible(messageVersion string, supportedVersions []string) bool {
	if messageVersion == "" || len(supportedVersions) == 0 {
		return false
	}

	for _, supported := range supportedVersions {
		if messageVersion == supported {
			return true
		}
		if strings.HasPrefix(messageVersion, supported+".") {
			return true
		}
	}

	return false
}

// SortMessagesByPriority sorts messages by priority in descending order.
// The original slice is not modified.
func SortMessagesByPriority(messages []FileAnalysisJobMessage) []FileAnalysisJobMessage {
	sorted := make([]FileAnalysisJobMessage, len(messages))
	copy(sorted, messages)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority.IsHigherThan(sorted[j].Priority)
	})

	return sorted
}

// CreateRetryMessage creates a retry message with incremented attempt
// counter. The retry gets a new MessageID and timestamp while keeping the
// correlation ID, so the whole attempt chain stays traceable.
func CreateRetryMessage(original FileAnalysisJobMessage, retryAttempt int) (FileAnalysisJobMessage, error) {
	if retryAttempt > original.MaxRetries {
		return FileAnalysisJobMessage{}, errors.New(errorRetryExceedsMax)
	}

	retry := original
	retry.MessageID = GenerateUniqueMessageID()
	retry.RetryAttempt = retryAttempt
	retry.Timestamp = time.Now()

	return retry, nil
}

// CalculateMessageSize calculates the serialized JSON size of a message
// in bytes.
func CalculateMessageSize(message FileAnalysisJobMessage) (int, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// ValidateMessageSize validates that a message fits within the given size
// constraint before it reaches the queue.
func ValidateMessageSize(message FileAnalysisJobMessage, maxSizeBytes int) error {
	size, err := CalculateMessageSize(message)
	if err != nil {
		return err
	}

	if size > maxSizeBytes {
		return fmt.Errorf("message size %d bytes exceeds maximum %d bytes", size, maxSizeBytes)
	}

	return nil
}

// isValidSHA256Hash validates if a string is a valid SHA-256 hash.
func isValidSHA256Hash(hash string) bool {
	if len(hash) != sha256HashLength {
		return false
	}
	return sha256HashRegex.MatchString(hash)
}
