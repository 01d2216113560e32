package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"swiftscope/internal/application/common/logging"
	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/domain/messaging"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/port/outbound"

	"github.com/google/uuid"
)

const (
	jobStatusFailed    = "failed"
	jobStatusRunning   = "running"
	jobStatusCompleted = "completed"
)

// supportedSchemaVersions lists the job schema versions this worker accepts.
var supportedSchemaVersions = []string{"1.0"}

// JobProcessorConfig holds configuration for the analysis job processor.
type JobProcessorConfig struct {
	MaxConcurrentJobs int
	MaxMemoryMB       int
}

// JobExecution tracks the execution of a single analysis job.
type JobExecution struct {
	JobID     uuid.UUID
	ProjectID uuid.UUID
	FilePath  string
	StartTime time.Time
	Status    string
	mu        sync.RWMutex
}

// AnalysisJobProcessor consumes file analysis job messages: it parses the
// file, extracts the outline and diagnostics, and stores the result.
type AnalysisJobProcessor struct {
	config      JobProcessorConfig
	parser      outbound.SyntaxParser
	outlines    outbound.OutlineExtractor
	diagnostics outbound.DiagnosticExtractor
	outlineRepo outbound.OutlineRepository

	activeJobs map[string]*JobExecution
	jobsMu     sync.RWMutex
	semaphore  chan struct{}

	totalJobs             int64
	failedJobs            int64
	totalProcessingNanos  int64
	filesAnalyzed         int64
	outlinesStored        int64
	declarationsExtracted int64
	diagnosticsFound      int64
	bytesProcessed        int64

	healthMu    sync.RWMutex
	lastJobTime time.Time
	lastError   string
}

// NewAnalysisJobProcessor creates the analysis job processor.
func NewAnalysisJobProcessor(
	config JobProcessorConfig,
	parser outbound.SyntaxParser,
	outlines outbound.OutlineExtractor,
	diagnostics outbound.DiagnosticExtractor,
	outlineRepo outbound.OutlineRepository,
) inbound.JobProcessor {
	maxConcurrent := config.MaxConcurrentJobs
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &AnalysisJobProcessor{
		config:      config,
		parser:      parser,
		outlines:    outlines,
		diagnostics: diagnostics,
		outlineRepo: outlineRepo,
		activeJobs:  make(map[string]*JobExecution),
		semaphore:   make(chan struct{}, maxConcurrent),
	}
}

// ProcessJob processes one file analysis job message.
func (p *AnalysisJobProcessor) ProcessJob(ctx context.Context, message messaging.FileAnalysisJobMessage) error {
	if err := p.validateMessage(message); err != nil {
		return err
	}

	ctx = logging.WithCorrelationID(ctx, message.CorrelationID)

	if p.isMemoryPressureHigh() {
		return errors.New("memory pressure too high, rejecting job")
	}

	p.semaphore <- struct{}{}
	defer func() {
		<-p.semaphore
	}()

	jobCtx, cancel := context.WithTimeout(ctx, message.AnalysisOptions.Timeout())
	defer cancel()

	execution := &JobExecution{
		JobID:     uuid.New(),
		ProjectID: message.ProjectID,
		FilePath:  message.FilePath,
		StartTime: time.Now(),
		Status:    jobStatusRunning,
	}

	p.jobsMu.Lock()
	p.activeJobs[message.MessageID] = execution
	p.jobsMu.Unlock()

	err := p.analyzeFile(jobCtx, message)
	elapsed := time.Since(execution.StartTime)

	if err != nil {
		p.updateJobStatus(message.MessageID, jobStatusFailed)
		p.recordFailure(err, elapsed)
		return err
	}

	p.updateJobStatus(message.MessageID, jobStatusCompleted)
	p.recordSuccess(elapsed)
	return nil
}

// analyzeFile runs the parse, outline and store stages for one file.
func (p *AnalysisJobProcessor) analyzeFile(ctx context.Context, message messaging.FileAnalysisJobMessage) error {
	absolutePath := filepath.Join(message.ProjectRoot, message.FilePath)

	tree, err := p.parser.ParseFile(ctx, absolutePath)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", message.FilePath, err)
	}
	atomic.AddInt64(&p.filesAnalyzed, 1)
	atomic.AddInt64(&p.bytesProcessed, int64(len(tree.Source())))

	contentHash := hashContent(tree.Source())
	if message.ContentHash != "" && message.ContentHash != contentHash {
		slogger.Info(ctx, "File content changed since discovery, analyzing current content", slogger.Fields{
			"file_path":       message.FilePath,
			"expected_hash":   message.ContentHash,
			"discovered_hash": contentHash,
		})
	}

	outline, err := p.outlines.ExtractOutline(ctx, tree, outbound.OutlineOptions{
		MinVisibility:        valueobject.Visibility(message.AnalysisOptions.MinVisibility),
		IncludeDocumentation: message.AnalysisOptions.IncludeDocumentation,
		Path:                 message.FilePath,
	})
	if err != nil {
		return fmt.Errorf("failed to extract outline of %s: %w", message.FilePath, err)
	}
	atomic.AddInt64(&p.declarationsExtracted, int64(outline.DeclarationCount()))

	if message.AnalysisOptions.CollectDiagnostics {
		report, diagErr := p.diagnostics.ExtractDiagnostics(ctx, tree, outbound.DiagnosticOptions{
			ContextLines: message.AnalysisOptions.ContextLines,
			Path:         message.FilePath,
		})
		if diagErr == nil && len(report.Diagnostics) > 0 {
			atomic.AddInt64(&p.diagnosticsFound, int64(len(report.Diagnostics)))
			slogger.Warn(ctx, "File has syntax diagnostics", slogger.Fields{
				"file_path":   message.FilePath,
				"diagnostics": len(report.Diagnostics),
			})
		}
	}

	now := time.Now()
	stored := &outbound.StoredOutline{
		ID:               uuid.New(),
		ProjectID:        message.ProjectID,
		ProjectRoot:      message.ProjectRoot,
		FilePath:         message.FilePath,
		ContentHash:      contentHash,
		Outline:          outline,
		DeclarationCount: outline.DeclarationCount(),
		ImportCount:      len(outline.Imports),
		IndexedAt:        now,
		UpdatedAt:        now,
	}
	if err := p.outlineRepo.UpsertOutline(ctx, stored); err != nil {
		return fmt.Errorf("failed to store outline of %s: %w", message.FilePath, err)
	}
	atomic.AddInt64(&p.outlinesStored, 1)

	slogger.Info(ctx, "File analyzed", slogger.Fields{
		"project_id":   message.ProjectID.String(),
		"file_path":    message.FilePath,
		"declarations": stored.DeclarationCount,
		"imports":      stored.ImportCount,
	})
	return nil
}

// GetHealthStatus returns the current health status.
func (p *AnalysisJobProcessor) GetHealthStatus() inbound.JobProcessorHealthStatus {
	p.jobsMu.RLock()
	active := len(p.activeJobs)
	p.jobsMu.RUnlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	p.healthMu.RLock()
	defer p.healthMu.RUnlock()

	completed := atomic.LoadInt64(&p.totalJobs) - atomic.LoadInt64(&p.failedJobs)
	return inbound.JobProcessorHealthStatus{
		IsReady:        true,
		ActiveJobs:     active,
		CompletedJobs:  completed,
		FailedJobs:     atomic.LoadInt64(&p.failedJobs),
		AverageJobTime: p.averageJobTime(),
		LastJobTime:    p.lastJobTime,
		ResourceUsage: inbound.ResourceUsage{
			MemoryMB: int(m.Alloc / (1024 * 1024)),
		},
		LastError: p.lastError,
	}
}

// GetMetrics returns job processing metrics.
func (p *AnalysisJobProcessor) GetMetrics() inbound.JobProcessorMetrics {
	return inbound.JobProcessorMetrics{
		TotalJobsProcessed:    atomic.LoadInt64(&p.totalJobs),
		TotalJobsFailed:       atomic.LoadInt64(&p.failedJobs),
		AverageProcessingTime: p.averageJobTime(),
		FilesAnalyzed:         atomic.LoadInt64(&p.filesAnalyzed),
		OutlinesStored:        atomic.LoadInt64(&p.outlinesStored),
		DeclarationsExtracted: atomic.LoadInt64(&p.declarationsExtracted),
		DiagnosticsFound:      atomic.LoadInt64(&p.diagnosticsFound),
		BytesProcessed:        atomic.LoadInt64(&p.bytesProcessed),
	}
}

// Cleanup drops all job tracking state.
func (p *AnalysisJobProcessor) Cleanup() error {
	p.jobsMu.Lock()
	p.activeJobs = make(map[string]*JobExecution)
	p.jobsMu.Unlock()
	return nil
}

// validateMessage validates the job message before any work starts.
func (p *AnalysisJobProcessor) validateMessage(message messaging.FileAnalysisJobMessage) error {
	if err := message.Validate(); err != nil {
		return fmt.Errorf("invalid job message: %w", err)
	}
	if !messaging.IsSchemaVersionCompatible(message.SchemaVersion, supportedSchemaVersions) {
		return fmt.Errorf("unsupported schema version: %s", message.SchemaVersion)
	}
	return nil
}

// recordSuccess updates counters after a completed job.
func (p *AnalysisJobProcessor) recordSuccess(elapsed time.Duration) {
	atomic.AddInt64(&p.totalJobs, 1)
	atomic.AddInt64(&p.totalProcessingNanos, elapsed.Nanoseconds())

	p.healthMu.Lock()
	p.lastJobTime = time.Now()
	p.healthMu.Unlock()
}

// recordFailure updates counters after a failed job.
func (p *AnalysisJobProcessor) recordFailure(err error, elapsed time.Duration) {
	atomic.AddInt64(&p.totalJobs, 1)
	atomic.AddInt64(&p.failedJobs, 1)
	atomic.AddInt64(&p.totalProcessingNanos, elapsed.Nanoseconds())

	p.healthMu.Lock()
	p.lastJobTime = time.Now()
	p.lastError = err.Error()
	p.healthMu.Unlock()
}

// averageJobTime derives the mean processing time across all jobs.
func (p *AnalysisJobProcessor) averageJobTime() time.Duration {
	total := atomic.LoadInt64(&p.totalJobs)
	if total == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&p.totalProcessingNanos) / total)
}

// updateJobStatus updates tracking for a job and clears finished jobs.
func (p *AnalysisJobProcessor) updateJobStatus(messageID string, status string) {
	p.jobsMu.RLock()
	execution, exists := p.activeJobs[messageID]
	p.jobsMu.RUnlock()

	if exists {
		execution.mu.Lock()
		execution.Status = status
		execution.mu.Unlock()
	}

	if status != jobStatusRunning {
		p.jobsMu.Lock()
		delete(p.activeJobs, messageID)
		p.jobsMu.Unlock()
	}
}

// isMemoryPressureHigh checks if memory usage is above the configured
// threshold.
func (p *AnalysisJobProcessor) isMemoryPressureHigh() bool {
	if p.config.MaxMemoryMB <= 0 || p.config.MaxMemoryMB > math.MaxInt32 {
		return false
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	const bytesPerMB = 1024 * 1024
	allocMB := m.Alloc / bytesPerMB
	if allocMB > uint64(math.MaxInt) {
		return true
	}
	return int(allocMB) > p.config.MaxMemoryMB
}

// hashContent returns the hex SHA-256 of file content, matching the hash
// format carried by job messages.
func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
