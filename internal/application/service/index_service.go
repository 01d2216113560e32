package service

import (
	"context"

	"swiftscope/internal/application/common"
	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/domain/messaging"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/port/outbound"

	"github.com/google/uuid"
)

// IndexService discovers a project's source files and publishes one
// analysis job per file to the work queue. Publishing is best effort per
// file: one bad file does not abort the submission, it is reported in
// the result instead.
type IndexService struct {
	discoverer outbound.FileDiscoverer
	publisher  outbound.MessagePublisher
}

// NewIndexService creates the index service.
func NewIndexService(discoverer outbound.FileDiscoverer, publisher outbound.MessagePublisher) *IndexService {
	if discoverer == nil {
		panic("discoverer cannot be nil")
	}
	if publisher == nil {
		panic("publisher cannot be nil")
	}
	return &IndexService{discoverer: discoverer, publisher: publisher}
}

// IndexProject walks root and publishes a file analysis job for every
// discovered source file under a fresh project ID.
func (s *IndexService) IndexProject(
	ctx context.Context,
	root string,
	options inbound.IndexOptions,
) (inbound.IndexSubmission, error) {
	priority := messaging.JobPriorityNormal
	if options.Priority != "" {
		parsed, err := messaging.NewJobPriority(options.Priority)
		if err != nil {
			return inbound.IndexSubmission{}, err
		}
		priority = parsed
	}

	files, err := s.discoverer.DiscoverSourceFiles(ctx, root, outbound.DiscoveryOptions{
		IncludeGlobs:     options.IncludeGlobs,
		ExcludeGlobs:     options.ExcludeGlobs,
		RespectGitignore: options.RespectGitignore,
		MaxFileSize:      options.MaxFileSize,
	})
	if err != nil {
		return inbound.IndexSubmission{}, common.WrapServiceError(common.OpDiscoverFiles, err)
	}

	submission := inbound.IndexSubmission{
		ProjectID:       uuid.New(),
		FilesDiscovered: len(files),
	}

	analysisOptions := messaging.AnalysisOptions{
		MinVisibility:        options.MinVisibility,
		IncludeDocumentation: true,
		CollectDiagnostics:   true,
	}

	for _, file := range files {
		message := messaging.NewFileAnalysisJobMessage(submission.ProjectID, root, file.Path, analysisOptions)
		message.Priority = priority
		message.FileSize = file.Size

		if err := message.Validate(); err != nil {
			slogger.Error(ctx, "Skipping file with invalid job message", slogger.Fields{
				"path":  file.Path,
				"error": err.Error(),
			})
			submission.FailedFiles = append(submission.FailedFiles, file.Path)
			continue
		}

		if err := s.publisher.PublishFileAnalysisJob(ctx, message); err != nil {
			slogger.Error(ctx, "Failed to publish analysis job", slogger.Fields{
				"path":  file.Path,
				"error": err.Error(),
			})
			submission.FailedFiles = append(submission.FailedFiles, file.Path)
			continue
		}
		submission.JobsPublished++
	}

	slogger.Info(ctx, "Project indexing submitted", slogger.Fields{
		"project_id":       submission.ProjectID.String(),
		"root":             root,
		"files_discovered": submission.FilesDiscovered,
		"jobs_published":   submission.JobsPublished,
		"failed_files":     len(submission.FailedFiles),
	})
	return submission, nil
}
