package service

import (
	"context"
	"testing"

	"swiftscope/internal/adapter/outbound/mock"
	"swiftscope/internal/domain/messaging"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/port/outbound"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDiscoverer returns a fixed file list and records the last call.
type stubDiscoverer struct {
	files []outbound.SourceFileInfo
	err   error

	lastRoot    string
	lastOptions outbound.DiscoveryOptions
}

func (d *stubDiscoverer) DiscoverSourceFiles(
	_ context.Context,
	root string,
	options outbound.DiscoveryOptions,
) ([]outbound.SourceFileInfo, error) {
	d.lastRoot = root
	d.lastOptions = options
	if d.err != nil {
		return nil, d.err
	}
	return d.files, nil
}

func TestIndexProject(t *testing.T) {
	ctx := context.Background()
	twoFiles := []outbound.SourceFileInfo{
		{Path: "Sources/App.swift", Size: 120},
		{Path: "Sources/Model.swift", Size: 80},
	}

	t.Run("should publish one job per discovered file", func(t *testing.T) {
		publisher := mock.NewMessagePublisher()
		svc := NewIndexService(&stubDiscoverer{files: twoFiles}, publisher)

		submission, err := svc.IndexProject(ctx, "/projects/app", inbound.IndexOptions{
			MinVisibility: "public",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, submission.ProjectID)
		assert.Equal(t, 2, submission.FilesDiscovered)
		assert.Equal(t, 2, submission.JobsPublished)
		assert.Empty(t, submission.FailedFiles)

		jobs := publisher.PublishedJobs()
		require.Len(t, jobs, 2)
		assert.Equal(t, "Sources/App.swift", jobs[0].FilePath)
		assert.Equal(t, int64(120), jobs[0].FileSize)
		assert.NotEqual(t, jobs[0].MessageID, jobs[1].MessageID, "Each job carries its own message ID")
		for _, job := range jobs {
			assert.Equal(t, submission.ProjectID, job.ProjectID)
			assert.Equal(t, "/projects/app", job.ProjectRoot)
			assert.Equal(t, messaging.JobPriorityNormal, job.Priority)
			assert.Equal(t, "public", job.AnalysisOptions.MinVisibility)
			assert.True(t, job.AnalysisOptions.IncludeDocumentation)
			assert.True(t, job.AnalysisOptions.CollectDiagnostics)
		}
	})

	t.Run("should forward discovery options", func(t *testing.T) {
		discoverer := &stubDiscoverer{}
		svc := NewIndexService(discoverer, mock.NewMessagePublisher())

		_, err := svc.IndexProject(ctx, "/projects/app", inbound.IndexOptions{
			IncludeGlobs:     []string{"Sources/**"},
			ExcludeGlobs:     []string{"**/*.generated.swift"},
			RespectGitignore: true,
			MaxFileSize:      1 << 20,
		})
		require.NoError(t, err)
		assert.Equal(t, "/projects/app", discoverer.lastRoot)
		assert.Equal(t, outbound.DiscoveryOptions{
			IncludeGlobs:     []string{"Sources/**"},
			ExcludeGlobs:     []string{"**/*.generated.swift"},
			RespectGitignore: true,
			MaxFileSize:      1 << 20,
		}, discoverer.lastOptions)
	})

	t.Run("should honor the requested priority", func(t *testing.T) {
		publisher := mock.NewMessagePublisher()
		svc := NewIndexService(&stubDiscoverer{files: twoFiles}, publisher)

		_, err := svc.IndexProject(ctx, "/projects/app", inbound.IndexOptions{Priority: "HIGH"})
		require.NoError(t, err)
		for _, job := range publisher.PublishedJobs() {
			assert.Equal(t, messaging.JobPriorityHigh, job.Priority)
		}
	})

	t.Run("should reject unknown priorities", func(t *testing.T) {
		publisher := mock.NewMessagePublisher()
		svc := NewIndexService(&stubDiscoverer{files: twoFiles}, publisher)

		_, err := svc.IndexProject(ctx, "/projects/app", inbound.IndexOptions{Priority: "URGENT"})
		require.EqualError(t, err, "invalid priority: URGENT")
		assert.Empty(t, publisher.PublishedJobs(), "Nothing publishes when the options are invalid")
	})

	t.Run("should report publish failures per file", func(t *testing.T) {
		publisher := mock.NewMessagePublisher()
		publisher.FailWith(assert.AnError)
		svc := NewIndexService(&stubDiscoverer{files: twoFiles}, publisher)

		submission, err := svc.IndexProject(ctx, "/projects/app", inbound.IndexOptions{})
		require.NoError(t, err, "Per-file publish failures do not abort the submission")
		assert.Equal(t, 2, submission.FilesDiscovered)
		assert.Equal(t, 0, submission.JobsPublished)
		assert.Equal(t, []string{"Sources/App.swift", "Sources/Model.swift"}, submission.FailedFiles)
	})

	t.Run("should skip files that produce invalid jobs", func(t *testing.T) {
		publisher := mock.NewMessagePublisher()
		svc := NewIndexService(&stubDiscoverer{files: []outbound.SourceFileInfo{
			{Path: "/outside/Escape.swift", Size: 10},
			{Path: "Sources/App.swift", Size: 120},
		}}, publisher)

		submission, err := svc.IndexProject(ctx, "/projects/app", inbound.IndexOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, submission.JobsPublished)
		assert.Equal(t, []string{"/outside/Escape.swift"}, submission.FailedFiles)
		require.Len(t, publisher.PublishedJobs(), 1)
		assert.Equal(t, "Sources/App.swift", publisher.PublishedJobs()[0].FilePath)
	})

	t.Run("should wrap discovery failures", func(t *testing.T) {
		svc := NewIndexService(&stubDiscoverer{err: assert.AnError}, mock.NewMessagePublisher())

		_, err := svc.IndexProject(ctx, "/projects/app", inbound.IndexOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "discover source files")
	})
}
