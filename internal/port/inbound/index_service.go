package inbound

import (
	"context"

	"github.com/google/uuid"
)

// IndexOptions configures a project indexing run.
type IndexOptions struct {
	IncludeGlobs     []string `json:"include_globs,omitempty"`
	ExcludeGlobs     []string `json:"exclude_globs,omitempty"`
	RespectGitignore bool     `json:"respect_gitignore"`
	MaxFileSize      int64    `json:"max_file_size,omitempty"`
	MinVisibility    string   `json:"min_visibility,omitempty"`
	Priority         string   `json:"priority,omitempty"`
}

// IndexSubmission summarizes what an indexing run put on the queue.
type IndexSubmission struct {
	ProjectID       uuid.UUID `json:"project_id"`
	FilesDiscovered int       `json:"files_discovered"`
	JobsPublished   int       `json:"jobs_published"`
	FailedFiles     []string  `json:"failed_files,omitempty"`
}

// IndexService discovers a project's source files and publishes one
// analysis job per file.
type IndexService interface {
	IndexProject(ctx context.Context, root string, options IndexOptions) (IndexSubmission, error)
}
