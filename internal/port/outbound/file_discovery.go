package outbound

import (
	"context"
	"time"
)

// SourceFileInfo describes one discovered source file, with its path
// relative to the walked root.
type SourceFileInfo struct {
	Path         string    `json:"path"`
	AbsolutePath string    `json:"absolute_path"`
	Size         int64     `json:"size"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// DiscoveryOptions configures project file discovery.
type DiscoveryOptions struct {
	// IncludeGlobs select the files to analyze. Empty means all files
	// with the default source extension.
	IncludeGlobs []string

	// ExcludeGlobs drop files even when an include glob matched.
	ExcludeGlobs []string

	// RespectGitignore skips files matched by the project's .gitignore.
	RespectGitignore bool

	// MaxFileSize skips files larger than this many bytes. Zero means no
	// limit.
	MaxFileSize int64

	// FollowSymlinks controls whether symlinked directories are walked.
	FollowSymlinks bool
}

// FileDiscoverer walks a project tree and yields the source files to
// analyze, in deterministic path order.
type FileDiscoverer interface {
	DiscoverSourceFiles(ctx context.Context, root string, options DiscoveryOptions) ([]SourceFileInfo, error)
}
