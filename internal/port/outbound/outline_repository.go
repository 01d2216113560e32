package outbound

import (
	"context"
	"time"

	"swiftscope/internal/domain/valueobject"

	"github.com/google/uuid"
)

// StoredOutline represents a persisted file outline.
type StoredOutline struct {
	ID               uuid.UUID                 `json:"id"`
	ProjectID        uuid.UUID                 `json:"project_id"`
	ProjectRoot      string                    `json:"project_root"`
	FilePath         string                    `json:"file_path"`
	ContentHash      string                    `json:"content_hash"`
	Outline          valueobject.SourceOutline `json:"outline"`
	DeclarationCount int                       `json:"declaration_count"`
	ImportCount      int                       `json:"import_count"`
	IndexedAt        time.Time                 `json:"indexed_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// OutlineFilters represents filters for outline queries.
type OutlineFilters struct {
	PathPrefix string
	Limit      int
	Offset     int
	Sort       string
}

// OutlineRepository defines the outbound port for outline persistence.
type OutlineRepository interface {
	// UpsertOutline stores an outline, replacing any previous record for
	// the same project and file path.
	UpsertOutline(ctx context.Context, outline *StoredOutline) error

	// FindByPath retrieves the stored outline of one file.
	FindByPath(ctx context.Context, projectID uuid.UUID, filePath string) (*StoredOutline, error)

	// FindByProject retrieves outlines of a project with the total count.
	FindByProject(ctx context.Context, projectID uuid.UUID, filters OutlineFilters) ([]StoredOutline, int, error)

	// FindStale retrieves outlines of a project not refreshed since the
	// given time, ordered by file path.
	FindStale(ctx context.Context, projectID uuid.UUID, updatedBefore time.Time) ([]StoredOutline, error)

	// DeleteByProject removes all outlines of a project and reports how
	// many records were removed.
	DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error)

	// CountByProject returns the number of stored outlines for a project.
	CountByProject(ctx context.Context, projectID uuid.UUID) (int, error)
}
