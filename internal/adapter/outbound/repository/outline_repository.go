package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/outbound"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQLOutlineRepository implements the OutlineRepository interface.
// Outlines are stored one row per project file, keyed by project and file
// path, with the declaration forest serialized as JSONB.
type PostgreSQLOutlineRepository struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLOutlineRepository creates a new PostgreSQL outline repository.
func NewPostgreSQLOutlineRepository(pool *pgxpool.Pool) *PostgreSQLOutlineRepository {
	return &PostgreSQLOutlineRepository{pool: pool}
}

// UpsertOutline stores an outline, replacing any previous record for the
// same project and file path. The original id and indexed_at survive an
// update; content hash, counts, payload and updated_at are replaced.
func (r *PostgreSQLOutlineRepository) UpsertOutline(ctx context.Context, outline *outbound.StoredOutline) error {
	if outline == nil {
		return fmt.Errorf("upsert outline: %w", ErrConstraintViolation)
	}

	payload, err := json.Marshal(outline.Outline)
	if err != nil {
		return fmt.Errorf("marshal outline payload: %w", err)
	}

	query := `
		INSERT INTO swiftscope.outlines (
			id, project_id, project_root, file_path, content_hash,
			outline, declaration_count, import_count, indexed_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (project_id, file_path) DO UPDATE SET
			project_root      = EXCLUDED.project_root,
			content_hash      = EXCLUDED.content_hash,
			outline           = EXCLUDED.outline,
			declaration_count = EXCLUDED.declaration_count,
			import_count      = EXCLUDED.import_count,
			updated_at        = EXCLUDED.updated_at`

	qi := GetQueryInterface(ctx, r.pool)
	_, err = qi.Exec(ctx, query,
		outline.ID,
		outline.ProjectID,
		outline.ProjectRoot,
		outline.FilePath,
		outline.ContentHash,
		payload,
		outline.DeclarationCount,
		outline.ImportCount,
		outline.IndexedAt,
		outline.UpdatedAt,
	)
	if err != nil {
		return WrapError(err, "upsert outline")
	}

	return nil
}

// FindByPath retrieves the stored outline of one file. Returns nil without
// error when no record exists.
func (r *PostgreSQLOutlineRepository) FindByPath(
	ctx context.Context,
	projectID uuid.UUID,
	filePath string,
) (*outbound.StoredOutline, error) {
	query := `
		SELECT id, project_id, project_root, file_path, content_hash,
		       outline, declaration_count, import_count, indexed_at, updated_at
		FROM swiftscope.outlines
		WHERE project_id = $1 AND file_path = $2`

	qi := GetQueryInterface(ctx, r.pool)
	row := qi.QueryRow(ctx, query, projectID, filePath)

	stored, err := scanStoredOutline(row)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, nil
		}
		return nil, WrapError(err, "find outline by path")
	}
	return stored, nil
}

// FindByProject retrieves outlines of a project together with the total
// record count before limit and offset.
func (r *PostgreSQLOutlineRepository) FindByProject(
	ctx context.Context,
	projectID uuid.UUID,
	filters outbound.OutlineFilters,
) ([]outbound.StoredOutline, int, error) {
	qi := GetQueryInterface(ctx, r.pool)

	countQuery := `
		SELECT COUNT(*)
		FROM swiftscope.outlines
		WHERE project_id = $1
		  AND ($2 = '' OR left(file_path, length($2)) = $2)`

	var total int
	if err := qi.QueryRow(ctx, countQuery, projectID, filters.PathPrefix).Scan(&total); err != nil {
		return nil, 0, WrapError(err, "count outlines")
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, project_id, project_root, file_path, content_hash,
		       outline, declaration_count, import_count, indexed_at, updated_at
		FROM swiftscope.outlines
		WHERE project_id = $1
		  AND ($2 = '' OR left(file_path, length($2)) = $2)
		ORDER BY %s
		LIMIT $3 OFFSET $4`, outlineSortClause(filters.Sort))

	rows, err := qi.Query(ctx, query, projectID, filters.PathPrefix, limit, offset)
	if err != nil {
		return nil, 0, WrapError(err, "find outlines by project")
	}
	defer rows.Close()

	var outlines []outbound.StoredOutline
	for rows.Next() {
		stored, scanErr := scanStoredOutline(rows)
		if scanErr != nil {
			return nil, 0, WrapError(scanErr, "scan outline row")
		}
		outlines = append(outlines, *stored)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, WrapError(err, "iterate outline rows")
	}

	return outlines, total, nil
}

// FindStale retrieves outlines of a project not refreshed since the given
// time. After a full re-index these are the files that vanished from disk.
func (r *PostgreSQLOutlineRepository) FindStale(
	ctx context.Context,
	projectID uuid.UUID,
	updatedBefore time.Time,
) ([]outbound.StoredOutline, error) {
	query := `
		SELECT id, project_id, project_root, file_path, content_hash,
		       outline, declaration_count, import_count, indexed_at, updated_at
		FROM swiftscope.outlines
		WHERE project_id = $1 AND updated_at < $2
		ORDER BY file_path ASC`

	qi := GetQueryInterface(ctx, r.pool)
	rows, err := qi.Query(ctx, query, projectID, updatedBefore)
	if err != nil {
		return nil, WrapError(err, "find stale outlines")
	}
	defer rows.Close()

	var outlines []outbound.StoredOutline
	for rows.Next() {
		stored, scanErr := scanStoredOutline(rows)
		if scanErr != nil {
			return nil, WrapError(scanErr, "scan outline row")
		}
		outlines = append(outlines, *stored)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(err, "iterate outline rows")
	}

	return outlines, nil
}

// DeleteByProject removes all outlines of a project.
func (r *PostgreSQLOutlineRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	query := `DELETE FROM swiftscope.outlines WHERE project_id = $1`

	qi := GetQueryInterface(ctx, r.pool)
	tag, err := qi.Exec(ctx, query, projectID)
	if err != nil {
		return 0, WrapError(err, "delete outlines by project")
	}
	return tag.RowsAffected(), nil
}

// CountByProject returns the number of stored outlines for a project.
func (r *PostgreSQLOutlineRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM swiftscope.outlines WHERE project_id = $1`

	qi := GetQueryInterface(ctx, r.pool)
	var count int
	if err := qi.QueryRow(ctx, query, projectID).Scan(&count); err != nil {
		return 0, WrapError(err, "count outlines by project")
	}
	return count, nil
}

// outlineSortClause maps a sort filter to an ORDER BY expression. Only
// known columns are accepted; anything else falls back to path order.
func outlineSortClause(sort string) string {
	switch sort {
	case "updated_at":
		return "updated_at DESC, file_path ASC"
	case "declaration_count":
		return "declaration_count DESC, file_path ASC"
	case "", "file_path":
		return "file_path ASC"
	default:
		return "file_path ASC"
	}
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanStoredOutline reads one outlines row, decoding the JSONB payload.
func scanStoredOutline(row rowScanner) (*outbound.StoredOutline, error) {
	var (
		stored  outbound.StoredOutline
		payload []byte
	)

	err := row.Scan(
		&stored.ID,
		&stored.ProjectID,
		&stored.ProjectRoot,
		&stored.FilePath,
		&stored.ContentHash,
		&payload,
		&stored.DeclarationCount,
		&stored.ImportCount,
		&stored.IndexedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var outline valueobject.SourceOutline
	if err := json.Unmarshal(payload, &outline); err != nil {
		return nil, fmt.Errorf("decode outline payload: %w", err)
	}
	stored.Outline = outline
	stored.IndexedAt = stored.IndexedAt.UTC()
	stored.UpdatedAt = stored.UpdatedAt.UTC()

	return &stored, nil
}
