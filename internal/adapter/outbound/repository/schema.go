package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements create the outline storage schema. Statements are
// idempotent so workers can run them on startup.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS swiftscope`,
	`CREATE TABLE IF NOT EXISTS swiftscope.outlines (
		id                UUID PRIMARY KEY,
		project_id        UUID NOT NULL,
		project_root      TEXT NOT NULL,
		file_path         TEXT NOT NULL,
		content_hash      TEXT NOT NULL,
		outline           JSONB NOT NULL,
		declaration_count INTEGER NOT NULL DEFAULT 0,
		import_count      INTEGER NOT NULL DEFAULT 0,
		indexed_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL,
		UNIQUE (project_id, file_path)
	)`,
	`CREATE INDEX IF NOT EXISTS outlines_project_path_idx
		ON swiftscope.outlines (project_id, file_path)`,
	`CREATE INDEX IF NOT EXISTS outlines_updated_at_idx
		ON swiftscope.outlines (project_id, updated_at DESC)`,
}

// Migrate applies the outline schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, statement := range schemaStatements {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
