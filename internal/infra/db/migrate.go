package db

import (
	"context"
	"database/sql"
)

// MigrateUp creates the client storage schema. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS client_storage (
    namespace  TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (namespace, key)
)`); err != nil {
		return err
	}

	// stale profile cleanup scans by age
	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_client_storage_updated_at ON client_storage(updated_at)`); err != nil {
		return err
	}

	return nil
}
