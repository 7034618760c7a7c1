package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Portable DDL: works unchanged on sqlite and Postgres. Timestamps are
// stored as RFC 3339 text so both drivers scan them identically.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS work_items (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL DEFAULT '',
		buyer            TEXT NOT NULL DEFAULT '',
		deadline         TEXT NOT NULL DEFAULT '',
		estimated_value  TEXT NOT NULL DEFAULT '',
		scope_item_count INTEGER NOT NULL DEFAULT 0,
		priority         TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT '',
		source_tag       TEXT NOT NULL DEFAULT '',
		document_ref     TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL DEFAULT '',
		updated_at       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS routing_summaries (
		work_item_id TEXT PRIMARY KEY,
		payload      TEXT NOT NULL,
		created_at   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS match_results (
		id             TEXT PRIMARY KEY,
		work_item_id   TEXT NOT NULL,
		item_name      TEXT NOT NULL DEFAULT '',
		spec_text      TEXT NOT NULL DEFAULT '',
		best_match_code TEXT NOT NULL DEFAULT '',
		score          REAL NOT NULL DEFAULT 0,
		status         TEXT NOT NULL DEFAULT '',
		alternatives   TEXT NOT NULL DEFAULT '[]',
		created_at     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_match_results_work_item
		ON match_results (work_item_id)`,
}

// InitSchema creates the tables if they do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
