// Package sqlite provides the local durable store used for offline
// operation: movement records, the product cache, the session snapshot
// and the booking journal.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (or creates) the local database with pragmas suited for a
// single-writer embedded store.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS movements (
		id           TEXT PRIMARY KEY,
		version      INTEGER NOT NULL DEFAULT 1,
		created_at   TIMESTAMP NOT NULL,
		updated_at   TIMESTAMP NOT NULL,
		created_by   TEXT NOT NULL DEFAULT '',
		server_id    INTEGER,
		dirty        INTEGER NOT NULL DEFAULT 0,
		last_synced  TIMESTAMP,
		direction    TEXT NOT NULL,
		capture_type TEXT NOT NULL,
		product_id   INTEGER,
		product_name TEXT NOT NULL DEFAULT '',
		sku          TEXT NOT NULL DEFAULT '',
		quantity     TEXT NOT NULL,
		unit_price   TEXT NOT NULL DEFAULT '0',
		total_price  TEXT NOT NULL DEFAULT '0',
		reference    TEXT NOT NULL DEFAULT '',
		notes        TEXT NOT NULL DEFAULT '',
		supplier     TEXT NOT NULL DEFAULT '',
		location     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_movements_server_id
		ON movements(direction, server_id) WHERE server_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_movements_scope
		ON movements(direction, capture_type, reference)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_dirty
		ON movements(dirty) WHERE dirty = 1`,
	`CREATE TABLE IF NOT EXISTS products (
		id               INTEGER PRIMARY KEY,
		name             TEXT NOT NULL,
		sku              TEXT NOT NULL DEFAULT '',
		price            TEXT NOT NULL DEFAULT '0',
		stock_quantity   TEXT NOT NULL DEFAULT '0',
		unit             TEXT NOT NULL DEFAULT '',
		default_supplier TEXT NOT NULL DEFAULT '',
		item_type        TEXT NOT NULL DEFAULT 'material'
	)`,
	`CREATE TABLE IF NOT EXISTS session (
		id            INTEGER PRIMARY KEY CHECK (id = 1),
		token         TEXT NOT NULL DEFAULT '',
		user_json     TEXT NOT NULL DEFAULT '{}',
		password_hash BLOB,
		signed_in_at  TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS journal (
		id          TEXT PRIMARY KEY,
		action      TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		payload     BLOB,
		compression TEXT NOT NULL DEFAULT 'none',
		created_at  TIMESTAMP NOT NULL
	)`,
}

// Migrate creates the schema. Idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
