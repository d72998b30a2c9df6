// Package index provides the SQLite-backed project catalog with optional FTS5
// full-text search.
package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
	path          TEXT PRIMARY KEY,
	target_name   TEXT NOT NULL DEFAULT '',
	target_type   TEXT NOT NULL DEFAULT '',
	checksum      TEXT NOT NULL DEFAULT '',
	file_count    INTEGER NOT NULL DEFAULT 0,
	ready         INTEGER NOT NULL DEFAULT 0,
	error         TEXT NOT NULL DEFAULT '',
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS project_files (
	project   TEXT NOT NULL REFERENCES projects(path) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	path      TEXT NOT NULL,
	mime_type TEXT NOT NULL DEFAULT '',
	grp       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (project, position)
);

CREATE TABLE IF NOT EXISTS includes (
	project  TEXT NOT NULL REFERENCES projects(path) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	path     TEXT NOT NULL,
	kind     TEXT NOT NULL,
	PRIMARY KEY (project, kind, position)
);

CREATE INDEX IF NOT EXISTS idx_project_files_path ON project_files(path);
CREATE INDEX IF NOT EXISTS idx_projects_target_type ON projects(target_type);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("index: ping: %w", err)
	}
	return nil
}
