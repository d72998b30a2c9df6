//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches query as a literal substring.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over projects and project_files.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string) error {
	// Target name and file paths already live in the core tables.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
// The snippet is the first matching file path, if any.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := likePattern(query)
	rows, err := db.conn.Query(`
		SELECT p.path, p.target_name,
		       COALESCE((SELECT f.path FROM project_files f
		                 WHERE f.project = p.path AND f.path LIKE ? ESCAPE '\'
		                 ORDER BY f.position LIMIT 1), '')
		FROM projects p
		WHERE p.target_name LIKE ? ESCAPE '\'
		   OR EXISTS (SELECT 1 FROM project_files f WHERE f.project = p.path AND f.path LIKE ? ESCAPE '\')
		ORDER BY p.path
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.TargetName, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
