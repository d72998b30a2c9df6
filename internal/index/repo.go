package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/beidekit/internal/apperr"
	"github.com/starford/beidekit/internal/beide"
	"github.com/starford/beidekit/internal/models"
)

// ProjectRow represents a row in the projects table. Projects that failed to
// parse are kept with Ready=false and the load error.
type ProjectRow struct {
	Path       string
	TargetName string
	TargetType string
	Checksum   string
	FileCount  int
	Ready      bool
	Error      string
	UpdatedAt  time.Time
}

// FileRow is one project file entry as catalogued.
type FileRow struct {
	Project  string
	Path     string
	MimeType string
	Group    string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path       string
	TargetName string
	Snippet    string
}

// UpsertProject replaces a project together with its files and includes in
// a single transaction.
func (db *DB) UpsertProject(p ProjectRow, files []beide.ProjectFile, includes []models.Include) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO projects (path, target_name, target_type, checksum, file_count, ready, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			target_name = excluded.target_name,
			target_type = excluded.target_type,
			checksum    = excluded.checksum,
			file_count  = excluded.file_count,
			ready       = excluded.ready,
			error       = excluded.error,
			updated_at  = excluded.updated_at
	`, p.Path, p.TargetName, p.TargetType, p.Checksum, len(files), p.Ready, p.Error, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert project: %w", err)
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	if err := ftsUpsert(tx, p.Path, p.TargetName, strings.Join(paths, " ")); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM project_files WHERE project = ?`, p.Path); err != nil {
		return fmt.Errorf("index: clear files: %w", err)
	}
	if len(files) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO project_files (project, position, path, mime_type, grp) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare file insert: %w", err)
		}
		defer stmt.Close()
		for i, f := range files {
			if _, err := stmt.Exec(p.Path, i, f.Path, f.MimeType, f.Group); err != nil {
				return fmt.Errorf("index: insert file: %w", err)
			}
		}
	}

	if _, err := tx.Exec(`DELETE FROM includes WHERE project = ?`, p.Path); err != nil {
		return fmt.Errorf("index: clear includes: %w", err)
	}
	if len(includes) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO includes (project, position, path, kind) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare include insert: %w", err)
		}
		defer stmt.Close()
		for i, inc := range includes {
			if _, err := stmt.Exec(p.Path, i, inc.Path, inc.Kind); err != nil {
				return fmt.Errorf("index: insert include: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteProject removes a project, its FTS entry, files and includes.
func (db *DB) DeleteProject(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM project_files WHERE project = ?`, path)
	_, _ = tx.Exec(`DELETE FROM includes WHERE project = ?`, path)
	_, _ = tx.Exec(`DELETE FROM projects WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a project, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM projects WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every catalogued project.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

const projectColumns = `path, target_name, target_type, checksum, file_count, ready, error, updated_at`

func scanProject(s interface{ Scan(...any) error }) (ProjectRow, error) {
	var r ProjectRow
	err := s.Scan(&r.Path, &r.TargetName, &r.TargetType, &r.Checksum, &r.FileCount, &r.Ready, &r.Error, &r.UpdatedAt)
	return r, err
}

// GetProject returns one catalogued project or apperr.ErrNotFound.
func (db *DB) GetProject(path string) (*ProjectRow, error) {
	r, err := scanProject(db.conn.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get project: %w", err)
	}
	return &r, nil
}

var sortColumns = map[string]string{
	"":            "path",
	"path":        "path",
	"target_name": "target_name, path",
	"updated_at":  "updated_at DESC, path",
}

// ListProjects returns a page of projects and the total count, optionally
// restricted to one target type ("application", "shared-library", ...).
func (db *DB) ListProjects(limit, offset int, targetType, sort string) ([]ProjectRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	order, ok := sortColumns[sort]
	if !ok {
		return nil, 0, fmt.Errorf("index: %w: unknown sort %q", apperr.ErrInvalidArgument, sort)
	}

	where, args := "", []any{}
	if targetType != "" {
		where, args = ` WHERE target_type = ?`, append(args, targetType)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM projects`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count projects: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+projectColumns+` FROM projects`+where+` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectRow
	for rows.Next() {
		r, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// ProjectFiles returns the catalogued files of a project in file order.
func (db *DB) ProjectFiles(project string) ([]FileRow, error) {
	rows, err := db.conn.Query(`SELECT project, path, mime_type, grp FROM project_files WHERE project = ? ORDER BY position`, project)
	if err != nil {
		return nil, fmt.Errorf("index: project files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var f FileRow
		if err := rows.Scan(&f.Project, &f.Path, &f.MimeType, &f.Group); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ProjectsUsing returns the paths of all projects listing file.
func (db *DB) ProjectsUsing(file string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT project FROM project_files WHERE path = ? ORDER BY project`, file)
	if err != nil {
		return nil, fmt.Errorf("index: projects using: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
