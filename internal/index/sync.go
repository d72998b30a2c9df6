package index

import (
	"log/slog"
	"time"

	"github.com/starford/beidekit/internal/beide"
	"github.com/starford/beidekit/internal/checksum"
	"github.com/starford/beidekit/internal/models"
	"github.com/starford/beidekit/internal/storage"
)

// Sync walks the workspace and brings the catalog up to date:
//   - new/changed project files are parsed and upserted
//   - files removed from disk are deleted from the catalog
//
// A project that fails to parse is still catalogued, with Ready=false and
// the load error, so broken files stay visible.
func Sync(db *DB, store storage.Provider, logger *slog.Logger, opts ...beide.Option) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		row, err := IndexFile(db, m.Path, data, opts...)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if !row.Ready {
			logger.Warn("sync: project not ready", slog.String("path", m.Path), slog.String("error", row.Error))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path), slog.String("checksum", checksum.Short(m.Checksum)))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteProject(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses data as a project file and upserts it into the catalog.
// Only catalog failures are returned; parse failures are recorded on the row.
func IndexFile(db ProjectIndex, path string, data []byte, opts ...beide.Option) (ProjectRow, error) {
	p := beide.New(opts...)
	_ = p.LoadBytes(path, data)

	row, files, includes := Entry(path, data, p)
	return row, db.UpsertProject(row, files, includes)
}

// Entry converts a loaded project into the rows the catalog stores for it.
func Entry(path string, data []byte, p *beide.Project) (ProjectRow, []beide.ProjectFile, []models.Include) {
	row := ProjectRow{
		Path:      path,
		Checksum:  checksum.Sum(data),
		Ready:     p.Ready(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := p.Err(); err != nil {
		row.Error = err.Error()
		return row, nil, nil
	}
	row.TargetName = p.TargetName()
	row.TargetType = p.TargetType().String()

	files := p.Files()
	row.FileCount = len(files)

	includes := make([]models.Include, 0, p.CountSystemIncludes()+p.CountLocalIncludes())
	for _, s := range p.SystemIncludes() {
		includes = append(includes, models.Include{Path: s, Kind: models.IncludeSystem})
	}
	for _, s := range p.LocalIncludes() {
		includes = append(includes, models.Include{Path: s, Kind: models.IncludeLocal})
	}
	return row, files, includes
}
