// Package projectservice coordinates workspace storage, the project reader
// and the catalog.
package projectservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/beidekit/internal/apperr"
	"github.com/starford/beidekit/internal/beide"
	"github.com/starford/beidekit/internal/checksum"
	"github.com/starford/beidekit/internal/index"
	"github.com/starford/beidekit/internal/models"
	"github.com/starford/beidekit/internal/storage"
)

// ProjectDetail is the full representation of a project.
type ProjectDetail struct {
	models.ProjectDocument `yaml:",inline"`

	Checksum  string    `json:"checksum" yaml:"checksum"`
	Size      int       `json:"size" yaml:"size"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// ProjectListItem is a lightweight item in a list response.
type ProjectListItem struct {
	Path       string    `json:"path"`
	TargetName string    `json:"target_name"`
	TargetType string    `json:"target_type"`
	Checksum   string    `json:"checksum"`
	FileCount  int       `json:"file_count"`
	Ready      bool      `json:"ready"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     index.ProjectIndex
	logger *slog.Logger
	opts   []beide.Option
}

// NewService creates a new project service. opts are passed to every
// project load (byte order, logger).
func NewService(store storage.Provider, db index.ProjectIndex, logger *slog.Logger, opts ...beide.Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, db: db, logger: logger, opts: opts}
}

// GetProject reads a project from storage and parses it. A file that exists
// but does not load yields apperr.ErrInvalidProject wrapping the load error.
func (s *Service) GetProject(_ context.Context, path string) (*ProjectDetail, error) {
	if !s.store.IsProject(path) {
		return nil, apperr.ErrNotFound
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	p, err := s.parse(path, data)
	if err != nil {
		return nil, err
	}
	detail := &ProjectDetail{
		ProjectDocument: models.Describe(path, p),
		Checksum:        checksum.Sum(data),
		Size:            len(data),
		UpdatedAt:       time.Now().UTC(),
	}
	// The catalog knows when these exact bytes were first indexed.
	row, err := s.db.GetProject(path)
	switch {
	case err == nil && row.Checksum == detail.Checksum:
		detail.UpdatedAt = row.UpdatedAt
	case err != nil && !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}
	return detail, nil
}

// ProjectFiles returns the catalogued file list of a project without
// re-reading it. Projects unknown to the catalog yield apperr.ErrNotFound.
func (s *Service) ProjectFiles(_ context.Context, path string) ([]index.FileRow, error) {
	if _, err := s.db.GetProject(path); err != nil {
		return nil, err
	}
	files, err := s.db.ProjectFiles(path)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(files), nil
}

// UploadProject validates content by parsing it, writes it to the workspace
// and indexes it. Existing files are never overwritten.
func (s *Service) UploadProject(_ context.Context, path string, content []byte) (*ProjectDetail, error) {
	if !s.store.IsProject(path) {
		return nil, fmt.Errorf("%w: %s does not have the project extension", apperr.ErrInvalidProject, path)
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	p, err := s.parse(path, content)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(path, content); err != nil {
		return nil, err
	}
	if _, err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	s.logger.Info("project uploaded", slog.String("path", path), slog.String("target", p.TargetName()))
	return &ProjectDetail{
		ProjectDocument: models.Describe(path, p),
		Checksum:        checksum.Sum(content),
		Size:            len(content),
		UpdatedAt:       time.Now().UTC(),
	}, nil
}

// ListProjects returns paginated projects with an optional target type filter.
func (s *Service) ListProjects(_ context.Context, limit, offset int, targetType, sort string) ([]ProjectListItem, int, error) {
	if targetType != "" {
		if _, err := beide.ParseTargetType(targetType); err != nil {
			return nil, 0, fmt.Errorf("%w: %w", apperr.ErrInvalidArgument, err)
		}
	}
	rows, total, err := s.db.ListProjects(limit, offset, targetType, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ProjectListItem, len(rows))
	for i, r := range rows {
		items[i] = ProjectListItem{
			Path:       r.Path,
			TargetName: r.TargetName,
			TargetType: r.TargetType,
			Checksum:   r.Checksum,
			FileCount:  r.FileCount,
			Ready:      r.Ready,
			Error:      r.Error,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates search over target names and file paths to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// ProjectsUsing returns the paths of all projects that list file.
func (s *Service) ProjectsUsing(_ context.Context, file string) ([]string, error) {
	out, err := s.db.ProjectsUsing(file)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(out), nil
}

// IndexFile parses data and upserts it into the index.
func (s *Service) IndexFile(path string, data []byte) (index.ProjectRow, error) {
	return index.IndexFile(s.db, path, data, s.loadOptions()...)
}

func (s *Service) parse(path string, data []byte) (*beide.Project, error) {
	p := beide.New(s.loadOptions()...)
	if err := p.LoadBytes(path, data); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidProject, err)
	}
	return p, nil
}

func (s *Service) loadOptions() []beide.Option {
	return append([]beide.Option{beide.WithLogger(s.logger)}, s.opts...)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
