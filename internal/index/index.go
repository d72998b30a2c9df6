package index

import (
	"context"

	"github.com/starford/beidekit/internal/beide"
	"github.com/starford/beidekit/internal/models"
)

// ProjectIndex defines the interface for catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ProjectIndex interface {
	UpsertProject(p ProjectRow, files []beide.ProjectFile, includes []models.Include) error
	DeleteProject(path string) error
	GetChecksum(path string) (string, error)
	GetProject(path string) (*ProjectRow, error)
	ListProjects(limit, offset int, targetType, sort string) ([]ProjectRow, int, error)
	ProjectFiles(project string) ([]FileRow, error)
	ProjectsUsing(file string) ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Verify *DB satisfies ProjectIndex at compile time.
var _ ProjectIndex = (*DB)(nil)
