// Package storage defines the workspace file-system abstraction.
package storage

import "github.com/starford/beidekit/internal/models"

// Provider is the interface for workspace file operations.
type Provider interface {
	// List returns metadata for every project file under dir (relative to the workspace root).
	List(dir string) ([]models.ProjectMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the workspace root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the workspace root).
	Write(path string, content []byte) error
	// Create is Write that fails with apperr.ErrAlreadyExists instead of
	// replacing an existing file.
	Create(path string, content []byte) error
	// IsProject reports whether path carries the project file extension.
	IsProject(path string) bool
}
