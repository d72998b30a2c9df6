// Package models defines the catalog types shared by the storage, index and
// service layers.
package models

import "time"

// ProjectMetadata is a lightweight representation of a project file on disk,
// returned by storage list operations.
type ProjectMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Include is one include search path of a project.
type Include struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"` // "system" or "local"
}

// Include kinds.
const (
	IncludeSystem = "system"
	IncludeLocal  = "local"
)
