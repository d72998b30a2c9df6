// Package apperr defines the sentinel error kinds shared across beidekit.
package apperr

import "errors"

// Decode and load failures reported by the project reader.
var (
	ErrIO                   = errors.New("io error")
	ErrTruncatedRecord      = errors.New("truncated record")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidIndex         = errors.New("invalid index")
)

// Service-level failures.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidProject  = errors.New("invalid project")
	ErrInvalidArgument = errors.New("invalid argument")
)
