package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/beidekit/internal/apperr"
	"github.com/starford/beidekit/internal/checksum"
	"github.com/starford/beidekit/internal/models"
)

// DefaultExtension is the suffix BeIDE gave its project files.
const DefaultExtension = ".proj"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to workspace directory
	ext  string // lower-case project extension including the dot
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist. An empty ext selects DefaultExtension.
func NewFS(root, ext string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &FS{root: abs, ext: strings.ToLower(ext)}, nil
}

// Root returns the absolute workspace directory.
func (f *FS) Root() string { return f.root }

// IsProject reports whether path ends with the project extension.
func (f *FS) IsProject(path string) bool {
	return strings.EqualFold(filepath.Ext(path), f.ext)
}

// safePath resolves a relative path against the workspace root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: %w: absolute paths not allowed: %s", apperr.ErrInvalidArgument, rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: %w: path escapes workspace root: %s", apperr.ErrInvalidArgument, rel)
	}
	return abs, nil
}

// List walks dir (relative to root) and returns metadata for every project file.
// Paths use forward slashes.
func (f *FS) List(dir string) ([]models.ProjectMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.ProjectMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !f.IsProject(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.ProjectMetadata{
			Path:      filepath.ToSlash(rel),
			Checksum:  checksum.Sum(data),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a workspace file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, tmpName, err := f.stage(path, content)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, abs); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

// Create writes content like Write but never replaces an existing file.
// The final step is a hard link, which fails if path already exists, so
// concurrent callers cannot both succeed. Returns apperr.ErrAlreadyExists.
func (f *FS) Create(path string, content []byte) error {
	abs, tmpName, err := f.stage(path, content)
	if err != nil {
		return err
	}
	defer os.Remove(tmpName)

	if err := os.Link(tmpName, abs); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("storage: create %s: %w", path, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("storage: link: %w", err)
	}
	return nil
}

// stage writes content to a synced temp file next to path and returns the
// resolved destination and the temp file name.
func (f *FS) stage(path string, content []byte) (string, string, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return "", "", err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("storage: mkdir: %w", err)
	}

	// The temp name must not carry the project extension, or the watcher
	// would try to index a half-written file.
	tmp, err := os.CreateTemp(dir, ".beidekit-tmp-*")
	if err != nil {
		return "", "", fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return "", "", fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", "", fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", "", fmt.Errorf("storage: close temp: %w", err)
	}
	success = true
	return abs, tmpName, nil
}
