// Package testutil provides shared test helpers for setting up workspaces,
// catalogs and services.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/beidekit/internal/beide/beidetest"
	"github.com/starford/beidekit/internal/index"
	"github.com/starford/beidekit/internal/projectservice"
	"github.com/starford/beidekit/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "beidekit-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace directory with a storage.Provider.
func TestWorkspace(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root, "")
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// TestService wires a workspace, a catalog and a project service.
func TestService(t *testing.T) (*projectservice.Service, string, *index.DB) {
	t.Helper()
	root, store := TestWorkspace(t)
	db := TestDB(t)
	return projectservice.NewService(store, db, nil), root, db
}

// SampleProject returns a complete big-endian project file named target.
func SampleProject(target string) []byte {
	return beidetest.Sample(binary.BigEndian, target).Bytes()
}

// WriteProject writes a sample project under root at rel and returns its bytes.
func WriteProject(t *testing.T, root, rel, target string) []byte {
	t.Helper()
	data := SampleProject(target)
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return data
}
