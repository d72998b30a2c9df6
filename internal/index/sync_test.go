package index

import (
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/beidekit/internal/beide"
	"github.com/starford/beidekit/internal/beide/beidetest"
)

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestSync_IndexesWorkspace(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	_ = os.MkdirAll(filepath.Join(root, "apps"), 0o755)
	_ = os.WriteFile(filepath.Join(root, "apps", "a.proj"), sampleProject("A"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "b.proj"), sampleProject("B"), 0o644)

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	p, err := db.GetProject("apps/a.proj")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if !p.Ready || p.TargetName != "A" || p.TargetType != "application" {
		t.Errorf("unexpected row %+v", p)
	}
	if p.FileCount != len(beidetest.SampleFiles) {
		t.Errorf("file count = %d, want %d", p.FileCount, len(beidetest.SampleFiles))
	}

	users, _ := db.ProjectsUsing("src/App.cpp")
	if len(users) != 2 {
		t.Errorf("expected both projects to use src/App.cpp, got %v", users)
	}
}

func TestSync_BrokenProjectCatalogued(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	data := sampleProject("Broken")
	_ = os.WriteFile(filepath.Join(root, "broken.proj"), data[:len(data)-3], 0o644)

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	p, err := db.GetProject("broken.proj")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p.Ready {
		t.Error("truncated project should not be ready")
	}
	if p.Error == "" {
		t.Error("expected load error to be recorded")
	}
}

func TestSync_RemovesStale(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	path := filepath.Join(root, "gone.proj")
	_ = os.WriteFile(path, sampleProject("Gone"), 0o644)
	_ = Sync(db, store, discardLogger())

	_ = os.Remove(path)
	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cs, _ := db.GetChecksum("gone.proj"); cs != "" {
		t.Error("stale project should be removed")
	}
}

func TestSync_ByteOrderOption(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	// No header record, so the byte order cannot be detected.
	data := beidetest.New(binary.LittleEndian).String("TNam", "Little").Bytes()
	_ = os.WriteFile(filepath.Join(root, "le.proj"), data, 0o644)

	if err := Sync(db, store, discardLogger(), beide.WithByteOrder(binary.LittleEndian)); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	p, err := db.GetProject("le.proj")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if !p.Ready || p.TargetName != "Little" {
		t.Errorf("unexpected row %+v", p)
	}
}

func TestEntry_Includes(t *testing.T) {
	p := beide.New()
	data := sampleProject("Inc")
	if err := p.LoadBytes("inc.proj", data); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	r, fs, incs := Entry("inc.proj", data, p)
	if !r.Ready || r.Checksum == "" {
		t.Errorf("unexpected row %+v", r)
	}
	if len(fs) != len(beidetest.SampleFiles) {
		t.Errorf("files = %d", len(fs))
	}
	want := len(beidetest.SampleSystemIncludes) + len(beidetest.SampleLocalIncludes)
	if len(incs) != want {
		t.Fatalf("includes = %d, want %d", len(incs), want)
	}
	if incs[0].Kind != "system" || incs[len(incs)-1].Kind != "local" {
		t.Errorf("unexpected include kinds %+v", incs)
	}
}

func TestIndexFile_EmptyTargetNameRecordsError(t *testing.T) {
	_, _, db := watcherTestEnv(t)
	data := beidetest.New(binary.BigEndian).String("TNam", "").Bytes()

	row, err := IndexFile(db, "blank.proj", data)
	if err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	if row.Ready || row.Error == "" {
		t.Errorf("row = %+v, want not ready with an error", row)
	}
}
