package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/beidekit/internal/beide"
	"github.com/starford/beidekit/internal/checksum"
	"github.com/starford/beidekit/internal/storage"
)

// Catalog change kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// reconcileDelay debounces the sweep that follows a rename.
const reconcileDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven catalog change with one
// of EventCreated, EventUpdated or EventDeleted.
type EventCallback func(kind string, path string)

type watcher struct {
	db     *DB
	store  storage.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback
	opts   []beide.Option
}

// Watch starts an fsnotify watcher on the workspace root and keeps the
// catalog in step with project files until ctx is cancelled. cb, if non-nil,
// is called after each catalog change.
//
// Directories created at runtime are watched and scanned. A write that
// leaves a file's checksum unchanged is ignored. Renames delete the old
// entry and schedule a reconciliation sweep against the workspace.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback, opts ...beide.Option) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, root); err != nil {
		return err
	}

	w := &watcher{db: db, store: store, root: root, logger: logger, cb: cb, opts: opts}
	logger.Info("watcher: started", slog.String("root", root))

	reconcile := time.NewTimer(reconcileDelay)
	reconcile.Stop()
	defer reconcile.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-reconcile.C:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name), slog.String("error", addErr.Error()))
					}
					w.scanDir(ev.Name)
					continue
				}
			}
			if !store.IsProject(ev.Name) {
				continue
			}
			rel, ok := w.rel(ev.Name)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				w.index(rel)
			case ev.Op&fsnotify.Remove != 0:
				w.remove(rel)
			case ev.Op&fsnotify.Rename != 0:
				// The new name, if still inside the workspace, arrives as
				// its own Create.
				w.remove(rel)
				reconcile.Reset(reconcileDelay)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// rel maps an absolute event path to a slash-separated workspace path.
func (w *watcher) rel(abs string) (string, bool) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *watcher) emit(kind, path string) {
	if w.cb != nil {
		w.cb(kind, path)
	}
}

// index re-reads one project file and upserts it unless its checksum is
// already catalogued.
func (w *watcher) index(rel string) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	known, err := w.db.GetChecksum(rel)
	if err != nil {
		w.logger.Warn("watcher: checksum lookup failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	sum := checksum.Sum(data)
	if known == sum {
		return
	}

	row, err := IndexFile(w.db, rel, data, w.opts...)
	if err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if !row.Ready {
		w.logger.Warn("watcher: project not ready", slog.String("path", rel), slog.String("error", row.Error))
	}

	kind := EventUpdated
	if known == "" {
		kind = EventCreated
	}
	w.logger.Debug("watcher: indexed",
		slog.String("path", rel), slog.String("op", kind), slog.String("checksum", checksum.Short(sum)))
	w.emit(kind, rel)
}

func (w *watcher) remove(rel string) {
	if err := w.db.DeleteProject(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.emit(EventDeleted, rel)
}

// scanDir indexes the project files already present in a new directory.
func (w *watcher) scanDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !w.store.IsProject(path) {
			return nil
		}
		if rel, ok := w.rel(path); ok {
			w.index(rel)
		}
		return nil
	})
}

// reconcile drops catalog entries whose files are gone and indexes files
// the catalog is missing or has stale.
func (w *watcher) reconcile() {
	catalogued, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	onDisk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		onDisk[m.Path] = struct{}{}
		if catalogued[m.Path] != m.Checksum {
			w.index(m.Path)
		}
	}
	for p := range catalogued {
		if _, ok := onDisk[p]; !ok {
			w.remove(p)
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
