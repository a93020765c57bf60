package ingest

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kestrelworks/director/internal/director/event"
)

// fileWatcher reloads path's contents whenever its modification time
// advances, the same change-detection the original watcher uses before
// deciding to re-read a file.
type fileWatcher struct {
	path    string
	modTime time.Time
}

// checkModified reports whether path exists and has a newer mtime than the
// last successful reload, returning its raw bytes when it does.
func (w *fileWatcher) checkModified() ([]byte, bool, error) {
	info, err := os.Stat(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", w.path, err)
	}
	if !info.ModTime().After(w.modTime) {
		return nil, false, nil
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", w.path, err)
	}
	w.modTime = info.ModTime()
	return data, true, nil
}

// TensionsWatcher reloads tensions.json whenever it changes.
type TensionsWatcher struct {
	fw      fileWatcher
	current []event.Tension
}

// NewTensionsWatcher constructs a watcher over path, empty until the first
// successful Poll.
func NewTensionsWatcher(path string) *TensionsWatcher {
	return &TensionsWatcher{fw: fileWatcher{path: path}}
}

// Poll reloads the tension set if the file changed since the last call, and
// always returns the current (possibly unchanged) set.
func (w *TensionsWatcher) Poll() ([]event.Tension, error) {
	data, changed, err := w.fw.checkModified()
	if err != nil {
		return w.current, err
	}
	if !changed {
		return w.current, nil
	}
	tensions, err := event.ParseTensions(data)
	if err != nil {
		return w.current, fmt.Errorf("parse tensions file: %w", err)
	}
	w.current = tensions
	return w.current, nil
}

// SnapshotWatcher reloads snapshot.json whenever it changes.
type SnapshotWatcher struct {
	fw      fileWatcher
	current event.WorldSnapshot
}

// NewSnapshotWatcher constructs a watcher over path.
func NewSnapshotWatcher(path string) *SnapshotWatcher {
	return &SnapshotWatcher{fw: fileWatcher{path: path}}
}

// Poll reloads the snapshot if the file changed since the last call. changed
// reports whether a new snapshot (and therefore a new tick to process) is
// available.
func (w *SnapshotWatcher) Poll() (snapshot event.WorldSnapshot, changed bool, err error) {
	data, changed, err := w.fw.checkModified()
	if err != nil {
		return w.current, false, err
	}
	if !changed {
		return w.current, false, nil
	}
	snap, err := event.ParseWorldSnapshot(data)
	if err != nil {
		return w.current, false, fmt.Errorf("parse snapshot file: %w", err)
	}
	w.current = snap
	return w.current, true, nil
}
