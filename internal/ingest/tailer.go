// Package ingest watches the flat files cmd/server's daemon reads per run
// (events.jsonl, tensions.json, snapshot.json) and decodes them into the
// types the Director consumes. The polling/offset approach is grounded on
// the original simulator's own watcher
// (original_source/crates/viz/src/live_commentary.rs's watch_events_file):
// track how much of the file has been read, detect a shorter file as a
// reset, and only parse whole lines.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kestrelworks/director/internal/director/event"
)

// EventTailer incrementally reads newly-appended lines from an append-only
// events.jsonl.
type EventTailer struct {
	path   string
	offset int64
	logger *slog.Logger
}

// NewEventTailer constructs a tailer starting at the beginning of path.
// logger may be nil, in which case skipped lines are silently discarded.
func NewEventTailer(path string, logger *slog.Logger) *EventTailer {
	return &EventTailer{path: path, logger: logger}
}

// Poll returns every complete event line appended since the last call. It is
// a no-op if the file doesn't exist yet or hasn't grown. If the file is now
// shorter than what was already read, that's treated as a fresh run: reading
// resumes from the start. A line that fails to parse is logged and skipped,
// not treated as a reason to drop the rest of the batch (spec §7).
func (t *EventTailer) Poll() ([]event.Event, error) {
	info, err := os.Stat(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat events file: %w", err)
	}

	if info.Size() < t.offset {
		t.offset = 0
	}
	if info.Size() <= t.offset {
		return nil, nil
	}

	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	chunk := make([]byte, info.Size()-t.offset)
	if _, err := f.ReadAt(chunk, t.offset); err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}

	// Only consume whole lines; a trailing partial line is left for the
	// writer to finish and is picked up on a later poll.
	lastNewline := bytes.LastIndexByte(chunk, '\n')
	if lastNewline < 0 {
		return nil, nil
	}
	complete := chunk[:lastNewline+1]
	t.offset += int64(len(complete))

	return event.ParseEventLines(bytes.NewReader(complete), t.logger), nil
}
