package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer is the Output Writer component (spec §4.5). It supports two modes:
// Batch, which accumulates every tick's output in memory and serializes
// three JSON arrays on demand, and Streaming, which appends one JSON line
// per tick to an append-only log. Both guarantee fsync on Flush and never
// leave a partial line visible to a reader.
type Writer struct {
	mu sync.Mutex

	batchDir string
	camera   []CameraInstruction
	commentary []CommentaryItem
	highlights []HighlightMarker

	streamPath string
	streamFile *os.File
}

// NewBatchWriter accumulates output in memory for later serialization via
// WriteAll into dir.
func NewBatchWriter(dir string) *Writer {
	return &Writer{batchDir: dir}
}

// NewStreamWriter appends one JSON line per tick to path, creating it if
// absent.
func NewStreamWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && filepath.Dir(path) != "." {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening streaming output file: %w", err)
	}
	return &Writer{streamPath: path, streamFile: f}, nil
}

// WriteTick records one tick's Director Output. In batch mode it is
// appended to the in-memory accumulators (flushed later by WriteAll); in
// streaming mode it is appended as one JSON line immediately.
func (w *Writer) WriteTick(out DirectorOutput) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.streamFile != nil {
		return w.writeStreamLineLocked(out)
	}

	w.camera = append(w.camera, out.CameraScript...)
	w.commentary = append(w.commentary, out.CommentaryQueue...)
	w.highlights = append(w.highlights, out.Highlights...)
	return nil
}

// writeStreamLineLocked marshals the full line before writing it so a
// concurrent reader never observes a partial JSON object — the line is
// written whole, then a trailing newline, matching the recoverability
// guarantee of spec §4.5.
func (w *Writer) writeStreamLineLocked(out DirectorOutput) error {
	line, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshaling director output: %w", err)
	}
	line = append(line, '\n')
	if _, err := w.streamFile.Write(line); err != nil {
		return fmt.Errorf("appending to streaming output: %w", err)
	}
	return nil
}

// Flush fsyncs whatever file is open. In batch mode it additionally
// serializes the three accumulated arrays to camera_script.json,
// commentary.json, and highlights.json.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.streamFile != nil {
		if err := w.streamFile.Sync(); err != nil {
			return fmt.Errorf("fsyncing streaming output: %w", err)
		}
		return nil
	}
	return w.writeAllLocked()
}

// WriteAll serializes the accumulated batch arrays to dir immediately,
// regardless of how many ticks have been recorded. Calling it on a
// streaming writer is a no-op error since the two modes are mutually
// exclusive once constructed.
func (w *Writer) WriteAll(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.streamFile != nil {
		return fmt.Errorf("output: WriteAll called on a streaming writer")
	}
	if dir != "" {
		w.batchDir = dir
	}
	return w.writeAllLocked()
}

func (w *Writer) writeAllLocked() error {
	if w.batchDir == "" {
		return fmt.Errorf("output: batch writer has no target directory")
	}
	if err := os.MkdirAll(w.batchDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeJSONArrayFsync(filepath.Join(w.batchDir, "camera_script.json"), w.camera); err != nil {
		return err
	}
	if err := writeJSONArrayFsync(filepath.Join(w.batchDir, "commentary.json"), w.commentary); err != nil {
		return err
	}
	if err := writeJSONArrayFsync(filepath.Join(w.batchDir, "highlights.json"), w.highlights); err != nil {
		return err
	}
	return nil
}

func writeJSONArrayFsync[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Sync()
}

// Close releases the underlying streaming file handle, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.streamFile == nil {
		return nil
	}
	return w.streamFile.Close()
}
