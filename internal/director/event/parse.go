package event

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseEventLines decodes one Event per non-blank line of r. A line that
// fails to parse is logged and skipped rather than aborting the batch — the
// ingestion contract treats malformed input items as locally recoverable.
func ParseEventLines(r io.Reader, logger *slog.Logger) []Event {
	logger = orDiscard(logger)
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			logger.Warn("skipping unparseable event line", "line", lineNo, "error", err)
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("event stream scan error", "error", err)
	}
	return events
}

// ParseTensions decodes a JSON array of tensions. Malformed elements cannot
// be skipped individually once the array fails to parse as a whole (the
// array is one JSON value); callers that need line-level recovery should
// prefer ParseEventLines-style streaming for their own inputs.
func ParseTensions(data []byte) ([]Tension, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var tensions []Tension
	if err := json.Unmarshal(data, &tensions); err != nil {
		return nil, fmt.Errorf("parsing tensions: %w", err)
	}
	return tensions, nil
}

// ParseWorldSnapshot decodes a single world snapshot JSON object.
func ParseWorldSnapshot(data []byte) (WorldSnapshot, error) {
	var snap WorldSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return WorldSnapshot{}, fmt.Errorf("parsing world snapshot: %w", err)
	}
	return snap, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
