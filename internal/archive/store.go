package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kestrelworks/director/internal/director/output"
)

// Store persists Director output for later querying. It never gates or
// blocks process_tick (spec §4.5a): callers write to it the same way they
// write to the Output Writer, as a side effect of a completed tick.
type Store interface {
	StartRun(ctx context.Context, startTick int64) (string, error)
	RecordTick(ctx context.Context, runID string, out output.DirectorOutput) error
	HighlightsInRange(ctx context.Context, runID string, fromTick, toTick int64, minScore float64) ([]output.HighlightMarker, error)
	CommentaryInRange(ctx context.Context, runID string, fromTick, toTick int64) ([]output.CommentaryItem, error)
}

// SQLiteStore is the SQLite-backed Store implementation.
type SQLiteStore struct {
	db *DB
}

// NewSQLiteStore constructs a SQLiteStore over an already-migrated DB.
func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// StartRun records a new run identifier, tagging every tick this process
// writes from here on. The id is randomly generated (spec §9's determinism
// requirement binds Director output, not archive run bookkeeping, which
// exists only to let an operator tell two invocations' rows apart).
func (s *SQLiteStore) StartRun(ctx context.Context, startTick int64) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at_tick, started_at_unix) VALUES (?, ?, strftime('%s','now'))`,
		runID, startTick,
	)
	if err != nil {
		return "", fmt.Errorf("start archive run: %w", err)
	}
	return runID, nil
}

// RecordTick writes every highlight and commentary item in out to the
// archive under runID. It does not write the camera script: spec §4.5a
// scopes the archive to highlights and commentary only.
func (s *SQLiteStore) RecordTick(ctx context.Context, runID string, out output.DirectorOutput) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	for _, h := range out.Highlights {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO highlights (
				id, run_id, event_id, kind, score, tick,
				suggested_clip_start, suggested_clip_end
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, h.ID, runID, h.EventID, h.Kind, h.Score, out.GeneratedAtTick,
			h.SuggestedClipStart, h.SuggestedClipEnd,
		)
		if err != nil {
			return fmt.Errorf("insert highlight %s: %w", h.ID, err)
		}
	}

	for _, c := range out.CommentaryQueue {
		relatedAgents, err := json.Marshal(c.RelatedAgentIDs)
		if err != nil {
			return fmt.Errorf("marshal related agents for commentary %s: %w", c.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO commentary_items (
				id, run_id, tick, kind, content, display_duration_ticks,
				priority, related_agent_ids, related_tension_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, runID, c.Timestamp, c.Kind, c.Content, c.DisplayDurationTicks,
			c.Priority, string(relatedAgents), c.RelatedTensionID,
		)
		if err != nil {
			return fmt.Errorf("insert commentary %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// HighlightsInRange returns every highlight for runID within [fromTick,
// toTick] scoring at or above minScore, ordered by tick.
func (s *SQLiteStore) HighlightsInRange(ctx context.Context, runID string, fromTick, toTick int64, minScore float64) ([]output.HighlightMarker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, kind, score, suggested_clip_start, suggested_clip_end
		FROM highlights
		WHERE run_id = ? AND tick BETWEEN ? AND ? AND score >= ?
		ORDER BY tick ASC
	`, runID, fromTick, toTick, minScore)
	if err != nil {
		return nil, fmt.Errorf("query highlights: %w", err)
	}
	defer rows.Close()

	var highlights []output.HighlightMarker
	for rows.Next() {
		var h output.HighlightMarker
		if err := rows.Scan(&h.ID, &h.EventID, &h.Kind, &h.Score, &h.SuggestedClipStart, &h.SuggestedClipEnd); err != nil {
			return nil, fmt.Errorf("scan highlight row: %w", err)
		}
		highlights = append(highlights, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate highlight rows: %w", err)
	}
	return highlights, nil
}

// CommentaryInRange returns every commentary item for runID within
// [fromTick, toTick], ordered by tick then descending priority — the same
// order the generator itself queues items in within a tick.
func (s *SQLiteStore) CommentaryInRange(ctx context.Context, runID string, fromTick, toTick int64) ([]output.CommentaryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tick, kind, content, display_duration_ticks, priority,
			related_agent_ids, related_tension_id
		FROM commentary_items
		WHERE run_id = ? AND tick BETWEEN ? AND ?
		ORDER BY tick ASC, priority DESC
	`, runID, fromTick, toTick)
	if err != nil {
		return nil, fmt.Errorf("query commentary: %w", err)
	}
	defer rows.Close()

	var items []output.CommentaryItem
	for rows.Next() {
		var c output.CommentaryItem
		var relatedAgentsJSON string
		var tensionID sql.NullString
		if err := rows.Scan(&c.ID, &c.Timestamp, &c.Kind, &c.Content, &c.DisplayDurationTicks,
			&c.Priority, &relatedAgentsJSON, &tensionID); err != nil {
			return nil, fmt.Errorf("scan commentary row: %w", err)
		}
		if err := json.Unmarshal([]byte(relatedAgentsJSON), &c.RelatedAgentIDs); err != nil {
			return nil, fmt.Errorf("unmarshal related agents for %s: %w", c.ID, err)
		}
		if tensionID.Valid {
			c.RelatedTensionID = &tensionID.String
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commentary rows: %w", err)
	}
	return items, nil
}
