package mcp

import "github.com/kestrelworks/director/internal/director/output"

// ThreadSummary is the MCP-facing view of a tracked narrative thread.
type ThreadSummary struct {
	ID               string   `json:"id"`
	TensionID        string   `json:"tension_id"`
	AgentIDs         []string `json:"agent_ids"`
	Status           string   `json:"status"`
	BirthTick        int64    `json:"birth_tick"`
	LastActivityTick int64    `json:"last_activity_tick"`
	FocusTicks       int64    `json:"focus_ticks"`
	Summary          string   `json:"summary,omitempty"`
}

// CurrentTickResult answers current_tick.
type CurrentTickResult struct {
	Tick int64 `json:"tick"`
}

// ActiveThreadCountResult answers active_thread_count.
type ActiveThreadCountResult struct {
	Count int `json:"count"`
}

// TrackedBetrayalCountResult answers tracked_betrayal_count.
type TrackedBetrayalCountResult struct {
	Count int `json:"count"`
}

// ActiveThreadsParams takes no fields; active_threads always lists the
// Director's full current thread set.
type ActiveThreadsParams struct{}

// ActiveThreadsResult answers active_threads.
type ActiveThreadsResult struct {
	Threads []ThreadSummary `json:"threads"`
}

// RecentCommentaryParams scopes recent_commentary to a tick range. ToTick
// defaults to the Director's current tick when zero.
type RecentCommentaryParams struct {
	FromTick int64 `json:"from_tick,omitempty"`
	ToTick   int64 `json:"to_tick,omitempty"`
}

// RecentCommentaryResult answers recent_commentary.
type RecentCommentaryResult struct {
	Items []output.CommentaryItem `json:"items"`
}

// RecentHighlightsParams scopes recent_highlights to a tick range and a
// minimum score. ToTick defaults to the Director's current tick when zero.
type RecentHighlightsParams struct {
	FromTick int64   `json:"from_tick,omitempty"`
	ToTick   int64   `json:"to_tick,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
}

// RecentHighlightsResult answers recent_highlights.
type RecentHighlightsResult struct {
	Highlights []output.HighlightMarker `json:"highlights"`
}
