package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools wires every read-only introspection tool (spec §4.6a) onto
// server. Each tool reads Director/archive state through accessor methods
// only — none of them mutate anything.
func registerTools(server *sdkmcp.Server, cfg Config) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "current_tick",
		Description: "Report the tick of the most recently processed Director tick.",
	}, currentTickHandler(cfg.Director))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "active_thread_count",
		Description: "Report how many narrative threads are currently in the active status.",
	}, activeThreadCountHandler(cfg.Director))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "tracked_betrayal_count",
		Description: "Report how many betrayals the commentary generator is still watching for dramatic irony.",
	}, trackedBetrayalCountHandler(cfg.Director))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "active_threads",
		Description: "List every narrative thread the Director is currently tracking, including fatigued, dormant, and concluded ones.",
	}, activeThreadsHandler(cfg.Director))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_commentary",
		Description: "List commentary items the Director has emitted within a tick range (defaults to the whole run through the current tick).",
	}, recentCommentaryHandler(cfg))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_highlights",
		Description: "List highlights the Director has emitted within a tick range and minimum score (defaults to the whole run through the current tick).",
	}, recentHighlightsHandler(cfg))
}

func currentTickHandler(d DirectorView) sdkmcp.ToolHandlerFor[struct{}, CurrentTickResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, CurrentTickResult, error) {
		result := CurrentTickResult{Tick: d.CurrentTick()}
		return textResult(result), result, nil
	}
}

func activeThreadCountHandler(d DirectorView) sdkmcp.ToolHandlerFor[struct{}, ActiveThreadCountResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, ActiveThreadCountResult, error) {
		result := ActiveThreadCountResult{Count: d.ActiveThreadCount()}
		return textResult(result), result, nil
	}
}

func trackedBetrayalCountHandler(d DirectorView) sdkmcp.ToolHandlerFor[struct{}, TrackedBetrayalCountResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, TrackedBetrayalCountResult, error) {
		result := TrackedBetrayalCountResult{Count: d.TrackedBetrayalCount()}
		return textResult(result), result, nil
	}
}

func activeThreadsHandler(d DirectorView) sdkmcp.ToolHandlerFor[ActiveThreadsParams, ActiveThreadsResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, _ ActiveThreadsParams) (*sdkmcp.CallToolResult, ActiveThreadsResult, error) {
		threads := d.Threads()
		summaries := make([]ThreadSummary, 0, len(threads))
		for _, th := range threads {
			summaries = append(summaries, ThreadSummary{
				ID:               th.ID,
				TensionID:        th.TensionID,
				AgentIDs:         th.AgentIDs,
				Status:           string(th.Status),
				BirthTick:        th.BirthTick,
				LastActivityTick: th.LastActivityTick,
				FocusTicks:       th.FocusTicks,
				Summary:          th.Summary,
			})
		}
		result := ActiveThreadsResult{Threads: summaries}
		return textResult(result), result, nil
	}
}

func recentCommentaryHandler(cfg Config) sdkmcp.ToolHandlerFor[RecentCommentaryParams, RecentCommentaryResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, params RecentCommentaryParams) (*sdkmcp.CallToolResult, RecentCommentaryResult, error) {
		if cfg.Archive == nil || cfg.RunID == "" {
			return nil, RecentCommentaryResult{}, errArchiveNotConfigured()
		}
		toTick := params.ToTick
		if toTick == 0 {
			toTick = cfg.Director.CurrentTick()
		}
		items, err := cfg.Archive.CommentaryInRange(ctx, cfg.RunID, params.FromTick, toTick)
		if err != nil {
			return nil, RecentCommentaryResult{}, errArchiveUnavailable(err)
		}
		result := RecentCommentaryResult{Items: items}
		return textResult(result), result, nil
	}
}

func recentHighlightsHandler(cfg Config) sdkmcp.ToolHandlerFor[RecentHighlightsParams, RecentHighlightsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, params RecentHighlightsParams) (*sdkmcp.CallToolResult, RecentHighlightsResult, error) {
		if cfg.Archive == nil || cfg.RunID == "" {
			return nil, RecentHighlightsResult{}, errArchiveNotConfigured()
		}
		toTick := params.ToTick
		if toTick == 0 {
			toTick = cfg.Director.CurrentTick()
		}
		highlights, err := cfg.Archive.HighlightsInRange(ctx, cfg.RunID, params.FromTick, toTick, params.MinScore)
		if err != nil {
			return nil, RecentHighlightsResult{}, errArchiveUnavailable(err)
		}
		result := RecentHighlightsResult{Highlights: highlights}
		return textResult(result), result, nil
	}
}

// textResult renders v as the tool's text content alongside its structured
// result, so clients that only read text content still get a usable answer.
func textResult(v any) *sdkmcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: err.Error()}},
			IsError: true,
		}
	}
	return &sdkmcp.CallToolResult{Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}}}
}
