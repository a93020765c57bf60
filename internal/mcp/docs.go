package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `director-mcp exposes a read-only view of a running Director's narrative state.

Core concepts (keep this mental model small):
- Tick: the Director's logical clock; everything here is scoped to a tick range.
- Thread: a persistent storyline the Director is tracking, keyed on a tension (or a synthetic
  id) and its agent set. Threads move active -> fatigued -> dormant -> concluded.
- Commentary item: a line of generated narration (event caption, dramatic irony, tension
  teaser, context reminder, narrator voice) queued at a given tick.
- Highlight: a marker the Director raised for a noteworthy event, with a suggested clip window.

This server never mutates Director state. It cannot author events, tensions, or world
snapshots, and it cannot change configuration — it only reads back what the Director has
already produced.

Rules of engagement (default workflow):
1) Orient: call current_tick to see how far the run has progressed.
2) Check narrative load: call active_thread_count and active_threads to see what storylines
   are currently competing for focus, and tracked_betrayal_count to see what dramatic-irony
   payoffs are still pending.
3) Review output: call recent_commentary and recent_highlights with a tick range to see what
   the Director has actually surfaced. Both default to the whole run through the current tick
   when no range is given.

Docs (progressive disclosure):
- director://docs/index (what to read when)
- director://docs/concepts (glossary + thread lifecycle)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "director://docs/index",
		Name:        "docs_index",
		Title:       "director-mcp docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read first.",
		Content: `# director-mcp: Agent Docs Index

This server is read-only introspection over a single running Director. Keep your baseline
context small and load deeper docs only when needed.

## Quick start

1. ` + "`current_tick`" + ` to see how far the run has progressed.
2. ` + "`active_threads`" + ` / ` + "`active_thread_count`" + ` to see what storylines are live.
3. ` + "`tracked_betrayal_count`" + ` to see what dramatic-irony payoffs are pending.
4. ` + "`recent_commentary`" + ` / ` + "`recent_highlights`" + ` with a tick range to review output.

## Docs (read on demand)

- ` + "`director://docs/concepts`" + ` — glossary + thread lifecycle.

## Capabilities & intentional limitations

- ` + "`recent_commentary`" + ` and ` + "`recent_highlights`" + ` read from the archive sink; if
  the server was started without one configured, both return an ARCHIVE_NOT_CONFIGURED error.
- This server has no write tools. It cannot inject events or change Director configuration.
`,
	},
	{
		URI:         "director://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and thread lifecycle",
		Description: "Mental model: threads, fatigue, and what commentary/highlights mean.",
		Content: `# Concepts and thread lifecycle

## Glossary

- **Thread**: a persistent storyline the Director tracks, identified by a tension id (or a
  synthetic id when born from a bare event) plus its sorted agent set.
- **Tick**: the Director's logical clock. Every commentary item and highlight is stamped with
  the tick it was generated at.
- **Highlight**: a marker raised for a scored event at or above the configured minimum score,
  carrying a suggested clip window around the triggering tick.
- **Commentary item**: one queued line of narration, tagged with a kind (event caption,
  dramatic irony, tension teaser, context reminder, narrator voice).

## Thread lifecycle

` + "`active -> fatigued -> dormant -> concluded`" + `, with concluded terminal.

- A thread fatigues once it has both existed and held focus for long enough — screen-time
  domination, not plot resolution. A fatigued thread can still win focus back (e.g. no other
  candidate qualifies), which re-activates it.
- A thread goes dormant when its tension stops appearing in the tension feed for long enough,
  and can re-activate if the tension resurfaces.
- A thread concludes when its tension resolves, or when it's evicted to make room under the
  tracker's thread-count cap (lowest severity × recency loses).

## Reading active_threads output

Each entry reports ` + "`birth_tick`" + `, ` + "`last_activity_tick`" + `, and ` + "`focus_ticks`" + ` —
together these explain why a thread is (or isn't) close to fatiguing.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
