// Package director implements the Director orchestrator (spec §4.6): it
// holds every component and all state that persists across ticks, and runs
// the per-tick pipeline in the order spec §2 fixes — score events, update
// threads, select focus, emit camera instruction, generate commentary, mark
// highlights. ProcessTick returns the tick's output; writing it out is left
// to the caller.
package director

import (
	"log/slog"

	"github.com/kestrelworks/director/internal/director/commentary"
	"github.com/kestrelworks/director/internal/director/event"
	"github.com/kestrelworks/director/internal/director/focus"
	"github.com/kestrelworks/director/internal/director/output"
	"github.com/kestrelworks/director/internal/director/scoring"
	"github.com/kestrelworks/director/internal/director/thread"
)

// Director is the single-threaded, per-process pipeline owner. It exposes
// no concurrency of its own (spec §5): callers serialize ProcessTick calls.
type Director struct {
	cfg Config

	scorer      *scoring.Scorer
	tracker     *thread.Tracker
	selector    *focus.Selector
	commentator *commentary.Generator

	logger *slog.Logger

	currentTick         int64
	currentFocusThread  string
	currentFocusAgent   string
	highlightedEventIDs map[string]struct{}
}

// NewWithDefaults constructs a Director using DefaultConfig.
func NewWithDefaults(logger *slog.Logger) *Director {
	d, err := New(DefaultConfig(), logger)
	if err != nil {
		// DefaultConfig is constructed to always pass Validate; a failure
		// here means DefaultConfig itself regressed.
		panic(err)
	}
	return d
}

// New constructs a Director from an explicit Config, validating it first.
func New(cfg Config, logger *slog.Logger) (*Director, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Director{
		cfg:                 cfg,
		scorer:              scoring.New(cfg.EventWeights, logger),
		tracker:             thread.New(cfg.Thread, logger),
		selector:            focus.New(cfg.Focus, logger),
		commentator:         commentary.New(cfg.Commentary, commentary.DefaultTemplates(), logger),
		logger:              logger,
		highlightedEventIDs: make(map[string]struct{}),
	}, nil
}

// WithTemplates swaps the commentary generator's template table — used by
// callers that load templates.yaml separately from the rest of Config.
func (d *Director) WithTemplates(templates commentary.Templates) *Director {
	d.commentator = commentary.New(d.cfg.Commentary, templates, d.logger)
	return d
}

// CurrentTick reports the tick of the most recently processed call.
func (d *Director) CurrentTick() int64 { return d.currentTick }

// ActiveThreadCount reports the number of threads currently in the active
// status.
func (d *Director) ActiveThreadCount() int { return len(d.tracker.ActiveThreads()) }

// TrackedBetrayalCount reports the number of betrayals the commentary
// generator is still watching for dramatic irony.
func (d *Director) TrackedBetrayalCount() int { return d.commentator.TrackedBetrayalCount() }

// Threads returns every thread the tracker currently holds, concluded or
// not. It copies the tracker's internal state out by value, so callers
// (notably the MCP introspection server) can read it without a reference
// into the Director's own memory.
func (d *Director) Threads() []thread.Thread { return d.tracker.All() }

// ProcessTick runs one full tick of the pipeline and returns its output.
// Idempotent only when both inputs and prior internal state are identical
// across calls (spec §4.6).
func (d *Director) ProcessTick(events []event.Event, tensions []event.Tension, snapshot event.WorldSnapshot) (output.DirectorOutput, error) {
	tick := snapshot.Timestamp.Tick

	scoreCtx := scoring.NewContext(d.trackedAgents(), d.activeTensionEventIDs(tensions))
	scored := d.scorer.ScoreBatch(events, scoreCtx)

	d.tracker.Update(tensions, tick)

	result := d.selector.Select(tensions, scored, d.tracker, snapshot, d.currentFocusThread, tick)
	d.currentFocusThread = result.FocusThreadID
	d.currentFocusAgent = result.Instruction.Mode.AgentID

	commentaryQueue := d.commentator.Generate(tick, scored, tensions, snapshot, d.currentFocusAgent)

	highlights := d.markHighlights(tick, scored)

	d.currentTick = tick

	return output.DirectorOutput{
		GeneratedAtTick: tick,
		CameraScript:    []output.CameraInstruction{result.Instruction},
		CommentaryQueue: commentaryQueue,
		Highlights:      highlights,
	}, nil
}

// trackedAgents is the current focus thread's agent set, if any — the
// Director Context's "currently-tracked agents" (spec §3).
func (d *Director) trackedAgents() []string {
	if d.currentFocusThread == "" {
		return nil
	}
	th, ok := d.tracker.Get(d.currentFocusThread)
	if !ok {
		return nil
	}
	return th.AgentIDs
}

// activeTensionEventIDs is the union of trigger-event ids belonging to
// currently active tensions — the Director Context's "event-ids belonging
// to active tensions" (spec §3).
func (d *Director) activeTensionEventIDs(tensions []event.Tension) []string {
	var ids []string
	for _, tn := range tensions {
		if !tn.Status.IsActive() {
			continue
		}
		ids = append(ids, tn.TriggerEvents...)
	}
	return ids
}

// markHighlights raises a highlight for every scored event at or above
// min_highlight_score, skipping events already highlighted in a prior tick
// (the Director's own event-id set, per spec §4.6).
func (d *Director) markHighlights(tick int64, scored []scoring.Scored) []output.HighlightMarker {
	if !d.cfg.EnableHighlights {
		return nil
	}
	var highlights []output.HighlightMarker
	for _, s := range scored {
		if s.Score < d.cfg.MinHighlightScore {
			continue
		}
		if _, already := d.highlightedEventIDs[s.Event.EventID]; already {
			continue
		}
		d.highlightedEventIDs[s.Event.EventID] = struct{}{}
		highlights = append(highlights, output.NewHighlight(
			output.HighlightID(tick, s.Event.EventID),
			s.Event.EventID,
			string(s.Event.EventType),
			s.Score,
			tick,
			d.cfg.ForesightTicks,
		))
	}
	return highlights
}
