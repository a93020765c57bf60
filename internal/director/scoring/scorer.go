// Package scoring implements the Director's event scorer: a pure function
// from (event, context) to a scalar dramatic-interest score in [0, 1.5].
package scoring

import (
	"log/slog"
	"math"

	"github.com/kestrelworks/director/internal/director/event"
)

// scoreCap bounds every score the scorer produces; boosts may exceed 1.0 but
// never explode.
const scoreCap = 1.5

const defaultBaseScore = 0.1

// Weights holds the configurable scoring tables. A kind missing from
// BaseScores scores defaultBaseScore. The boosts are used as given, so a
// zero-value Weights scores any tracked or tension-linked event at 0.
type Weights struct {
	BaseScores        map[event.Type]float64
	SubtypeModifiers   map[string]float64
	DramaTagScores     map[string]float64
	TrackedAgentBoost  float64
	TensionEventBoost  float64
}

// DefaultWeights reproduces the spec's recommended default weight tables.
func DefaultWeights() Weights {
	return Weights{
		BaseScores: map[event.Type]float64{
			event.TypeBetrayal:      0.9,
			event.TypeDeath:         0.85,
			event.TypeConflict:      0.7,
			event.TypeFaction:       0.6,
			event.TypeRitual:        0.5,
			event.TypeCooperation:   0.4,
			event.TypeLoyalty:       0.35,
			event.TypeCommunication: 0.3,
			event.TypeBirth:         0.3,
			event.TypeResource:      0.25,
			event.TypeArchive:       0.2,
			event.TypeMovement:      0.1,
		},
		SubtypeModifiers: map[string]float64{},
		DramaTagScores: map[string]float64{
			"faction_critical": 0.3,
			"secret_meeting":   0.25,
			"leader_involved":  0.2,
			"cross_faction":    0.15,
			"betrayal":         0.15,
			"revenge":          0.15,
			"power_struggle":   0.15,
			"death":            0.1,
			"winter_crisis":    0.1,
		},
		TrackedAgentBoost: 1.5,
		TensionEventBoost: 2.0,
	}
}

// Context is the per-tick scoring context: which agents are currently being
// tracked (e.g. the focused thread's agent set) and which event ids belong
// to currently-active tensions.
type Context struct {
	TrackedAgents      map[string]struct{}
	ActiveTensionEvents map[string]struct{}
}

// NewContext builds a Context from plain slices.
func NewContext(trackedAgents, activeTensionEvents []string) Context {
	c := Context{
		TrackedAgents:       make(map[string]struct{}, len(trackedAgents)),
		ActiveTensionEvents: make(map[string]struct{}, len(activeTensionEvents)),
	}
	for _, a := range trackedAgents {
		c.TrackedAgents[a] = struct{}{}
	}
	for _, e := range activeTensionEvents {
		c.ActiveTensionEvents[e] = struct{}{}
	}
	return c
}

// Scorer is the Event Scorer component (§4.1). It is pure: it holds only its
// weight tables and never mutates them during scoring.
type Scorer struct {
	weights Weights
	logger  *slog.Logger
}

// New constructs a Scorer from explicit weights.
func New(weights Weights, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{weights: weights, logger: logger}
}

// NewWithDefaults constructs a Scorer using DefaultWeights.
func NewWithDefaults(logger *slog.Logger) *Scorer {
	return New(DefaultWeights(), logger)
}

// Scored pairs an event with its computed score, preserving the identity of
// the original event for downstream consumers.
type Scored struct {
	Event event.Event
	Score float64
}

// Score computes the dramatic-interest score of a single event under ctx.
func (s *Scorer) Score(e event.Event, ctx Context) float64 {
	score := defaultBaseScore
	if base, ok := s.weights.BaseScores[e.EventType]; ok {
		score = base
	}
	if mod, ok := s.weights.SubtypeModifiers[e.Subtype]; ok {
		score *= mod
	}
	for _, tag := range e.DramaTags {
		if add, ok := s.weights.DramaTagScores[tag]; ok {
			score += add
		}
	}
	if s.anyActorTracked(e, ctx) {
		score *= s.weights.TrackedAgentBoost
	}
	if _, ok := ctx.ActiveTensionEvents[e.EventID]; ok {
		score *= s.weights.TensionEventBoost
	}
	return math.Min(score, scoreCap)
}

func (s *Scorer) anyActorTracked(e event.Event, ctx Context) bool {
	for _, id := range e.Actors.AllAgentIDs() {
		if _, ok := ctx.TrackedAgents[id]; ok {
			return true
		}
	}
	return false
}

// ScoreBatch scores every event in order, returning (event, score) pairs in
// the same order they were given — tie-breaks downstream favor the
// first-seen event as a direct consequence of this ordering guarantee.
func (s *Scorer) ScoreBatch(events []event.Event, ctx Context) []Scored {
	scored := make([]Scored, len(events))
	for i, e := range events {
		scored[i] = Scored{Event: e, Score: s.Score(e, ctx)}
	}
	s.logger.Debug("scored events", "count", len(events))
	return scored
}
