// Package focus implements the Focus Selector component (spec §4.3): given
// scored events, active tensions, and thread state, it picks exactly one
// camera instruction per tick.
package focus

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/kestrelworks/director/internal/director/event"
	"github.com/kestrelworks/director/internal/director/output"
	"github.com/kestrelworks/director/internal/director/scoring"
	"github.com/kestrelworks/director/internal/director/thread"
)

// minTensionWeightForFocus is the literal threshold from spec §4.3 step 3,
// distinct from (and coincidentally equal in default value to) the
// configurable MinEventScore.
const minTensionWeightForFocus = 0.2

// DefaultCameraMode is the closed set of overview fallback strategies.
type DefaultCameraMode string

const (
	DefaultModeOverview     DefaultCameraMode = "overview"
	DefaultModeLocationCycle DefaultCameraMode = "location_cycle"
	DefaultModeHighActivity  DefaultCameraMode = "high_activity"
)

// Config holds the Focus Selector's tunables (spec §6's focus.* options).
type Config struct {
	MinTensionSeverity    float64
	MaxConcurrentThreads  int
	FatigueMultiplier     float64
	MinEventScore         float64
	FocusContinuityBoost  float64
	DefaultCameraMode     DefaultCameraMode
}

// DefaultConfig reproduces the spec's recommended defaults.
func DefaultConfig() Config {
	return Config{
		MinTensionSeverity:   0.3,
		MaxConcurrentThreads: 3,
		FatigueMultiplier:    0.5,
		MinEventScore:        0.2,
		FocusContinuityBoost: 1.2,
		DefaultCameraMode:    DefaultModeOverview,
	}
}

// Selector is the Focus Selector component.
type Selector struct {
	cfg           Config
	logger        *slog.Logger
	locationCycle int
}

// New constructs a Selector.
func New(cfg Config, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{cfg: cfg, logger: logger}
}

// Result is the outcome of a tick's focus selection, carrying the
// instruction plus the id of the thread or event that won focus. Thread
// focus-time is already recorded on the tracker by Select.
type Result struct {
	Instruction     output.CameraInstruction
	FocusThreadID   string
	FocusedEventID  string
}

type tensionCandidate struct {
	tension  event.Tension
	threadID string
	fatigued bool
	weight   float64
}

func statusFactor(s event.Status) float64 {
	switch s {
	case event.StatusEscalating, event.StatusCritical, event.StatusClimax:
		return 1.0
	case event.StatusEmerging:
		return 0.7
	case event.StatusResolving:
		return 0.4
	default:
		return 0.0
	}
}

func zoomForIntensity(v float64) output.Zoom {
	switch {
	case v >= 0.8:
		return output.ZoomExtreme
	case v >= 0.6:
		return output.ZoomClose
	case v >= 0.4:
		return output.ZoomMedium
	case v >= 0.2:
		return output.ZoomWide
	default:
		return output.ZoomRegional
	}
}

func pacingForTension(t event.Tension) output.Pacing {
	switch {
	case t.Status == event.StatusCritical || t.Status == event.StatusClimax:
		return output.PacingClimactic
	case t.Severity >= 0.7:
		return output.PacingUrgent
	case t.Status == event.StatusEmerging:
		return output.PacingSlow
	default:
		return output.PacingNormal
	}
}

func pacingForEvent(score float64) output.Pacing {
	if score >= 0.7 {
		return output.PacingUrgent
	}
	return output.PacingNormal
}

// Select runs the selection algorithm for one tick.
func (s *Selector) Select(
	tensions []event.Tension,
	scoredEvents []scoring.Scored,
	tracker *thread.Tracker,
	snapshot event.WorldSnapshot,
	currentFocusThreadID string,
	currentTick int64,
) Result {
	candidates := s.buildCandidates(tensions, tracker, currentFocusThreadID)

	best, ok := bestCandidate(candidates)
	if ok && best.weight >= minTensionWeightForFocus {
		return s.selectTension(best, tracker, currentTick)
	}

	if ev, ok := bestEvent(scoredEvents, s.cfg.MinEventScore); ok {
		return s.selectEvent(ev, currentTick)
	}

	return s.selectOverview(snapshot, currentTick)
}

// buildCandidates filters tensions to the severity-eligible, non-fatigued
// (or critical-enough) subset, caps it to MaxConcurrentThreads most severe
// (spec §6's focus.max_concurrent_threads — the algorithm of §4.3 itself
// doesn't bound candidate count, so this repo reads it as a pre-filter
// limiting how many tensions are even weighed in a tick), then computes
// each survivor's selection weight.
func (s *Selector) buildCandidates(tensions []event.Tension, tracker *thread.Tracker, currentFocusThreadID string) []tensionCandidate {
	eligible := make([]event.Tension, 0, len(tensions))
	for _, tn := range tensions {
		if !tn.Status.IsActive() {
			continue
		}
		if tn.Severity < s.cfg.MinTensionSeverity {
			continue
		}
		eligible = append(eligible, tn)
	}
	if s.cfg.MaxConcurrentThreads > 0 && len(eligible) > s.cfg.MaxConcurrentThreads {
		sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Severity > eligible[j].Severity })
		eligible = eligible[:s.cfg.MaxConcurrentThreads]
	}

	var candidates []tensionCandidate
	for _, tn := range eligible {
		identity := thread.Identity(tn.TensionID, tn.AgentIDs())
		th, ok := tracker.Get(identity)
		if !ok {
			continue
		}
		fatigued := th.Status == thread.StatusFatigued
		if fatigued && tn.Severity < 0.8 && tn.Status != event.StatusCritical && tn.Status != event.StatusClimax {
			continue
		}

		continuityBoost := 1.0
		if identity == currentFocusThreadID {
			continuityBoost = s.cfg.FocusContinuityBoost
		}
		fatigueMultiplier := 1.0
		if fatigued {
			fatigueMultiplier = s.cfg.FatigueMultiplier
		}
		weight := tn.Severity * tn.Confidence * statusFactor(tn.Status) * continuityBoost * fatigueMultiplier

		candidates = append(candidates, tensionCandidate{
			tension:  tn,
			threadID: identity,
			fatigued: fatigued,
			weight:   weight,
		})
	}
	return candidates
}

func bestCandidate(candidates []tensionCandidate) (tensionCandidate, bool) {
	var best tensionCandidate
	found := false
	for _, c := range candidates {
		if !found || c.weight > best.weight {
			best = c
			found = true
		}
	}
	return best, found
}

func bestEvent(scored []scoring.Scored, minScore float64) (scoring.Scored, bool) {
	var best scoring.Scored
	found := false
	for _, s := range scored {
		if s.Score < minScore {
			continue
		}
		if !found || s.Score > best.Score {
			best = s
			found = true
		}
	}
	return best, found
}

func (s *Selector) selectTension(c tensionCandidate, tracker *thread.Tracker, currentTick int64) Result {
	tracker.MarkFocused(c.threadID, currentTick)
	tensionID := c.tension.TensionID

	mode := cameraModeForTension(c.tension)
	reason := fmt.Sprintf("tension %s (%s) at severity %.2f", c.tension.TensionID, c.tension.TensionType, c.tension.Severity)

	return Result{
		Instruction: output.CameraInstruction{
			InstructionID: output.CameraInstructionID(currentTick),
			Timestamp:     currentTick,
			Mode:          mode,
			Pacing:        pacingForTension(c.tension),
			Reason:        reason,
			TensionID:     &tensionID,
		},
		FocusThreadID: c.threadID,
	}
}

func cameraModeForTension(t event.Tension) output.CameraMode {
	zoom := zoomForIntensity(t.Severity)
	if t.RecommendedCameraFocus != nil && *t.RecommendedCameraFocus != "" {
		return output.FollowAgent(*t.RecommendedCameraFocus, zoom)
	}
	agents := t.AgentIDs()
	switch {
	case len(agents) == 1:
		return output.FollowAgent(agents[0], zoom)
	case len(agents) > 1:
		return output.FrameMultiple(agents, true)
	case len(t.KeyLocations) > 0:
		return output.FrameLocation(t.KeyLocations[0], zoom)
	default:
		return output.Overview("")
	}
}

func (s *Selector) selectEvent(ev scoring.Scored, currentTick int64) Result {
	zoom := zoomForIntensity(ev.Score)
	mode := output.FollowAgent(ev.Event.Actors.Primary.AgentID, zoom)
	reason := fmt.Sprintf("event %s (%s) scored %.2f", ev.Event.EventID, ev.Event.EventType, ev.Score)

	return Result{
		Instruction: output.CameraInstruction{
			InstructionID: output.CameraInstructionID(currentTick),
			Timestamp:     currentTick,
			Mode:          mode,
			Pacing:        pacingForEvent(ev.Score),
			Reason:        reason,
		},
		FocusedEventID: ev.Event.EventID,
	}
}

func (s *Selector) selectOverview(snapshot event.WorldSnapshot, currentTick int64) Result {
	mode, reason := s.overviewMode(snapshot)
	return Result{
		Instruction: output.CameraInstruction{
			InstructionID: output.CameraInstructionID(currentTick),
			Timestamp:     currentTick,
			Mode:          mode,
			Pacing:        output.PacingNormal,
			Reason:        reason,
		},
	}
}

func (s *Selector) overviewMode(snapshot event.WorldSnapshot) (output.CameraMode, string) {
	switch s.cfg.DefaultCameraMode {
	case DefaultModeLocationCycle:
		locations := distinctLocations(snapshot)
		if len(locations) == 0 {
			return output.Overview(""), "no qualifying tension or event this tick"
		}
		loc := locations[s.locationCycle%len(locations)]
		s.locationCycle++
		return output.FrameLocation(loc, output.ZoomWide), "cycling through active locations"
	case DefaultModeHighActivity:
		loc, count := busiestLocation(snapshot)
		if count == 0 {
			return output.Overview(""), "no qualifying tension or event this tick"
		}
		return output.FrameLocation(loc, output.ZoomMedium), "framing the most populated location"
	default:
		return output.Overview(""), "no qualifying tension or event this tick"
	}
}

func distinctLocations(snapshot event.WorldSnapshot) []string {
	seen := make(map[string]struct{})
	var locs []string
	for _, a := range snapshot.Agents {
		if a.Location == "" {
			continue
		}
		if _, ok := seen[a.Location]; ok {
			continue
		}
		seen[a.Location] = struct{}{}
		locs = append(locs, a.Location)
	}
	return locs
}

func busiestLocation(snapshot event.WorldSnapshot) (string, int) {
	counts := make(map[string]int)
	for _, a := range snapshot.Agents {
		if a.Location == "" || !a.Alive {
			continue
		}
		counts[a.Location]++
	}
	best := ""
	bestCount := 0
	for loc, count := range counts {
		if count > bestCount {
			best, bestCount = loc, count
		}
	}
	return best, bestCount
}
