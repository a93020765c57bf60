package thread

import (
	"log/slog"

	"github.com/kestrelworks/director/internal/director/event"
)

// Config holds the thresholds the tracker enforces. Field names mirror the
// configuration keys of spec §6, which split fatigue and dormancy/capacity
// across the focus and threads config sections respectively.
type Config struct {
	MinSeverityForThread  float64
	FatigueThresholdTicks int64
	DormantThresholdTicks int64
	MaxThreads            int
}

// DefaultConfig reproduces the spec's recommended defaults for the fields
// the tracker itself enforces.
func DefaultConfig() Config {
	return Config{
		MinSeverityForThread:  0.3,
		FatigueThresholdTicks: 5000,
		DormantThresholdTicks: 5000,
		MaxThreads:            20,
	}
}

// Tracker is the Thread Tracker component. It exclusively owns the set of
// narrative threads for the lifetime of a Director instance.
type Tracker struct {
	cfg     Config
	logger  *slog.Logger
	threads map[string]*Thread
}

// New constructs a Tracker.
func New(cfg Config, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{cfg: cfg, logger: logger, threads: make(map[string]*Thread)}
}

// Update opens, refreshes, fatigues, and dormanizes threads against this
// tick's active tensions. It must run before focus selection, per the
// control-flow ordering of spec §2.
//
// last_activity_tick tracks presence in the tension feed (it drives
// dormancy and tension-resurface reactivation); accumulated focus time and
// thread age track screen-time domination (they drive fatigue). This split
// is this implementation's resolution of the spec's fatigue clause, which
// names a single "last_activity_tick" gap for a condition that would never
// fire for a continuously re-surfacing tension if that same timestamp were
// refreshed every tick purely by the tension's presence.
func (t *Tracker) Update(tensions []event.Tension, currentTick int64) {
	for _, tn := range tensions {
		identity := Identity(tn.TensionID, tn.AgentIDs())
		existing, ok := t.threads[identity]

		if tn.Status == event.StatusResolved {
			if ok {
				existing.Status = StatusConcluded
			}
			continue
		}
		if ok && existing.Status == StatusConcluded {
			continue
		}
		if tn.Severity < t.cfg.MinSeverityForThread {
			continue
		}

		if !ok {
			t.threads[identity] = &Thread{
				ID:               identity,
				TensionID:        tn.TensionID,
				AgentIDs:         tn.AgentIDs(),
				Status:           StatusActive,
				BirthTick:        currentTick,
				LastActivityTick: currentTick,
				Summary:          tn.Summary,
				lastSeenSeverity: tn.Severity,
				lastSeenStatus:   tn.Status,
			}
			continue
		}

		existing.LastActivityTick = currentTick
		existing.lastSeenSeverity = tn.Severity
		existing.lastSeenStatus = tn.Status
		if tn.Summary != "" {
			existing.Summary = tn.Summary
		}
		if existing.Status == StatusDormant {
			existing.Status = StatusActive
		}
	}

	for _, th := range t.threads {
		if th.Status == StatusConcluded {
			continue
		}
		if th.Status != StatusFatigued &&
			currentTick-th.BirthTick >= t.cfg.FatigueThresholdTicks &&
			th.FocusTicks >= t.cfg.FatigueThresholdTicks {
			th.Status = StatusFatigued
		}
		if currentTick-th.LastActivityTick >= t.cfg.DormantThresholdTicks {
			th.Status = StatusDormant
		}
	}

	t.evictOverflow(currentTick)
}

// evictOverflow concludes the lowest-priority non-critical thread whenever
// more than MaxThreads threads are tracked and not yet concluded. Priority
// is severity weighted by recency (severity × 1/(1+gap-since-last-activity)),
// per spec §4.2's "lowest severity × recency" eviction rule.
func (t *Tracker) evictOverflow(currentTick int64) {
	if t.cfg.MaxThreads <= 0 {
		return
	}
	for {
		active := t.nonConcluded()
		if len(active) <= t.cfg.MaxThreads {
			return
		}
		victim := t.lowestPriorityEvictable(active, currentTick)
		if victim == nil {
			t.logger.Warn("thread capacity exceeded but no evictable thread found", "count", len(active), "max", t.cfg.MaxThreads)
			return
		}
		victim.Status = StatusConcluded
	}
}

func (t *Tracker) nonConcluded() []*Thread {
	var out []*Thread
	for _, th := range t.threads {
		if th.Status != StatusConcluded {
			out = append(out, th)
		}
	}
	return out
}

func (t *Tracker) lowestPriorityEvictable(threads []*Thread, currentTick int64) *Thread {
	var worst *Thread
	var worstPriority float64
	for _, th := range threads {
		if th.lastSeenStatus == event.StatusCritical || th.lastSeenStatus == event.StatusClimax {
			continue
		}
		priority := th.lastSeenSeverity * recencyFactor(th, currentTick)
		if worst == nil || priority < worstPriority {
			worst = th
			worstPriority = priority
		}
	}
	return worst
}

func recencyFactor(th *Thread, currentTick int64) float64 {
	gap := currentTick - th.LastActivityTick
	if gap < 0 {
		gap = 0
	}
	return 1.0 / float64(1+gap)
}

// MarkFocused records that a thread won focus this tick: it re-activates a
// fatigued thread's status (a thread may still be chosen despite its
// fatigue penalty, e.g. when no other candidate qualifies) and increments
// its accumulated focus-time counter.
func (t *Tracker) MarkFocused(threadID string, _ int64) {
	th, ok := t.threads[threadID]
	if !ok {
		return
	}
	th.FocusTicks++
	if th.Status == StatusFatigued {
		th.Status = StatusActive
	}
}

// Get returns the thread tracked under the given identity, if any.
func (t *Tracker) Get(threadID string) (Thread, bool) {
	th, ok := t.threads[threadID]
	if !ok {
		return Thread{}, false
	}
	return *th, true
}

// All returns every tracked thread, concluded or not, in no particular
// order.
func (t *Tracker) All() []Thread {
	out := make([]Thread, 0, len(t.threads))
	for _, th := range t.threads {
		out = append(out, *th)
	}
	return out
}

// Candidates returns every non-concluded thread, the set Focus Selector
// chooses among.
func (t *Tracker) Candidates() []Thread {
	out := make([]Thread, 0, len(t.threads))
	for _, th := range t.threads {
		if th.Status != StatusConcluded {
			out = append(out, *th)
		}
	}
	return out
}

// ActiveThreads returns threads currently in the active status, backing the
// Director's active_thread_count introspection.
func (t *Tracker) ActiveThreads() []Thread {
	out := make([]Thread, 0, len(t.threads))
	for _, th := range t.threads {
		if th.Status == StatusActive {
			out = append(out, *th)
		}
	}
	return out
}

// FocusTime returns the accumulated focus-tick count for a thread.
func (t *Tracker) FocusTime(threadID string) int64 {
	th, ok := t.threads[threadID]
	if !ok {
		return 0
	}
	return th.FocusTicks
}

// IsFatigued reports whether the named thread is currently fatigued.
func (t *Tracker) IsFatigued(threadID string) bool {
	th, ok := t.threads[threadID]
	return ok && th.Status == StatusFatigued
}
