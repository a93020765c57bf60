// Package commentary implements the Commentary Generator component (spec
// §4.4): it turns this tick's scored events, tensions, and focus into
// queued captions, teasers, irony lines, reminders, and narrator asides.
package commentary

import (
	"hash/fnv"
	"log/slog"
	"math"
	"sort"

	"github.com/kestrelworks/director/internal/director/event"
	"github.com/kestrelworks/director/internal/director/output"
	"github.com/kestrelworks/director/internal/director/scoring"
)

// Fixed priorities for the kinds whose priority isn't drawn from the
// triggering event/tension's own score.
const (
	priorityDramaticIrony   = 0.9
	priorityContextReminder = 0.2
	priorityNarratorVoice   = 0.8

	ironyReliabilityThreshold = 0.5
)

// Config holds the Commentary Generator's tunables (spec §6's commentary.*
// options).
type Config struct {
	MaxQueueSize             int
	MinDramaForCaption       float64
	BaseDisplayDurationTicks int64
	TicksPerCharacter        float64
	CooldownTicks            int64
	EnableDramaticIrony      bool
	EnableTensionTeasers     bool
	EnableContextReminders   bool
}

// DefaultConfig reproduces the spec's recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxQueueSize:             5,
		MinDramaForCaption:       0.3,
		BaseDisplayDurationTicks: 100,
		TicksPerCharacter:        1.0,
		CooldownTicks:            500,
		EnableDramaticIrony:      true,
		EnableTensionTeasers:     true,
		EnableContextReminders:   true,
	}
}

// betrayalRecord is a single entry in the generator's persistent betrayal
// ledger (spec §4.4's "record (betrayer, victim-faction)").
type betrayalRecord struct {
	Betrayer      string
	VictimFaction string
}

// Generator is the Commentary Generator component. It owns the persistent
// queue, per-kind cooldown clocks, and the betrayal ledger across ticks.
type Generator struct {
	cfg       Config
	templates Templates
	logger    *slog.Logger

	queue     []output.CommentaryItem
	cooldowns map[string]int64
	ledger    []betrayalRecord
	seq       int
}

// New constructs a Generator from explicit config and templates.
func New(cfg Config, templates Templates, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		cfg:       cfg,
		templates: templates,
		logger:    logger,
		cooldowns: make(map[string]int64),
	}
}

// NewWithDefaults constructs a Generator using DefaultConfig and
// DefaultTemplates.
func NewWithDefaults(logger *slog.Logger) *Generator {
	return New(DefaultConfig(), DefaultTemplates(), logger)
}

// TrackedBetrayalCount reports the number of betrayals the generator is
// still watching for dramatic irony, backing the Director's
// tracked_betrayal_count introspection.
func (g *Generator) TrackedBetrayalCount() int {
	return len(g.ledger)
}

// Generate appends this tick's commentary to the persistent queue, re-sorts
// it by descending priority, truncates to MaxQueueSize on overflow, and
// returns the resulting queue contents — the full per-tick commentary_queue
// of spec §3's Director Output.
func (g *Generator) Generate(
	currentTick int64,
	scored []scoring.Scored,
	tensions []event.Tension,
	snapshot event.WorldSnapshot,
	focusAgentID string,
) []output.CommentaryItem {
	g.seq = 0

	g.generateEventCaptions(currentTick, scored)
	if g.cfg.EnableTensionTeasers {
		g.generateTensionTeasers(currentTick, tensions)
	}
	g.recordBetrayals(currentTick, scored)
	if g.cfg.EnableDramaticIrony {
		g.generateDramaticIrony(currentTick, scored, snapshot, focusAgentID)
	}
	if g.cfg.EnableContextReminders && focusAgentID != "" {
		g.generateContextReminder(currentTick, snapshot, focusAgentID)
	}
	g.generateNarratorVoice(currentTick, scored)

	sort.SliceStable(g.queue, func(i, j int) bool {
		return g.queue[i].Priority > g.queue[j].Priority
	})
	if len(g.queue) > g.cfg.MaxQueueSize {
		g.queue = g.queue[:g.cfg.MaxQueueSize]
	}

	out := make([]output.CommentaryItem, len(g.queue))
	copy(out, g.queue)
	return out
}

func (g *Generator) nextID(tick int64) string {
	id := output.CommentaryItemID(tick, g.seq)
	g.seq++
	return id
}

func (g *Generator) displayDuration(content string) int64 {
	chars := float64(len([]rune(content)))
	return g.cfg.BaseDisplayDurationTicks + int64(math.Ceil(chars*g.cfg.TicksPerCharacter))
}

func (g *Generator) enqueue(tick int64, kind output.CommentaryKind, content string, priority float64, relatedAgents []string, tensionID *string) {
	g.queue = append(g.queue, output.CommentaryItem{
		ID:                   g.nextID(tick),
		Timestamp:            tick,
		Kind:                 kind,
		Content:              content,
		DisplayDurationTicks: g.displayDuration(content),
		Priority:             priority,
		RelatedAgentIDs:      relatedAgents,
		RelatedTensionID:     tensionID,
	})
}

func (g *Generator) onCooldown(key string, currentTick int64) bool {
	last, ok := g.cooldowns[key]
	if !ok {
		return false
	}
	return currentTick-last < g.cfg.CooldownTicks
}

func (g *Generator) markCooldown(key string, currentTick int64) {
	g.cooldowns[key] = currentTick
}

// generateEventCaptions implements spec §4.4's Event Caption kind: the
// trigger is the event's own precomputed drama_score, not the scorer's
// computed interest score — the two are distinct quantities (§3 vs §4.1).
func (g *Generator) generateEventCaptions(currentTick int64, scored []scoring.Scored) {
	for _, s := range scored {
		e := s.Event
		if e.DramaScore < g.cfg.MinDramaForCaption {
			continue
		}
		specificKey, generalKey := eventCaptionKey(e.EventType, e.Subtype)
		candidates, ok := g.templates.EventCaptions[specificKey]
		if !ok {
			candidates, ok = g.templates.EventCaptions[generalKey]
		}
		if !ok || len(candidates) == 0 {
			continue
		}
		tmpl := pickTemplate(candidates, e.EventID)
		values := eventPlaceholderValues(e)
		content, ok := fill(tmpl, values)
		if !ok {
			continue
		}
		g.enqueue(currentTick, output.KindEventCaption, content, e.DramaScore, e.Actors.AllAgentIDs(), nil)
	}
}

// generateTensionTeasers implements spec §4.4's Tension Teaser kind.
func (g *Generator) generateTensionTeasers(currentTick int64, tensions []event.Tension) {
	for _, tn := range tensions {
		if !tn.Status.IsActive() {
			continue
		}
		key := "teaser|" + tn.TensionID
		if g.onCooldown(key, currentTick) {
			continue
		}
		candidates, ok := g.templates.TensionTeasers[tn.TensionType]
		if !ok || len(candidates) == 0 {
			continue
		}
		tmpl := pickTemplate(candidates, tn.TensionID)
		values := map[string]string{}
		if len(tn.KeyLocations) > 0 {
			values["location"] = tn.KeyLocations[0]
		}
		content, ok := fill(tmpl, values)
		if !ok {
			continue
		}
		tensionID := tn.TensionID
		g.enqueue(currentTick, output.KindTensionTeaser, content, tn.Severity, tn.AgentIDs(), &tensionID)
		g.markCooldown(key, currentTick)
	}
}

// recordBetrayals appends a (betrayer, victim-faction) entry to the ledger
// for every betrayal event scored this tick, per spec §4.4's Dramatic Irony
// trigger: "if a betrayal event is observed, record (betrayer,
// victim-faction)".
func (g *Generator) recordBetrayals(currentTick int64, scored []scoring.Scored) {
	for _, s := range scored {
		e := s.Event
		if e.EventType != event.TypeBetrayal {
			continue
		}
		g.ledger = append(g.ledger, betrayalRecord{
			Betrayer:      e.Actors.Primary.AgentID,
			VictimFaction: victimFaction(e),
		})
	}
}

// victimFaction resolves the betrayed party's faction for ledger purposes:
// the secondary actor's faction if one is named, else the first affected
// actor's faction, else the betrayer's own faction as a last resort.
func victimFaction(e event.Event) string {
	if e.Actors.Secondary != nil && e.Actors.Secondary.Faction != "" {
		return e.Actors.Secondary.Faction
	}
	for _, aff := range e.Actors.Affected {
		if aff.Faction != "" {
			return aff.Faction
		}
	}
	return e.Actors.Primary.Faction
}

// generateDramaticIrony implements spec §4.4's Dramatic Irony kind: for
// every ledger entry, any agent in the current scene who still trusts the
// betrayer gets an irony line, cooldown-gated per (truster, betrayer) pair.
func (g *Generator) generateDramaticIrony(currentTick int64, scored []scoring.Scored, snapshot event.WorldSnapshot, focusAgentID string) {
	scene := currentScene(scored, focusAgentID)
	for _, rec := range g.ledger {
		for agentID := range scene {
			if agentID == rec.Betrayer {
				continue
			}
			rel, ok := snapshot.Relationship(agentID, rec.Betrayer)
			if !ok || rel.Reliability < ironyReliabilityThreshold {
				continue
			}
			key := "irony|" + agentID + "|" + rec.Betrayer
			if g.onCooldown(key, currentTick) {
				continue
			}
			if len(g.templates.DramaticIrony) == 0 {
				continue
			}
			tmpl := pickTemplate(g.templates.DramaticIrony, key)
			values := map[string]string{
				"victim_name":   agentName(snapshot, agentID),
				"betrayer_name": agentName(snapshot, rec.Betrayer),
			}
			content, ok := fill(tmpl, values)
			if !ok {
				continue
			}
			g.enqueue(currentTick, output.KindDramaticIrony, content, priorityDramaticIrony, []string{agentID, rec.Betrayer}, nil)
			g.markCooldown(key, currentTick)
		}
	}
}

// currentScene is the union of this tick's event actor ids and the agent
// currently in focus — the population a dramatic irony line can plausibly
// reach.
func currentScene(scored []scoring.Scored, focusAgentID string) map[string]struct{} {
	scene := make(map[string]struct{})
	for _, s := range scored {
		for _, id := range s.Event.Actors.AllAgentIDs() {
			scene[id] = struct{}{}
		}
	}
	if focusAgentID != "" {
		scene[focusAgentID] = struct{}{}
	}
	return scene
}

// generateContextReminder implements spec §4.4's Context Reminder kind.
func (g *Generator) generateContextReminder(currentTick int64, snapshot event.WorldSnapshot, focusAgentID string) {
	key := "reminder|" + focusAgentID
	if g.onCooldown(key, currentTick) {
		return
	}
	if len(g.templates.ContextReminder) == 0 {
		return
	}
	tmpl := pickTemplate(g.templates.ContextReminder, key)
	values := map[string]string{"focus_name": agentName(snapshot, focusAgentID)}
	content, ok := fill(tmpl, values)
	if !ok {
		return
	}
	g.enqueue(currentTick, output.KindContextReminder, content, priorityContextReminder, []string{focusAgentID}, nil)
	g.markCooldown(key, currentTick)
}

// generateNarratorVoice implements spec §4.4's Narrator Voice kind,
// reserved for rituals, deaths, and faction/loyalty defections.
func (g *Generator) generateNarratorVoice(currentTick int64, scored []scoring.Scored) {
	for _, s := range scored {
		e := s.Event
		if !isNarratorWorthy(e) {
			continue
		}
		candidates, ok := g.templates.NarratorVoice[string(e.EventType)]
		if !ok || len(candidates) == 0 {
			continue
		}
		tmpl := pickTemplate(candidates, e.EventID)
		values := eventPlaceholderValues(e)
		content, ok := fill(tmpl, values)
		if !ok {
			continue
		}
		g.enqueue(currentTick, output.KindNarratorVoice, content, priorityNarratorVoice, e.Actors.AllAgentIDs(), nil)
	}
}

func isNarratorWorthy(e event.Event) bool {
	switch e.EventType {
	case event.TypeRitual, event.TypeDeath:
		return true
	case event.TypeFaction, event.TypeLoyalty:
		return e.Subtype == "defection"
	default:
		return false
	}
}

func agentName(snapshot event.WorldSnapshot, agentID string) string {
	if a, ok := snapshot.FindAgent(agentID); ok && a.Name != "" {
		return a.Name
	}
	return agentID
}

// eventPlaceholderValues builds the values map for event-driven templates
// (captions and narrator voice), omitting keys the event has no data for so
// fill's placeholder-closure check correctly rejects templates that need
// them.
func eventPlaceholderValues(e event.Event) map[string]string {
	values := map[string]string{}
	if e.Actors.Primary.Name != "" {
		values["primary_name"] = e.Actors.Primary.Name
	} else if e.Actors.Primary.AgentID != "" {
		values["primary_name"] = e.Actors.Primary.AgentID
	}
	if e.Actors.Secondary != nil {
		if e.Actors.Secondary.Name != "" {
			values["secondary_name"] = e.Actors.Secondary.Name
		} else {
			values["secondary_name"] = e.Actors.Secondary.AgentID
		}
	}
	if e.Actors.Primary.Location != "" {
		values["location"] = e.Actors.Primary.Location
	}
	if e.Actors.Primary.Faction != "" {
		values["faction"] = e.Actors.Primary.Faction
	}
	return values
}

// pickTemplate deterministically selects among candidates keyed on key, so
// repeated runs over identical input reproduce identical template choices
// (spec §9's determinism requirement) without needing a seeded RNG thread
// through every call site.
func pickTemplate(candidates []string, key string) string {
	if len(candidates) == 1 {
		return candidates[0]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return candidates[h.Sum32()%uint32(len(candidates))]
}
