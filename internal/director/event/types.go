// Package event defines the data contracts the Director consumes: simulation
// events, narrative tensions, and world snapshots, per the external interface
// shapes the upstream simulator produces.
package event

import "encoding/json"

// Type is the closed set of event kinds the simulator emits.
type Type string

const (
	TypeMovement      Type = "movement"
	TypeCommunication Type = "communication"
	TypeBetrayal      Type = "betrayal"
	TypeLoyalty       Type = "loyalty"
	TypeConflict      Type = "conflict"
	TypeCooperation   Type = "cooperation"
	TypeFaction       Type = "faction"
	TypeArchive       Type = "archive"
	TypeRitual        Type = "ritual"
	TypeResource      Type = "resource"
	TypeDeath         Type = "death"
	TypeBirth         Type = "birth"
)

// Timestamp pairs a logical simulation tick with an in-world date string.
type Timestamp struct {
	Tick int64  `json:"tick"`
	Date string `json:"date,omitempty"`
}

// ActorSnapshot is a flat, point-in-time view of an agent as it participated
// in an event. It carries no relationship or need data — that lives only in
// the world snapshot.
type ActorSnapshot struct {
	AgentID  string `json:"agent_id"`
	Name     string `json:"name,omitempty"`
	Faction  string `json:"faction,omitempty"`
	Role     string `json:"role,omitempty"`
	Location string `json:"location,omitempty"`
}

// AffectedActor is a bystander or secondary party touched by an event without
// being its primary or secondary participant.
type AffectedActor struct {
	ActorSnapshot
	RelationshipToPrimary string `json:"relationship_to_primary,omitempty"`
	Attended              bool   `json:"attended,omitempty"`
	Reason                string `json:"reason,omitempty"`
}

// Actors holds the primary participant, an optional secondary participant,
// and any affected bystanders for an event.
type Actors struct {
	Primary   ActorSnapshot   `json:"primary"`
	Secondary *ActorSnapshot  `json:"secondary,omitempty"`
	Affected  []AffectedActor `json:"affected,omitempty"`
}

// AllAgentIDs returns every agent id touched by the event's actors, primary
// first, in a stable order.
func (a Actors) AllAgentIDs() []string {
	ids := make([]string, 0, 2+len(a.Affected))
	ids = append(ids, a.Primary.AgentID)
	if a.Secondary != nil {
		ids = append(ids, a.Secondary.AgentID)
	}
	for _, aff := range a.Affected {
		ids = append(ids, aff.AgentID)
	}
	return ids
}

// Event is a single discrete occurrence in the simulation, scored and
// consumed by the Director exactly once, in the tick it arrives.
type Event struct {
	EventID         string          `json:"event_id"`
	Timestamp       Timestamp       `json:"timestamp"`
	EventType       Type            `json:"event_type"`
	Subtype         string          `json:"subtype,omitempty"`
	Actors          Actors          `json:"actors"`
	Context         map[string]any  `json:"context,omitempty"`
	Outcome         json.RawMessage `json:"outcome,omitempty"`
	DramaTags       []string        `json:"drama_tags,omitempty"`
	DramaScore      float64         `json:"drama_score,omitempty"`
	ConnectedEvents []string        `json:"connected_events,omitempty"`
}

// Tick is a convenience accessor used throughout the pipeline for ordering
// and fatigue-threshold arithmetic.
func (e Event) Tick() int64 { return e.Timestamp.Tick }

// TensionType is the closed set of dramatic-situation kinds the upstream
// tension detector can report.
type TensionType string

const (
	TensionBrewingBetrayal   TensionType = "brewing_betrayal"
	TensionSuccession        TensionType = "succession"
	TensionResourceConflict  TensionType = "resource_conflict"
	TensionForbiddenAlliance TensionType = "forbidden_alliance"
	TensionRevengeArc        TensionType = "revenge_arc"
	TensionRisingPower       TensionType = "rising_power"
	TensionFactionFracture   TensionType = "faction_fracture"
	TensionExternalThreat    TensionType = "external_threat"
	TensionSecretExposed     TensionType = "secret_exposed"
	TensionRitualDisruption  TensionType = "ritual_disruption"
)

// Status is the closed set of lifecycle states a Tension passes through.
type Status string

const (
	StatusEmerging   Status = "emerging"
	StatusEscalating Status = "escalating"
	StatusCritical   Status = "critical"
	StatusClimax     Status = "climax"
	StatusResolving  Status = "resolving"
	StatusResolved   Status = "resolved"
	StatusDormant    Status = "dormant"
)

// IsActive reports whether a tension in this status still competes for
// camera focus.
func (s Status) IsActive() bool {
	switch s {
	case StatusResolved, StatusDormant:
		return false
	default:
		return true
	}
}

// KeyAgent names an agent's part in a tension.
type KeyAgent struct {
	AgentID       string `json:"agent_id"`
	RoleInTension string `json:"role_in_tension,omitempty"`
	Trajectory    string `json:"trajectory,omitempty"`
}

// Tension is a persistent, externally-owned dramatic situation the Director
// reads but never mutates.
type Tension struct {
	TensionID             string      `json:"tension_id"`
	DetectedAtTick        int64       `json:"detected_at_tick"`
	LastUpdatedTick       int64       `json:"last_updated_tick"`
	Status                Status      `json:"status"`
	TensionType           TensionType `json:"tension_type"`
	Severity              float64     `json:"severity"`
	Confidence            float64     `json:"confidence"`
	Summary               string      `json:"summary,omitempty"`
	KeyAgents             []KeyAgent  `json:"key_agents,omitempty"`
	KeyLocations          []string    `json:"key_locations,omitempty"`
	TriggerEvents         []string    `json:"trigger_events,omitempty"`
	PredictedOutcomes     []string    `json:"predicted_outcomes,omitempty"`
	NarrativeHooks        []string    `json:"narrative_hooks,omitempty"`
	RecommendedCameraFocus *string    `json:"recommended_camera_focus,omitempty"`
	ConnectedTensions     []string    `json:"connected_tensions,omitempty"`
}

// AgentIDs returns the deduplicated key agent ids in key-agent order — the
// identity component the thread tracker keys threads on (thread.Identity
// sorts them).
func (t Tension) AgentIDs() []string {
	seen := make(map[string]struct{}, len(t.KeyAgents))
	ids := make([]string, 0, len(t.KeyAgents))
	for _, a := range t.KeyAgents {
		if _, ok := seen[a.AgentID]; ok {
			continue
		}
		seen[a.AgentID] = struct{}{}
		ids = append(ids, a.AgentID)
	}
	return ids
}

// AgentSnapshot is a world-snapshot row describing one living or dead agent.
type AgentSnapshot struct {
	AgentID  string `json:"agent_id"`
	Name     string `json:"name,omitempty"`
	Faction  string `json:"faction,omitempty"`
	Role     string `json:"role,omitempty"`
	Location string `json:"location,omitempty"`
	Alive    bool   `json:"alive"`
}

// Relationship is one directed pairwise trust entry in the snapshot's
// relationship table.
type Relationship struct {
	Reliability         float64 `json:"reliability"`
	Alignment           float64 `json:"alignment"`
	Capability          float64 `json:"capability"`
	LastInteractionTick int64   `json:"last_interaction_tick,omitempty"`
	MemoryCount         int     `json:"memory_count,omitempty"`
}

// WorldSnapshot is the periodic, read-only world state the Director
// consults for commentary (agent names, faction membership, relationship
// trust). Everything beyond agents/relationships/timestamp is decoded but
// never read by the Director.
type WorldSnapshot struct {
	SnapshotID      string                              `json:"snapshot_id,omitempty"`
	Timestamp       Timestamp                           `json:"timestamp"`
	TriggeredBy     string                              `json:"triggered_by,omitempty"`
	World           map[string]any                      `json:"world,omitempty"`
	Factions        map[string]any                      `json:"factions,omitempty"`
	Agents          []AgentSnapshot                     `json:"agents,omitempty"`
	Relationships   map[string]map[string]Relationship  `json:"relationships,omitempty"`
	Locations       map[string]any                      `json:"locations,omitempty"`
	ComputedMetrics map[string]any                       `json:"computed_metrics,omitempty"`
}

// FindAgent looks up an agent by id, returning false if absent.
func (w WorldSnapshot) FindAgent(agentID string) (AgentSnapshot, bool) {
	for _, a := range w.Agents {
		if a.AgentID == agentID {
			return a, true
		}
	}
	return AgentSnapshot{}, false
}

// Relationship returns the directed relationship from one agent to another,
// if the snapshot reports one.
func (w WorldSnapshot) Relationship(from, to string) (Relationship, bool) {
	byTarget, ok := w.Relationships[from]
	if !ok {
		return Relationship{}, false
	}
	rel, ok := byTarget[to]
	return rel, ok
}
