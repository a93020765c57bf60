package commentary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/director/internal/director/event"
	"github.com/kestrelworks/director/internal/director/output"
	"github.com/kestrelworks/director/internal/director/scoring"
)

func betrayalEvent(id, primary, secondary string) scoring.Scored {
	return scoring.Scored{
		Event: event.Event{
			EventID:   id,
			EventType: event.TypeBetrayal,
			DramaScore: 0.8,
			Actors: event.Actors{
				Primary:   event.ActorSnapshot{AgentID: primary, Name: primary, Faction: "north"},
				Secondary: &event.ActorSnapshot{AgentID: secondary, Name: secondary, Faction: "south"},
			},
		},
	}
}

func TestEventCaptionEmittedAboveThreshold(t *testing.T) {
	g := New(DefaultConfig(), DefaultTemplates(), nil)
	scored := []scoring.Scored{betrayalEvent("evt_1", "agent_a", "agent_b")}

	queue := g.Generate(10, scored, nil, event.WorldSnapshot{}, "")

	require.Len(t, queue, 1)
	require.Equal(t, output.KindEventCaption, queue[0].Kind)
	require.Contains(t, queue[0].Content, "agent_a")
}

func TestEventCaptionSkippedBelowThreshold(t *testing.T) {
	g := New(DefaultConfig(), DefaultTemplates(), nil)
	s := betrayalEvent("evt_1", "agent_a", "agent_b")
	s.Event.DramaScore = 0.1

	queue := g.Generate(10, []scoring.Scored{s}, nil, event.WorldSnapshot{}, "")

	require.Empty(t, queue)
}

func TestTensionTeaserRespectsCooldown(t *testing.T) {
	g := New(DefaultConfig(), DefaultTemplates(), nil)
	tn := event.Tension{TensionID: "tens_1", TensionType: event.TensionRisingPower, Status: event.StatusEscalating, Severity: 0.6}

	first := g.Generate(0, nil, []event.Tension{tn}, event.WorldSnapshot{}, "")
	require.Len(t, first, 1)

	second := g.Generate(10, nil, []event.Tension{tn}, event.WorldSnapshot{}, "")
	require.Len(t, second, 1, "cooldown should suppress a second teaser for the same tension this soon")

	// The queue persists across ticks: the tick-0 teaser is still there and
	// the expired cooldown lets a second one join it.
	third := g.Generate(600, nil, []event.Tension{tn}, event.WorldSnapshot{}, "")
	require.Len(t, third, 2)
}

func TestDramaticIronyTriggersForTrustingAgentInScene(t *testing.T) {
	g := New(DefaultConfig(), DefaultTemplates(), nil)
	betrayalScored := betrayalEvent("evt_betrayal", "agent_b", "agent_victimfaction")

	g.Generate(0, []scoring.Scored{betrayalScored}, nil, event.WorldSnapshot{}, "")
	require.Equal(t, 1, g.TrackedBetrayalCount())

	snapshot := event.WorldSnapshot{
		Agents: []event.AgentSnapshot{
			{AgentID: "agent_a", Name: "Mira", Alive: true},
			{AgentID: "agent_b", Name: "Cassian", Alive: true},
		},
		Relationships: map[string]map[string]event.Relationship{
			"agent_a": {"agent_b": {Reliability: 0.9}},
		},
	}
	nextScored := []scoring.Scored{{
		Event: event.Event{
			EventID:   "evt_unrelated",
			EventType: event.TypeCommunication,
			Actors:    event.Actors{Primary: event.ActorSnapshot{AgentID: "agent_a", Name: "Mira"}},
		},
	}}

	queue := g.Generate(5, nextScored, nil, snapshot, "")

	var found bool
	for _, item := range queue {
		if item.Kind == output.KindDramaticIrony {
			found = true
			require.Contains(t, item.Content, "Mira")
			require.Contains(t, item.Content, "Cassian")
		}
	}
	require.True(t, found, "expected a dramatic irony line for agent_a's misplaced trust in agent_b")
}

func TestDramaticIronySkipsAgentOutsideSceneAndLowTrust(t *testing.T) {
	g := New(DefaultConfig(), DefaultTemplates(), nil)
	g.Generate(0, []scoring.Scored{betrayalEvent("evt_betrayal", "agent_b", "agent_v")}, nil, event.WorldSnapshot{}, "")

	snapshot := event.WorldSnapshot{
		Relationships: map[string]map[string]event.Relationship{
			"agent_a": {"agent_b": {Reliability: 0.2}},
		},
	}
	queue := g.Generate(5, nil, nil, snapshot, "")
	for _, item := range queue {
		require.NotEqual(t, output.KindDramaticIrony, item.Kind)
	}
}

func TestContextReminderRespectsCooldownAndRequiresFocus(t *testing.T) {
	g := New(DefaultConfig(), DefaultTemplates(), nil)

	empty := g.Generate(0, nil, nil, event.WorldSnapshot{}, "")
	require.Empty(t, empty)

	withFocus := g.Generate(1, nil, nil, event.WorldSnapshot{}, "agent_a")
	require.Len(t, withFocus, 1)
	require.Equal(t, output.KindContextReminder, withFocus[0].Kind)

	stillCoolingDown := g.Generate(2, nil, nil, event.WorldSnapshot{}, "agent_a")
	require.Len(t, stillCoolingDown, 1)
}

func TestNarratorVoiceReservedForRitualDeathAndDefection(t *testing.T) {
	g := New(DefaultConfig(), DefaultTemplates(), nil)
	scored := []scoring.Scored{
		{Event: event.Event{EventID: "e1", EventType: event.TypeRitual, Actors: event.Actors{Primary: event.ActorSnapshot{AgentID: "a1", Name: "a1"}}}},
		{Event: event.Event{EventID: "e2", EventType: event.TypeMovement, Actors: event.Actors{Primary: event.ActorSnapshot{AgentID: "a2", Name: "a2"}}}},
	}

	queue := g.Generate(0, scored, nil, event.WorldSnapshot{}, "")

	var kinds []output.CommentaryKind
	for _, item := range queue {
		kinds = append(kinds, item.Kind)
	}
	require.Contains(t, kinds, output.KindNarratorVoice)
}

func TestQueueOverflowDropsLowestPriority(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxQueueSize = 1
	cfg.CooldownTicks = 0
	g := New(cfg, DefaultTemplates(), nil)

	lowPriority := betrayalEvent("evt_low", "agent_a", "agent_b")
	lowPriority.Event.DramaScore = 0.31

	highPriority := betrayalEvent("evt_high", "agent_c", "agent_d")
	highPriority.Event.DramaScore = 0.95

	queue := g.Generate(0, []scoring.Scored{lowPriority, highPriority}, nil, event.WorldSnapshot{}, "")

	require.Len(t, queue, 1)
	require.Equal(t, "evt_high", func() string {
		for _, id := range queue[0].RelatedAgentIDs {
			if id == "agent_c" {
				return "evt_high"
			}
		}
		return ""
	}())
}

func TestDisabledKindsAreSkippedSilently(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableTensionTeasers = false
	cfg.EnableDramaticIrony = false
	cfg.EnableContextReminders = false
	g := New(cfg, DefaultTemplates(), nil)

	tn := event.Tension{TensionID: "tens_x", TensionType: event.TensionRisingPower, Status: event.StatusEscalating, Severity: 0.6}
	queue := g.Generate(0, nil, []event.Tension{tn}, event.WorldSnapshot{}, "agent_a")

	require.Empty(t, queue)
}
