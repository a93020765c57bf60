package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/director/internal/director/event"
)

func betrayalEvent(id string, tags ...string) event.Event {
	return event.Event{
		EventID:   id,
		EventType: event.TypeBetrayal,
		DramaTags: tags,
		Actors: event.Actors{
			Primary: event.ActorSnapshot{AgentID: "agent_a"},
		},
	}
}

func TestScoreUsesBaseScore(t *testing.T) {
	s := NewWithDefaults(nil)
	got := s.Score(event.Event{EventType: event.TypeMovement}, Context{})
	require.InDelta(t, 0.1, got, 1e-9)
}

func TestScoreUnknownKindFallsBackToDefault(t *testing.T) {
	s := NewWithDefaults(nil)
	got := s.Score(event.Event{EventType: event.Type("unknown")}, Context{})
	require.InDelta(t, defaultBaseScore, got, 1e-9)
}

func TestScoreAddsDramaTags(t *testing.T) {
	s := NewWithDefaults(nil)
	e := betrayalEvent("evt_1", "faction_critical", "secret_meeting")
	got := s.Score(e, Context{})
	// 0.9 + 0.3 + 0.25 = 1.45, under the cap.
	require.InDelta(t, 1.45, got, 1e-9)
}

func TestScoreCapsAtOnePointFive(t *testing.T) {
	s := NewWithDefaults(nil)
	e := betrayalEvent("evt_1", "faction_critical", "secret_meeting", "leader_involved")
	ctx := NewContext([]string{"agent_a"}, []string{"evt_1"})
	got := s.Score(e, ctx)
	require.LessOrEqual(t, got, scoreCap)
	require.InDelta(t, scoreCap, got, 1e-9)
}

func TestScoreAppliesTrackedAgentBoost(t *testing.T) {
	s := NewWithDefaults(nil)
	e := betrayalEvent("evt_1")
	base := s.Score(e, Context{})
	boosted := s.Score(e, NewContext([]string{"agent_a"}, nil))
	require.Greater(t, boosted, base)
}

func TestScoreAppliesTensionEventBoost(t *testing.T) {
	s := NewWithDefaults(nil)
	e := betrayalEvent("evt_1")
	base := s.Score(e, Context{})
	boosted := s.Score(e, NewContext(nil, []string{"evt_1"}))
	require.Greater(t, boosted, base)
}

func TestScoreMonotonicInWeights(t *testing.T) {
	weights := DefaultWeights()
	s := New(weights, nil)
	e := betrayalEvent("evt_1", "faction_critical")
	before := s.Score(e, Context{})

	weights.DramaTagScores["faction_critical"] += 0.2
	s2 := New(weights, nil)
	after := s2.Score(e, Context{})

	require.GreaterOrEqual(t, after, before)
}

func TestScoreBatchPreservesOrder(t *testing.T) {
	s := NewWithDefaults(nil)
	events := []event.Event{
		{EventID: "e1", EventType: event.TypeMovement},
		{EventID: "e2", EventType: event.TypeBetrayal},
		{EventID: "e3", EventType: event.TypeDeath},
	}
	scored := s.ScoreBatch(events, Context{})
	require.Len(t, scored, 3)
	for i, e := range events {
		require.Equal(t, e.EventID, scored[i].Event.EventID)
	}
}
