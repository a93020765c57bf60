package focus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/director/internal/director/event"
	"github.com/kestrelworks/director/internal/director/output"
	"github.com/kestrelworks/director/internal/director/scoring"
	"github.com/kestrelworks/director/internal/director/thread"
)

func newTrackerWith(t *testing.T, tensions []event.Tension, tick int64) *thread.Tracker {
	tr := thread.New(thread.DefaultConfig(), nil)
	tr.Update(tensions, tick)
	return tr
}

func TestSelectEmptyTickProducesOverview(t *testing.T) {
	sel := New(DefaultConfig(), nil)
	tr := newTrackerWith(t, nil, 1000)

	result := sel.Select(nil, nil, tr, event.WorldSnapshot{Timestamp: event.Timestamp{Tick: 1000}}, "", 1000)

	require.Equal(t, output.ModeOverview, result.Instruction.Mode.Kind)
	require.Equal(t, output.PacingNormal, result.Instruction.Pacing)
}

func TestSelectHighSeverityTensionWinsFocus(t *testing.T) {
	sel := New(DefaultConfig(), nil)
	tn := event.Tension{
		TensionID:   "tens_00001",
		TensionType: event.TensionBrewingBetrayal,
		Severity:    0.85,
		Confidence:  1.0,
		Status:      event.StatusCritical,
		KeyAgents:   []event.KeyAgent{{AgentID: "agent_a", RoleInTension: "betrayer", Trajectory: "toward_defection"}},
	}
	tr := newTrackerWith(t, []event.Tension{tn}, 0)

	result := sel.Select([]event.Tension{tn}, nil, tr, event.WorldSnapshot{}, "", 0)

	require.NotNil(t, result.Instruction.TensionID)
	require.Equal(t, "tens_00001", *result.Instruction.TensionID)
	require.Contains(t, []output.Pacing{output.PacingUrgent, output.PacingClimactic}, result.Instruction.Pacing)
}

func TestSelectEventBeatsLowTension(t *testing.T) {
	sel := New(DefaultConfig(), nil)
	tn := event.Tension{
		TensionID:  "tens_00002",
		Severity:   0.3,
		Confidence: 0.9, // weight 0.3 * 0.9 * 0.7 (emerging) = 0.189, below the 0.2 fallback
		Status:     event.StatusEmerging,
		KeyAgents:  []event.KeyAgent{{AgentID: "agent_z"}},
	}
	tr := newTrackerWith(t, []event.Tension{tn}, 0)

	scored := []scoring.Scored{{
		Event: event.Event{
			EventID:   "evt_1",
			EventType: event.TypeBetrayal,
			Actors:    event.Actors{Primary: event.ActorSnapshot{AgentID: "agent_a", Name: "Alaric"}},
		},
		Score: 0.87,
	}}

	result := sel.Select([]event.Tension{tn}, scored, tr, event.WorldSnapshot{}, "", 0)

	require.Equal(t, "evt_1", result.FocusedEventID)
	require.Equal(t, "agent_a", result.Instruction.Mode.AgentID)
}

func TestSelectSkipsFatiguedLowSeverityTension(t *testing.T) {
	sel := New(DefaultConfig(), nil)
	tn := event.Tension{
		TensionID:  "tens_fatigued",
		Severity:   0.5,
		Confidence: 1.0,
		Status:     event.StatusEscalating,
		KeyAgents:  []event.KeyAgent{{AgentID: "agent_a"}},
	}
	cfg := thread.Config{MinSeverityForThread: 0.1, FatigueThresholdTicks: 1, DormantThresholdTicks: 1000, MaxThreads: 20}
	tr := thread.New(cfg, nil)
	tr.Update([]event.Tension{tn}, 0)
	tr.MarkFocused(thread.Identity("tens_fatigued", []string{"agent_a"}), 0)
	tr.Update([]event.Tension{tn}, 1) // crosses fatigue threshold

	result := sel.Select([]event.Tension{tn}, nil, tr, event.WorldSnapshot{}, "", 1)

	require.Equal(t, output.ModeOverview, result.Instruction.Mode.Kind)
}

func TestContinuityBoostFavorsIncumbent(t *testing.T) {
	sel := New(DefaultConfig(), nil)
	incumbent := event.Tension{
		TensionID: "tens_incumbent", Severity: 0.5, Confidence: 1.0, Status: event.StatusEscalating,
		KeyAgents: []event.KeyAgent{{AgentID: "agent_a"}},
	}
	challenger := event.Tension{
		TensionID: "tens_challenger", Severity: 0.55, Confidence: 1.0, Status: event.StatusEscalating,
		KeyAgents: []event.KeyAgent{{AgentID: "agent_b"}},
	}
	tensions := []event.Tension{incumbent, challenger}
	tr := newTrackerWith(t, tensions, 0)

	incumbentID := thread.Identity("tens_incumbent", []string{"agent_a"})
	result := sel.Select(tensions, nil, tr, event.WorldSnapshot{}, incumbentID, 0)

	require.Equal(t, "tens_incumbent", *result.Instruction.TensionID)
}
