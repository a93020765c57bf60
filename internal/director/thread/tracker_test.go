package thread

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/director/internal/director/event"
)

func tension(id string, severity float64, status event.Status, agents ...string) event.Tension {
	keyAgents := make([]event.KeyAgent, len(agents))
	for i, a := range agents {
		keyAgents[i] = event.KeyAgent{AgentID: a}
	}
	return event.Tension{
		TensionID: id,
		Severity:  severity,
		Status:    status,
		KeyAgents: keyAgents,
	}
}

func TestUpdateCreatesThreadForEligibleTension(t *testing.T) {
	tr := New(DefaultConfig(), nil)
	tr.Update([]event.Tension{tension("tens_1", 0.5, event.StatusEscalating, "agent_a")}, 100)

	id := Identity("tens_1", []string{"agent_a"})
	th, ok := tr.Get(id)
	require.True(t, ok)
	require.Equal(t, StatusActive, th.Status)
	require.Equal(t, int64(100), th.BirthTick)
}

func TestUpdateIsIdempotentForSameIdentity(t *testing.T) {
	tr := New(DefaultConfig(), nil)
	tn := tension("tens_1", 0.5, event.StatusEscalating, "agent_a")
	tr.Update([]event.Tension{tn}, 100)
	tr.Update([]event.Tension{tn}, 101)

	require.Len(t, tr.Candidates(), 1)
	th, ok := tr.Get(Identity("tens_1", []string{"agent_a"}))
	require.True(t, ok)
	require.Equal(t, int64(101), th.LastActivityTick)
	require.Equal(t, int64(100), th.BirthTick)
}

func TestUpdateSkipsBelowMinSeverity(t *testing.T) {
	tr := New(DefaultConfig(), nil)
	tr.Update([]event.Tension{tension("tens_1", 0.1, event.StatusEmerging, "agent_a")}, 100)
	require.Empty(t, tr.Candidates())
}

func TestResolvedTensionConcludesThread(t *testing.T) {
	tr := New(DefaultConfig(), nil)
	tn := tension("tens_1", 0.5, event.StatusEscalating, "agent_a")
	tr.Update([]event.Tension{tn}, 100)

	resolved := tn
	resolved.Status = event.StatusResolved
	tr.Update([]event.Tension{resolved}, 150)

	th, ok := tr.Get(Identity("tens_1", []string{"agent_a"}))
	require.True(t, ok)
	require.Equal(t, StatusConcluded, th.Status)
	require.Empty(t, tr.Candidates())
}

func TestThreadBecomesFatiguedAtThreshold(t *testing.T) {
	cfg := Config{MinSeverityForThread: 0.3, FatigueThresholdTicks: 10, DormantThresholdTicks: 1000, MaxThreads: 20}
	tr := New(cfg, nil)
	tn := tension("tens_1", 0.9, event.StatusCritical, "agent_a")
	id := Identity("tens_1", []string{"agent_a"})

	for tick := int64(0); tick < 10; tick++ {
		tr.Update([]event.Tension{tn}, tick)
		tr.MarkFocused(id, tick)
	}
	require.False(t, tr.IsFatigued(id), "not yet fatigued before threshold tick")

	tr.Update([]event.Tension{tn}, 10)
	require.True(t, tr.IsFatigued(id), "fatigued exactly at threshold tick")
}

func TestThreadBecomesDormantWhenTensionDisappears(t *testing.T) {
	cfg := Config{MinSeverityForThread: 0.3, FatigueThresholdTicks: 5000, DormantThresholdTicks: 50, MaxThreads: 20}
	tr := New(cfg, nil)
	tn := tension("tens_1", 0.5, event.StatusEscalating, "agent_a")
	tr.Update([]event.Tension{tn}, 0)

	tr.Update(nil, 49)
	id := Identity("tens_1", []string{"agent_a"})
	th, _ := tr.Get(id)
	require.Equal(t, StatusActive, th.Status)

	tr.Update(nil, 50)
	th, _ = tr.Get(id)
	require.Equal(t, StatusDormant, th.Status)
}

func TestDormantThreadReactivatesWhenTensionResurfaces(t *testing.T) {
	cfg := Config{MinSeverityForThread: 0.3, FatigueThresholdTicks: 5000, DormantThresholdTicks: 10, MaxThreads: 20}
	tr := New(cfg, nil)
	tn := tension("tens_1", 0.5, event.StatusEscalating, "agent_a")
	tr.Update([]event.Tension{tn}, 0)
	tr.Update(nil, 20)

	id := Identity("tens_1", []string{"agent_a"})
	th, _ := tr.Get(id)
	require.Equal(t, StatusDormant, th.Status)

	tr.Update([]event.Tension{tn}, 30)
	th, _ = tr.Get(id)
	require.Equal(t, StatusActive, th.Status)
}

func TestEvictsLowestPriorityOnOverflow(t *testing.T) {
	cfg := Config{MinSeverityForThread: 0.1, FatigueThresholdTicks: 5000, DormantThresholdTicks: 5000, MaxThreads: 1}
	tr := New(cfg, nil)
	tr.Update([]event.Tension{
		tension("tens_low", 0.2, event.StatusEmerging, "agent_a"),
		tension("tens_high", 0.9, event.StatusEscalating, "agent_b"),
	}, 0)

	require.Len(t, tr.Candidates(), 1)
	require.Equal(t, "tens_high", tr.Candidates()[0].TensionID)
}
