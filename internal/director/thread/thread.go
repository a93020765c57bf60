// Package thread implements the Thread Tracker component (spec §4.2): it
// opens, updates, fatigues, and concludes narrative threads keyed on
// (tension id, agent set).
package thread

import (
	"sort"
	"strings"

	"github.com/kestrelworks/director/internal/director/event"
)

// Status is the closed set of lifecycle states a thread passes through.
// Progression is monotonic: active -> fatigued -> dormant -> concluded,
// with concluded terminal. Fatigued threads may return to active if
// refocused; dormant threads may return to active if their tension
// resurfaces.
type Status string

const (
	StatusActive    Status = "active"
	StatusFatigued  Status = "fatigued"
	StatusDormant   Status = "dormant"
	StatusConcluded Status = "concluded"
)

// Thread is the Director's internal bookkeeping for a persistent storyline.
type Thread struct {
	ID               string
	TensionID        string
	AgentIDs         []string
	Status           Status
	BirthTick        int64
	LastActivityTick int64
	FocusTicks       int64
	Summary          string

	lastSeenSeverity float64
	lastSeenStatus   event.Status
}

// Identity returns the stable (tension id or synthetic id, sorted agent set)
// key a thread is tracked under.
func Identity(tensionID string, agentIDs []string) string {
	sorted := append([]string(nil), agentIDs...)
	sort.Strings(sorted)
	if tensionID == "" {
		tensionID = "evt"
	}
	return tensionID + "|" + strings.Join(sorted, ",")
}
