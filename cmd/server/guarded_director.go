package main

import (
	"sync"

	"github.com/kestrelworks/director/internal/director"
	"github.com/kestrelworks/director/internal/director/event"
	"github.com/kestrelworks/director/internal/director/output"
	"github.com/kestrelworks/director/internal/director/thread"
)

// guardedDirector serializes access to a *director.Director across the
// daemon's two goroutines: the ingestion loop, which is its only writer
// (ProcessTick), and the MCP introspection server, which only reads.
// The Director itself makes no concurrency guarantee of its own (spec §5);
// this is the boundary that supplies one.
type guardedDirector struct {
	mu sync.RWMutex
	d  *director.Director
}

func newGuardedDirector(d *director.Director) *guardedDirector {
	return &guardedDirector{d: d}
}

func (g *guardedDirector) ProcessTick(events []event.Event, tensions []event.Tension, snapshot event.WorldSnapshot) (output.DirectorOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.d.ProcessTick(events, tensions, snapshot)
}

func (g *guardedDirector) CurrentTick() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.d.CurrentTick()
}

func (g *guardedDirector) ActiveThreadCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.d.ActiveThreadCount()
}

func (g *guardedDirector) TrackedBetrayalCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.d.TrackedBetrayalCount()
}

func (g *guardedDirector) Threads() []thread.Thread {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.d.Threads()
}
