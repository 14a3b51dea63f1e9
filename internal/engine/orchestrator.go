// Package engine provides the cycle scheduler that drives the simulation:
// one sense → decide → act pass per agent in fixed order, then one
// environment tick, then periodic bus compaction.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/rescuegrid/internal/agents"
	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/entropy"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
)

const (
	defaultCompactEvery = 10
	defaultKeepRecent   = 100

	journalConsumer = "journal"
)

// CycleRecorder receives each completed cycle for in-session journaling.
type CycleRecorder interface {
	RecordCycle(cycle int, snap environment.Snapshot, msgs []protocol.Message) error
}

// AgentResult reports one agent's outcome within a cycle.
type AgentResult struct {
	Agent string `json:"agent"`
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// CycleResult summarizes one RunCycle call.
type CycleResult struct {
	Status string        `json:"status"` // "completed" or "paused"
	Cycle  int           `json:"cycle"`
	Agents []AgentResult `json:"agent_results,omitempty"`
}

// Options configures an Orchestrator.
type Options struct {
	// Agents overrides the default five-agent roster (tests only).
	Agents []agents.Agent
	// Recorder, when set, receives every completed cycle.
	Recorder CycleRecorder
	// Rand seeds the cosmetic unit pool. Defaults to a fixed seed.
	Rand *entropy.Source
	// NoiseSeed seeds the unit flight jitter field.
	NoiseSeed int64
	// CompactEvery is the cycle interval between bus compactions.
	CompactEvery int
	// KeepRecent is how many active messages each compaction retains.
	KeepRecent int
}

// Orchestrator coordinates agent execution. One lock serializes RunCycle,
// pause control, and reset; a cycle once started always runs to completion.
type Orchestrator struct {
	mu sync.Mutex

	env    *environment.Environment
	bus    *bus.Bus
	agents []agents.Agent

	recorder     CycleRecorder
	compactEvery int
	keepRecent   int

	paused     bool
	cycleCount int

	units *unitPool
}

// New creates an Orchestrator with the standard agent roster in its fixed
// execution order: Reflex, DroneRecon, Goal, Utility, Rebuild.
func New(env *environment.Environment, b *bus.Bus, opts Options) *Orchestrator {
	roster := opts.Agents
	if roster == nil {
		roster = []agents.Agent{
			agents.NewReflex(),
			agents.NewDroneRecon(),
			agents.NewGoalBased(),
			agents.NewUtility(),
			agents.NewRebuild(),
		}
	}
	rng := opts.Rand
	if rng == nil {
		rng = entropy.NewSource(1)
	}
	compactEvery := opts.CompactEvery
	if compactEvery <= 0 {
		compactEvery = defaultCompactEvery
	}
	keepRecent := opts.KeepRecent
	if keepRecent <= 0 {
		keepRecent = defaultKeepRecent
	}
	return &Orchestrator{
		env:          env,
		bus:          b,
		agents:       roster,
		recorder:     opts.Recorder,
		compactEvery: compactEvery,
		keepRecent:   keepRecent,
		units:        newUnitPool(rng, opts.NoiseSeed),
	}
}

// RunCycle executes one complete simulation cycle. When paused it is a no-op
// returning the current cycle count.
func (o *Orchestrator) RunCycle() CycleResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.paused {
		return CycleResult{Status: "paused", Cycle: o.cycleCount}
	}

	o.cycleCount++
	results := make([]AgentResult, 0, len(o.agents))

	for _, a := range o.agents {
		res := AgentResult{Agent: a.Name()}
		if err := o.runAgent(a); err != nil {
			res.Err = err
			res.Error = err.Error()
			slog.Error("agent failed", "agent", a.Name(), "cycle", o.cycleCount, "error", err)
		}
		results = append(results, res)
	}

	o.env.Update()

	if o.cycleCount%o.compactEvery == 0 {
		o.bus.ClearOld(o.keepRecent)
	}

	snap := o.env.Snapshot()
	o.units.step(o.cycleCount, snap)

	if o.recorder != nil {
		if err := o.recorder.RecordCycle(o.cycleCount, snap, o.bus.ReadAll(journalConsumer)); err != nil {
			slog.Error("journal write failed", "cycle", o.cycleCount, "error", err)
		}
	}

	return CycleResult{Status: "completed", Cycle: o.cycleCount, Agents: results}
}

// runAgent isolates one agent's act pass: a panic is converted to an error
// and never aborts the cycle.
func (o *Orchestrator) runAgent(a agents.Agent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panic: %v", r)
		}
	}()
	a.Act(o.env, o.bus)
	return nil
}

// Pause stops future cycles until Resume. State is left untouched.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paused = true
}

// Resume re-enables cycling.
func (o *Orchestrator) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paused = false
}

// IsPaused reports the pause flag.
func (o *Orchestrator) IsPaused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paused
}

// CycleCount returns the number of completed cycles.
func (o *Orchestrator) CycleCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cycleCount
}

// Status summarizes the scheduler for external callers.
type Status struct {
	CycleCount int               `json:"cycle_count"`
	Paused     bool              `json:"paused"`
	Phase      environment.Phase `json:"phase"`
	Agents     []string          `json:"agents"`
}

// GetStatus returns the scheduler status.
func (o *Orchestrator) GetStatus() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	names := make([]string, len(o.agents))
	for i, a := range o.agents {
		names[i] = a.Name()
	}
	return Status{
		CycleCount: o.cycleCount,
		Paused:     o.paused,
		Phase:      o.env.CurrentPhase(),
		Agents:     names,
	}
}

// Reset returns the scheduler, environment, bus, every agent, and the unit
// pool to their initial state.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cycleCount = 0
	o.paused = false
	o.units.reset()
	o.env.Reset()
	o.bus.Reset()
	for _, a := range o.agents {
		a.Reset()
	}
}

// UnitPositions returns a copy of the cosmetic rescue-unit pool for
// visualization. Units never feed back into simulation state.
func (o *Orchestrator) UnitPositions() []RescueUnit {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.units.positions()
}
