// Package agents implements the five autonomous decision agents and the
// sense → decide → act contract they share. Decide is a function of the
// observation plus each agent's explicitly carried state; world side effects
// happen only in Act, and only through the environment's controlled
// operations.
package agents

import (
	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
)

// senseWindow caps how many recent bus messages an agent reads per tick.
const senseWindow = 20

// Observation is one agent's view of the world: a state snapshot augmented
// with recent bus traffic from the other agents.
type Observation struct {
	environment.Snapshot
	RecentMessages []protocol.Message
}

// Agent is the sense/decide/act contract the orchestrator schedules.
type Agent interface {
	Name() string
	Sense(env *environment.Environment, b *bus.Bus) Observation
	Decide(obs Observation) []protocol.Intent
	Act(env *environment.Environment, b *bus.Bus)
	Reset()
}

// sense builds the standard observation: full snapshot plus up to
// senseWindow recent messages, excluding the agent's own sends.
func sense(name string, env *environment.Environment, b *bus.Bus) Observation {
	obs := Observation{Snapshot: env.Snapshot()}
	for _, m := range b.ReadRecent(senseWindow) {
		if m.Sender == name {
			continue
		}
		obs.RecentMessages = append(obs.RecentMessages, m)
	}
	return obs
}

// actDefault runs the plain cycle: sense, decide, publish each intent
// verbatim. Agents with world side effects implement their own Act.
func actDefault(a Agent, env *environment.Environment, b *bus.Bus) {
	obs := a.Sense(env, b)
	for _, intent := range a.Decide(obs) {
		b.Send(a.Name(), intent)
	}
}
