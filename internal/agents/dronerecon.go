package agents

import (
	"fmt"
	"sort"

	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
)

// scanRadius is how many nodes one drone covers per tick.
const scanRadius = 2

// DroneRecon sweeps the affected set node by node. The scanned set only
// grows within a response phase, so coverage is eventually complete and no
// node is reported twice. The set is updated in Act, after the decision is
// committed to the bus.
type DroneRecon struct {
	scanned        map[int]bool
	complete       bool
	reconStartStep int
}

// NewDroneRecon creates the reconnaissance agent.
func NewDroneRecon() *DroneRecon {
	return &DroneRecon{scanned: make(map[int]bool), reconStartStep: -1}
}

func (d *DroneRecon) Name() string { return "DroneReconAgent" }

func (d *DroneRecon) Sense(env *environment.Environment, b *bus.Bus) Observation {
	return sense(d.Name(), env, b)
}

func (d *DroneRecon) Decide(obs Observation) []protocol.Intent {
	if obs.Phase != environment.PhaseResponse {
		return nil
	}
	if d.reconStartStep < 0 {
		d.reconStartStep = obs.TimeStep
	}

	drones := obs.Resources[environment.ResourceDrones]
	if drones <= 0 {
		return nil
	}

	var unscanned []int
	for _, id := range obs.AffectedNodes {
		if !d.scanned[id] {
			unscanned = append(unscanned, id)
		}
	}
	sort.Ints(unscanned)

	if len(unscanned) == 0 && len(obs.AffectedNodes) > 0 {
		if d.complete {
			return nil
		}
		return []protocol.Intent{{
			Priority: 8,
			Payload: protocol.ReconCompletePayload{
				Message:       "Reconnaissance complete! All affected areas scanned.",
				TotalScanned:  len(d.scanned),
				TimeStep:      obs.TimeStep,
				ReconDuration: obs.TimeStep - d.reconStartStep,
			},
		}}
	}

	perTick := drones * scanRadius
	if perTick > len(unscanned) {
		perTick = len(unscanned)
	}
	if perTick == 0 {
		return nil
	}
	batch := unscanned[:perTick]

	return []protocol.Intent{{
		Priority: 7,
		Payload: protocol.ReconPayload{
			Message:        fmt.Sprintf("Drones scanning %d areas...", len(batch)),
			NodesScanned:   batch,
			DronesActive:   drones,
			RemainingAreas: len(unscanned) - len(batch),
			TimeStep:       obs.TimeStep,
		},
	}}
}

// Act records the scanned batch before publishing, so the next tick's decide
// sees the coverage made this tick.
func (d *DroneRecon) Act(env *environment.Environment, b *bus.Bus) {
	obs := d.Sense(env, b)
	if obs.Phase != environment.PhaseResponse {
		d.Reset()
		return
	}
	for _, intent := range d.Decide(obs) {
		switch p := intent.Payload.(type) {
		case protocol.ReconPayload:
			for _, id := range p.NodesScanned {
				d.scanned[id] = true
			}
		case protocol.ReconCompletePayload:
			d.complete = true
		}
		b.Send(d.Name(), intent)
	}
}

// Reset clears per-phase coverage state.
func (d *DroneRecon) Reset() {
	d.scanned = make(map[int]bool)
	d.complete = false
	d.reconStartStep = -1
}
