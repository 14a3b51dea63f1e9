package engine

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/rescuegrid/internal/entropy"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/world"
)

// UnitStatus is a rescue unit's movement state.
type UnitStatus string

const (
	UnitDispatched UnitStatus = "dispatched"
	UnitResponding UnitStatus = "responding"
	UnitReturning  UnitStatus = "returning"
)

// moveSpeed is progress gained per cycle while a unit is in transit.
const moveSpeed = 0.15

// RescueUnit is a purely cosmetic animated marker. Units are owned by the
// orchestrator, live for a handful of cycles, and are never read by agents.
type RescueUnit struct {
	ID         int        `json:"id"`
	Type       string     `json:"type"`
	Status     UnitStatus `json:"status"`
	StartLat   float64    `json:"start_lat"`
	StartLng   float64    `json:"start_lng"`
	CurrentLat float64    `json:"current_lat"`
	CurrentLng float64    `json:"current_lng"`
	TargetLat  float64    `json:"target_lat"`
	TargetLng  float64    `json:"target_lng"`
	TargetName string     `json:"target_node_name"`
	Progress   float64    `json:"progress"`
	SpawnCycle int        `json:"spawn_cycle"`
}

// unitPool animates dispatched units between the command center and targets.
// Spawning is bounded by current resource counts; movement is linear
// interpolation with a touch of simplex noise so drone tracks do not look
// ruler-straight.
type unitPool struct {
	rng    *entropy.Source
	noise  opensimplex.Noise
	units  []*RescueUnit
	nextID int
}

func newUnitPool(rng *entropy.Source, noiseSeed int64) *unitPool {
	return &unitPool{
		rng:   rng,
		noise: opensimplex.New(noiseSeed),
	}
}

// step advances all unit animations one cycle and spawns new units according
// to the phase and resource counts.
func (p *unitPool) step(cycle int, snap environment.Snapshot) {
	if snap.Phase == environment.PhaseIdle {
		p.units = nil
		return
	}
	p.spawn(cycle, snap)
	p.advance(cycle)
}

func (p *unitPool) spawn(cycle int, snap environment.Snapshot) {
	nodeByID := make(map[int]world.Node, len(snap.Nodes))
	for _, n := range snap.Nodes {
		nodeByID[n.ID] = n
	}
	center, ok := nodeByID[world.CommandCenter]
	if !ok && len(snap.Nodes) > 0 {
		center = snap.Nodes[0]
	}

	counts := map[string]int{}
	for _, u := range p.units {
		counts[u.Type]++
	}

	switch snap.Phase {
	case environment.PhaseResponse:
		if len(snap.AffectedNodes) == 0 {
			return
		}
		if counts["ambulance"] < minOf(snap.Resources[environment.ResourceAmbulances], 3) && cycle%2 == 0 {
			target := snap.AffectedNodes[p.rng.IntN(len(snap.AffectedNodes))]
			if n, ok := nodeByID[target]; ok {
				p.add(cycle, "ambulance", center, n.Name, n.Lat, n.Lng)
			}
		}
		if counts["drone"] < minOf(snap.Resources[environment.ResourceDrones], 4) && cycle%3 == 0 {
			target := snap.AffectedNodes[p.rng.IntN(len(snap.AffectedNodes))]
			if n, ok := nodeByID[target]; ok {
				p.add(cycle, "drone", center, n.Name, n.Lat, n.Lng)
			}
		}
		// Medical teams head for the most populous affected node.
		if counts["medical"] < minOf(snap.Resources[environment.ResourceMedicalKits]/5, 2) && cycle%4 == 0 {
			var best *world.Node
			for _, id := range snap.AffectedNodes {
				n, ok := nodeByID[id]
				if !ok {
					continue
				}
				if best == nil || n.Population > best.Population {
					copied := n
					best = &copied
				}
			}
			if best != nil {
				p.add(cycle, "medical", center, best.Name, best.Lat, best.Lng)
			}
		}

	case environment.PhaseRebuild:
		var blocked []world.Edge
		for _, e := range snap.Edges {
			if e.Blocked {
				blocked = append(blocked, e)
			}
		}
		if len(blocked) == 0 {
			return
		}
		if counts["repair_crew"] < minOf(snap.Resources[environment.ResourceRepairCrews], len(blocked)) && cycle%3 == 0 {
			e := blocked[p.rng.IntN(len(blocked))]
			from, okF := nodeByID[e.From]
			to, okT := nodeByID[e.To]
			if okF && okT {
				name := fmt.Sprintf("%s - %s Road", from.Name, to.Name)
				p.add(cycle, "repair_crew", center, name, (from.Lat+to.Lat)/2, (from.Lng+to.Lng)/2)
			}
		}
	}
}

func (p *unitPool) add(cycle int, unitType string, start world.Node, targetName string, targetLat, targetLng float64) {
	p.nextID++
	p.units = append(p.units, &RescueUnit{
		ID:         p.nextID,
		Type:       unitType,
		Status:     UnitDispatched,
		StartLat:   start.Lat,
		StartLng:   start.Lng,
		CurrentLat: start.Lat,
		CurrentLng: start.Lng,
		TargetLat:  targetLat,
		TargetLng:  targetLng,
		TargetName: targetName,
		SpawnCycle: cycle,
	})
}

func (p *unitPool) advance(cycle int) {
	kept := p.units[:0]
	for _, u := range p.units {
		switch u.Status {
		case UnitDispatched:
			p.move(u)
			if u.Progress >= 1 {
				u.Status = UnitResponding
			}
			kept = append(kept, u)

		case UnitResponding:
			// Dwell at the target for a few cycles before heading home.
			if cycle-u.SpawnCycle-7 > 5 {
				u.Status = UnitReturning
				u.StartLat, u.TargetLat = u.TargetLat, u.StartLat
				u.StartLng, u.TargetLng = u.TargetLng, u.StartLng
				u.Progress = 0
			}
			kept = append(kept, u)

		case UnitReturning:
			p.move(u)
			if u.Progress < 1 {
				kept = append(kept, u)
			}
		}
	}
	p.units = kept
}

func (p *unitPool) move(u *RescueUnit) {
	u.Progress += moveSpeed
	if u.Progress > 1 {
		u.Progress = 1
	}
	u.CurrentLat = u.StartLat + (u.TargetLat-u.StartLat)*u.Progress
	u.CurrentLng = u.StartLng + (u.TargetLng-u.StartLng)*u.Progress
	if u.Type == "drone" {
		// Small lateral wobble so drone tracks read as flight, not sliding.
		u.CurrentLat += p.noise.Eval2(u.Progress*4, float64(u.ID)) * 0.002
	}
}

func (p *unitPool) positions() []RescueUnit {
	out := make([]RescueUnit, len(p.units))
	for i, u := range p.units {
		out[i] = *u
	}
	return out
}

func (p *unitPool) reset() {
	p.units = nil
	p.nextID = 0
}

func minOf(a, b int) int {
	if a < b {
		return a
	}
	return b
}
