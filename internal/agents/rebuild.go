package agents

import (
	"fmt"
	"math"

	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
)

const (
	// foodCostPerCrew is how many food packs mobilize one temporary crew.
	foodCostPerCrew = 5
	// minCrews is the crew count below which mobilization is requested.
	minCrews = 2
)

// milestoneBands are the rebuild-progress percentages worth announcing.
var milestoneBands = []int{25, 50, 75, 90}

// Rebuild coordinates infrastructure repair during the rebuild phase: status
// estimates every tick, crew mobilization from food stores when short-handed,
// and one milestone announcement per progress band.
type Rebuild struct {
	announced map[int]bool
}

// NewRebuild creates the rebuild agent.
func NewRebuild() *Rebuild {
	return &Rebuild{announced: make(map[int]bool)}
}

func (r *Rebuild) Name() string { return "RebuildAgent" }

func (r *Rebuild) Sense(env *environment.Environment, b *bus.Bus) Observation {
	return sense(r.Name(), env, b)
}

func (r *Rebuild) Decide(obs Observation) []protocol.Intent {
	if obs.Phase != environment.PhaseRebuild {
		r.Reset()
		return nil
	}

	crews := obs.Resources[environment.ResourceRepairCrews]
	drones := obs.Resources[environment.ResourceDrones]
	progress := obs.RebuildProgress

	estimated := -1
	if crews > 0 {
		perTick := float64(crews)*obs.Params.RebuildFactorPerCrew + float64(drones)*0.15
		remaining := 100 - progress
		if remaining < 0 {
			remaining = 0
		}
		estimated = int(math.Ceil(remaining / math.Max(0.1, perTick)))
	}

	intents := []protocol.Intent{{
		Priority: 6,
		Payload: protocol.RepairStatusPayload{
			RebuildProgress:    round2(progress),
			AvailableCrews:     crews,
			AvailableDrones:    drones,
			EstimatedStepsLeft: estimated,
			TimeStep:           obs.TimeStep,
		},
	}}

	if crews < minCrews {
		intents = append(intents, protocol.Intent{
			Priority: 8,
			Payload: protocol.RepairRequestPayload{
				Reason:       "insufficient_crews",
				CurrentCrews: crews,
				Needed:       minCrews - crews,
				TimeStep:     obs.TimeStep,
			},
		})
	}

	for _, band := range milestoneBands {
		if progress >= float64(band) && progress < float64(band)+5 && !r.announced[band] {
			r.announced[band] = true
			intents = append(intents, protocol.Intent{
				Priority: 4,
				Payload: protocol.MilestonePayload{
					Message:   fmt.Sprintf("Rebuild progress reached %d%%", band),
					Milestone: band,
					Progress:  round2(progress),
					TimeStep:  obs.TimeStep,
				},
			})
			break
		}
	}

	return intents
}

// Act converts repair requests into mobilized crews when food stores allow,
// reporting the outcome either way. Crews are never fabricated without
// resource backing.
func (r *Rebuild) Act(env *environment.Environment, b *bus.Bus) {
	obs := r.Sense(env, b)
	for _, intent := range r.Decide(obs) {
		request, ok := intent.Payload.(protocol.RepairRequestPayload)
		if !ok {
			b.Send(r.Name(), intent)
			continue
		}

		availableFood := obs.Resources[environment.ResourceFoodPacks]
		mobilize := minInt(request.Needed, availableFood/foodCostPerCrew)
		if mobilize > 0 {
			foodUsed := env.UseResource(environment.ResourceFoodPacks, mobilize*foodCostPerCrew)
			crewsAdded := foodUsed / foodCostPerCrew
			if crewsAdded > 0 {
				env.AddResource(environment.ResourceRepairCrews, crewsAdded)
				b.Send(r.Name(), protocol.Intent{
					Priority: intent.Priority,
					Payload: protocol.RepairAllocPayload{
						AddedCrews: crewsAdded,
						Source:     "food_recruitment",
						FoodUsed:   foodUsed,
						TimeStep:   request.TimeStep,
					},
				})
				continue
			}
		}

		b.Send(r.Name(), protocol.Intent{
			Priority: maxInt(1, intent.Priority-2),
			Payload: protocol.RepairBlockedPayload{
				Reason:        "insufficient_food_for_recruitment",
				Needed:        request.Needed,
				AvailableFood: availableFood,
				RequiredFood:  request.Needed * foodCostPerCrew,
				TimeStep:      request.TimeStep,
			},
		})
	}
}

// Reset clears milestone memory.
func (r *Rebuild) Reset() {
	r.announced = make(map[int]bool)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
