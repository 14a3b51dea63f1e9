package agents

import (
	"fmt"

	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
)

// Per-unit rescue throughput per tick. Ambulances and drones are fleets that
// stay in service; kits and food packs are consumed.
const (
	ambulanceCapacity  = 500
	droneCapacity      = 200
	medicalKitCapacity = 50
	foodPackCapacity   = 30

	maxKitsPerTick = 5
	maxFoodPerTick = 3
)

// Utility turns available resources into saved victims each response tick.
// It plans consumption in Decide, then Act consumes the expendables,
// computes the tick's actual throughput, and reports the real saved count.
type Utility struct{}

// NewUtility creates the allocation agent.
func NewUtility() *Utility {
	return &Utility{}
}

func (u *Utility) Name() string { return "UtilityAgent" }

func (u *Utility) Sense(env *environment.Environment, b *bus.Bus) Observation {
	return sense(u.Name(), env, b)
}

func (u *Utility) Decide(obs Observation) []protocol.Intent {
	if obs.Phase != environment.PhaseResponse {
		return nil
	}
	victims := obs.Victims
	if victims <= 0 {
		return nil
	}

	ambulances := obs.Resources[environment.ResourceAmbulances]
	drones := obs.Resources[environment.ResourceDrones]
	kits := obs.Resources[environment.ResourceMedicalKits]
	food := obs.Resources[environment.ResourceFoodPacks]

	potential := ambulances*ambulanceCapacity +
		drones*droneCapacity +
		minInt(kits, maxKitsPerTick)*medicalKitCapacity +
		minInt(food, maxFoodPerTick)*foodPackCapacity

	if potential <= 0 {
		return []protocol.Intent{{
			Priority: 1,
			Payload: protocol.StatusPayload{
				Message:          "No resources available for rescue operations",
				VictimsRemaining: victims,
				TimeStep:         obs.TimeStep,
			},
		}}
	}

	kitsToUse := minInt(kits, maxKitsPerTick, ceilDiv(victims, medicalKitCapacity))
	foodToUse := minInt(food, maxFoodPerTick, ceilDiv(victims, foodPackCapacity))

	expected := potential
	if expected > victims {
		expected = victims
	}
	remaining := victims - potential
	if remaining < 0 {
		remaining = 0
	}

	return []protocol.Intent{{
		Priority: 5,
		Payload: protocol.RescuePayload{
			Message: fmt.Sprintf("Rescue operations in progress: %d victims being rescued", expected),
			Allocation: map[string]int{
				environment.ResourceAmbulances:  0,
				environment.ResourceDrones:      0,
				environment.ResourceMedicalKits: kitsToUse,
				environment.ResourceFoodPacks:   foodToUse,
			},
			ExpectedHelped:   expected,
			RemainingVictims: remaining,
			ActiveResources: map[string]int{
				environment.ResourceAmbulances:  ambulances,
				environment.ResourceDrones:      drones,
				environment.ResourceMedicalKits: kits,
				environment.ResourceFoodPacks:   food,
			},
			TimeStep: obs.TimeStep,
		},
	}}
}

// Act consumes expendables through the environment, saves victims with the
// tick's actual throughput, and writes the result back into the outgoing
// payload before it hits the bus.
func (u *Utility) Act(env *environment.Environment, b *bus.Bus) {
	obs := u.Sense(env, b)
	for _, intent := range u.Decide(obs) {
		rescue, ok := intent.Payload.(protocol.RescuePayload)
		if !ok {
			b.Send(u.Name(), intent)
			continue
		}

		kitsUsed := env.UseResource(environment.ResourceMedicalKits, rescue.Allocation[environment.ResourceMedicalKits])
		foodUsed := env.UseResource(environment.ResourceFoodPacks, rescue.Allocation[environment.ResourceFoodPacks])

		throughput := rescue.ActiveResources[environment.ResourceAmbulances]*ambulanceCapacity +
			rescue.ActiveResources[environment.ResourceDrones]*droneCapacity +
			kitsUsed*medicalKitCapacity +
			foodUsed*foodPackCapacity

		if throughput > 0 {
			saved := env.SaveVictims(throughput)
			rescue.ActualSaved = saved
			rescue.Message = fmt.Sprintf("Rescued %d victims this step", saved)
		}
		intent.Payload = rescue
		b.Send(u.Name(), intent)
	}
}

// Reset is a no-op: Utility carries no cross-tick state.
func (u *Utility) Reset() {}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
