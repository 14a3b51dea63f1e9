package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/entropy"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
	"github.com/talgya/rescuegrid/internal/world"
)

func rebuildObs(step int, progress float64, crews, drones, food int) Observation {
	return Observation{Snapshot: environment.Snapshot{
		Phase:           environment.PhaseRebuild,
		TimeStep:        step,
		RebuildProgress: progress,
		Params:          environment.DefaultParams(),
		Resources: map[string]int{
			environment.ResourceRepairCrews: crews,
			environment.ResourceDrones:      drones,
			environment.ResourceFoodPacks:   food,
		},
	}}
}

func TestRebuildStatusEstimate(t *testing.T) {
	r := NewRebuild()
	intents := r.Decide(rebuildObs(1, 40, 3, 2, 50))
	require.NotEmpty(t, intents)

	status, ok := intents[0].Payload.(protocol.RepairStatusPayload)
	require.True(t, ok)
	assert.Equal(t, 40.0, status.RebuildProgress)
	assert.Equal(t, 3, status.AvailableCrews)
	// 60 remaining at 3×2.0 + 2×0.15 = 6.3 per tick → ceil = 10.
	assert.Equal(t, 10, status.EstimatedStepsLeft)
	assert.Equal(t, 6, intents[0].Priority)
}

func TestRebuildEstimateUnknownWithoutCrews(t *testing.T) {
	r := NewRebuild()
	intents := r.Decide(rebuildObs(1, 40, 0, 2, 50))
	require.NotEmpty(t, intents)

	status := intents[0].Payload.(protocol.RepairStatusPayload)
	assert.Equal(t, -1, status.EstimatedStepsLeft)
}

func TestRebuildRequestsCrewsWhenShortHanded(t *testing.T) {
	r := NewRebuild()
	intents := r.Decide(rebuildObs(1, 10, 1, 0, 50))

	var request *protocol.RepairRequestPayload
	for _, intent := range intents {
		if p, ok := intent.Payload.(protocol.RepairRequestPayload); ok {
			request = &p
			assert.Equal(t, 8, intent.Priority)
		}
	}
	require.NotNil(t, request)
	assert.Equal(t, 1, request.CurrentCrews)
	assert.Equal(t, 1, request.Needed)
	assert.Equal(t, "insufficient_crews", request.Reason)
}

func TestRebuildNoRequestWithEnoughCrews(t *testing.T) {
	r := NewRebuild()
	for _, intent := range r.Decide(rebuildObs(1, 10, 2, 0, 50)) {
		_, isRequest := intent.Payload.(protocol.RepairRequestPayload)
		assert.False(t, isRequest)
	}
}

func TestRebuildMilestoneAnnouncedOncePerBand(t *testing.T) {
	r := NewRebuild()

	milestones := func(intents []protocol.Intent) []int {
		var out []int
		for _, intent := range intents {
			if m, ok := intent.Payload.(protocol.MilestonePayload); ok {
				out = append(out, m.Milestone)
			}
		}
		return out
	}

	assert.Empty(t, milestones(r.Decide(rebuildObs(1, 10, 3, 0, 50))))
	assert.Equal(t, []int{25}, milestones(r.Decide(rebuildObs(2, 26, 3, 0, 50))))
	// Still in the 25 band: no repeat.
	assert.Empty(t, milestones(r.Decide(rebuildObs(3, 28, 3, 0, 50))))
	assert.Equal(t, []int{50}, milestones(r.Decide(rebuildObs(4, 52, 3, 0, 50))))
	assert.Equal(t, []int{75}, milestones(r.Decide(rebuildObs(5, 77, 3, 0, 50))))
	assert.Equal(t, []int{90}, milestones(r.Decide(rebuildObs(6, 93, 3, 0, 50))))
}

func TestRebuildMilestoneMemoryClearsOnPhaseExit(t *testing.T) {
	r := NewRebuild()
	require.NotEmpty(t, r.Decide(rebuildObs(1, 26, 3, 0, 50)))

	idle := rebuildObs(2, 0, 3, 0, 50)
	idle.Phase = environment.PhaseIdle
	r.Decide(idle)

	// A new rebuild announces the same band again.
	found := false
	for _, intent := range r.Decide(rebuildObs(3, 26, 3, 0, 50)) {
		if _, ok := intent.Payload.(protocol.MilestonePayload); ok {
			found = true
		}
	}
	assert.True(t, found)
}

// driveToRebuild pushes a triggered environment through the response phase.
func driveToRebuild(t *testing.T, env *environment.Environment) {
	t.Helper()
	for i := 0; i < 300 && env.CurrentPhase() == environment.PhaseResponse; i++ {
		env.SaveVictims(env.Snapshot().Victims)
		env.Update()
	}
	require.Equal(t, environment.PhaseRebuild, env.CurrentPhase())
}

func TestRebuildActMobilizesCrewsFromFood(t *testing.T) {
	env := environment.New(world.Karachi(), environment.Config{Rand: entropy.NewSource(8)})
	require.NoError(t, env.Trigger(environment.ScenarioEarthquake, 0.5, map[string]int{
		environment.ResourceRepairCrews: 0,
		environment.ResourceDrones:      0,
		environment.ResourceFoodPacks:   50,
	}))
	driveToRebuild(t, env)

	b := bus.New(0)
	r := NewRebuild()
	r.Act(env, b)

	// 2 crews mobilized at 5 food packs each.
	snap := env.Snapshot()
	assert.Equal(t, 2, snap.Resources[environment.ResourceRepairCrews])
	assert.Equal(t, 40, snap.Resources[environment.ResourceFoodPacks])

	var alloc *protocol.RepairAllocPayload
	for _, m := range b.ReadAll("test") {
		if p, ok := m.Payload.(protocol.RepairAllocPayload); ok {
			alloc = &p
		}
		_, raw := m.Payload.(protocol.RepairRequestPayload)
		assert.False(t, raw, "raw repair requests must not reach the bus")
	}
	require.NotNil(t, alloc)
	assert.Equal(t, 2, alloc.AddedCrews)
	assert.Equal(t, 10, alloc.FoodUsed)
	assert.Equal(t, "food_recruitment", alloc.Source)
}

func TestRebuildActReportsBlockedWithoutFood(t *testing.T) {
	env := environment.New(world.Karachi(), environment.Config{Rand: entropy.NewSource(8)})
	require.NoError(t, env.Trigger(environment.ScenarioEarthquake, 0.5, map[string]int{
		environment.ResourceRepairCrews: 0,
		environment.ResourceDrones:      0,
		environment.ResourceFoodPacks:   3,
	}))
	driveToRebuild(t, env)

	b := bus.New(0)
	r := NewRebuild()
	r.Act(env, b)

	snap := env.Snapshot()
	assert.Zero(t, snap.Resources[environment.ResourceRepairCrews])
	assert.Equal(t, 3, snap.Resources[environment.ResourceFoodPacks])

	var blocked *protocol.RepairBlockedPayload
	var blockedPriority int
	for _, m := range b.ReadAll("test") {
		if p, ok := m.Payload.(protocol.RepairBlockedPayload); ok {
			blocked = &p
			blockedPriority = m.Priority
		}
	}
	require.NotNil(t, blocked)
	assert.Equal(t, 2, blocked.Needed)
	assert.Equal(t, 3, blocked.AvailableFood)
	assert.Equal(t, 10, blocked.RequiredFood)
	assert.Equal(t, 6, blockedPriority)
}
