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

func reconObs(step, drones int, affected []int) Observation {
	return Observation{Snapshot: environment.Snapshot{
		Phase:         environment.PhaseResponse,
		Disaster:      true,
		TimeStep:      step,
		AffectedNodes: affected,
		Params:        environment.DefaultParams(),
		Resources:     map[string]int{environment.ResourceDrones: drones},
	}}
}

func TestDroneReconBatchSizeFollowsDroneCount(t *testing.T) {
	d := NewDroneRecon()
	intents := d.Decide(reconObs(0, 2, []int{5, 3, 1, 9, 7, 11}))
	require.Len(t, intents, 1)

	recon, ok := intents[0].Payload.(protocol.ReconPayload)
	require.True(t, ok)
	// 2 drones × 2 nodes each, lowest IDs first.
	assert.Equal(t, []int{1, 3, 5, 7}, recon.NodesScanned)
	assert.Equal(t, 2, recon.RemainingAreas)
	assert.Equal(t, 7, intents[0].Priority)
}

func TestDroneReconNoDronesNoScan(t *testing.T) {
	d := NewDroneRecon()
	assert.Empty(t, d.Decide(reconObs(0, 0, []int{1, 2})))
}

func TestDroneReconCoverageGrowsToCompletion(t *testing.T) {
	env := environment.New(world.Karachi(), environment.Config{Rand: entropy.NewSource(4)})
	require.NoError(t, env.Trigger(environment.ScenarioEarthquake, 0.7, map[string]int{
		environment.ResourceDrones: 3,
	}))
	b := bus.New(0)
	d := NewDroneRecon()

	totalAffected := len(env.Snapshot().AffectedNodes)
	scannedSoFar := 0
	var completeCount int

	// 27 nodes at 6 per tick: complete announcement by tick 5.
	for tick := 0; tick < 10; tick++ {
		d.Act(env, b)
		for _, m := range b.ReadAll("test") {
			switch p := m.Payload.(type) {
			case protocol.ReconPayload:
				// Coverage only grows and never repeats a node.
				scannedSoFar += len(p.NodesScanned)
			case protocol.ReconCompletePayload:
				completeCount++
				assert.Equal(t, totalAffected, p.TotalScanned)
			}
		}
	}

	assert.Equal(t, totalAffected, scannedSoFar)
	assert.Equal(t, 1, completeCount, "completion must announce exactly once")
}

func TestDroneReconNeverScansSameNodeTwice(t *testing.T) {
	d := NewDroneRecon()
	affected := []int{0, 1, 2, 3, 4, 5}

	seen := make(map[int]int)
	for tick := 0; tick < 6; tick++ {
		for _, intent := range d.Decide(reconObs(tick, 1, affected)) {
			if recon, ok := intent.Payload.(protocol.ReconPayload); ok {
				for _, id := range recon.NodesScanned {
					seen[id]++
					d.scanned[id] = true
				}
			}
		}
	}

	assert.Len(t, seen, len(affected))
	for id, n := range seen {
		assert.Equal(t, 1, n, "node %d scanned %d times", id, n)
	}
}

func TestDroneReconResetsOutsideResponse(t *testing.T) {
	env := environment.New(world.Karachi(), environment.Config{Rand: entropy.NewSource(4)})
	b := bus.New(0)
	d := NewDroneRecon()
	d.scanned[3] = true
	d.complete = true

	// Idle phase: Act clears coverage state and emits nothing.
	d.Act(env, b)
	assert.Empty(t, b.ReadAll("test"))
	assert.Empty(t, d.scanned)
	assert.False(t, d.complete)
}
