package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
	"github.com/talgya/rescuegrid/internal/world"
)

func planObs(step int) Observation {
	g := world.Karachi()
	ids := make([]int, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return Observation{Snapshot: environment.Snapshot{
		Phase:         environment.PhaseResponse,
		Disaster:      true,
		TimeStep:      step,
		Scenario:      environment.ScenarioEarthquake,
		Victims:       500,
		Nodes:         g.Nodes,
		Edges:         g.Edges,
		AffectedNodes: ids,
		Params:        environment.DefaultParams(),
		Resources:     map[string]int{},
	}}
}

func TestGoalPlansTopCriticalTargets(t *testing.T) {
	g := NewGoalBased()
	intents := g.Decide(planObs(0))
	require.Len(t, intents, 1)

	plan, ok := intents[0].Payload.(protocol.PlanPayload)
	require.True(t, ok)
	require.Len(t, plan.CriticalNodes, maxTargets)
	assert.Equal(t, world.CommandCenter, plan.CommandCenter)
	assert.Equal(t, 6, intents[0].Priority)

	// Scores are descending and every route starts at the command center.
	for i := 1; i < len(plan.CriticalNodes); i++ {
		assert.GreaterOrEqual(t, plan.CriticalNodes[i-1].PriorityScore, plan.CriticalNodes[i].PriorityScore)
	}
	require.Len(t, plan.Routes, len(plan.CriticalNodes))
	for _, route := range plan.Routes {
		require.NotEmpty(t, route.Path)
		assert.Equal(t, world.CommandCenter, route.Path[0])
		assert.Equal(t, route.TargetID, route.Path[len(route.Path)-1])
		assert.Equal(t, protocol.RouteClear, route.Status)
		assert.Len(t, route.PathNames, len(route.Path))
	}
}

func TestGoalResidentialWeightingRanksDenseHousingFirst(t *testing.T) {
	g := NewGoalBased()
	intents := g.Decide(planObs(0))
	require.Len(t, intents, 1)

	plan := intents[0].Payload.(protocol.PlanPayload)
	// Karachi East (3.9M, district center) outscores everything unweighted,
	// but the x1.5 residential boost must put at least one residential node
	// in the top five.
	hasResidential := false
	for _, c := range plan.CriticalNodes {
		if c.Type == string(world.NodeResidential) {
			hasResidential = true
		}
	}
	assert.True(t, hasResidential)
}

func TestGoalReplanGate(t *testing.T) {
	g := NewGoalBased()

	require.Len(t, g.Decide(planObs(0)), 1)
	assert.Empty(t, g.Decide(planObs(1)))
	assert.Empty(t, g.Decide(planObs(2)))
	assert.Len(t, g.Decide(planObs(3)), 1)
}

func TestGoalBlockedRoadsRaisePriorityAndFallBack(t *testing.T) {
	obs := planObs(0)
	obs.RoadsBlocked = true
	// Sever every edge; targets remain reachable only through blocked roads.
	for i := range obs.Edges {
		obs.Edges[i].Blocked = true
	}

	g := NewGoalBased()
	intents := g.Decide(obs)
	require.Len(t, intents, 1)
	assert.Equal(t, 8, intents[0].Priority)

	plan := intents[0].Payload.(protocol.PlanPayload)
	require.NotEmpty(t, plan.Routes)
	for _, route := range plan.Routes {
		assert.Equal(t, protocol.RouteBlocked, route.Status)
	}
}

func TestGoalSkipsWhenNoVictims(t *testing.T) {
	obs := planObs(0)
	obs.Victims = 0
	assert.Empty(t, NewGoalBased().Decide(obs))
}

func TestGoalResetsOnPhaseExit(t *testing.T) {
	g := NewGoalBased()
	require.Len(t, g.Decide(planObs(0)), 1)

	idle := planObs(1)
	idle.Phase = environment.PhaseIdle
	assert.Empty(t, g.Decide(idle))

	// Back in response: the replan gate starts fresh.
	assert.Len(t, g.Decide(planObs(1)), 1)
}
