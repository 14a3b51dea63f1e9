package agents

import (
	"fmt"
	"sort"

	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
	"github.com/talgya/rescuegrid/internal/world"
)

const (
	// replanInterval is the minimum tick gap between planning passes once a
	// plan exists.
	replanInterval = 3
	// maxTargets caps how many critical nodes one plan covers.
	maxTargets = 5
)

// GoalBased plans rescue routes: it scores affected nodes, picks the most
// critical, and runs shortest-path searches from the command center —
// avoiding blocked roads when possible, falling back to a blocked route when
// a target is otherwise unreachable.
type GoalBased struct {
	lastPlanStep int
	hasPlan      bool
}

// NewGoalBased creates the planning agent.
func NewGoalBased() *GoalBased {
	return &GoalBased{lastPlanStep: -1}
}

func (g *GoalBased) Name() string { return "GoalAgent" }

func (g *GoalBased) Sense(env *environment.Environment, b *bus.Bus) Observation {
	return sense(g.Name(), env, b)
}

func (g *GoalBased) Decide(obs Observation) []protocol.Intent {
	if obs.Phase != environment.PhaseResponse {
		g.Reset()
		return nil
	}
	if g.hasPlan && obs.TimeStep-g.lastPlanStep < replanInterval {
		return nil
	}
	if obs.Victims <= 0 {
		return nil
	}

	routes, critical := g.planRoutes(obs)
	g.hasPlan = true
	g.lastPlanStep = obs.TimeStep

	var message string
	priority := 6
	if obs.RoadsBlocked {
		blocked := 0
		for _, e := range obs.Edges {
			if e.Blocked {
				blocked++
			}
		}
		message = fmt.Sprintf("Roads blocked (%d routes) — using alternate paths for rescue", blocked)
		priority = 8
	} else {
		message = fmt.Sprintf("Planning rescue operations for %d critical zones", len(routes))
	}

	return []protocol.Intent{{
		Priority: priority,
		Payload: protocol.PlanPayload{
			Message:          message,
			TimeStep:         obs.TimeStep,
			Routes:           routes,
			CriticalNodes:    critical,
			CommandCenter:    world.CommandCenter,
			TotalTargets:     len(routes),
			VictimsRemaining: obs.Victims,
			RoadsBlocked:     obs.RoadsBlocked,
		},
	}}
}

// planRoutes selects critical targets and routes to each from the command
// center.
func (g *GoalBased) planRoutes(obs Observation) ([]protocol.Route, []protocol.CriticalNode) {
	adj := world.BuildAdjacency(obs.Nodes, obs.Edges)
	critical := findCriticalNodes(obs)

	names := make(map[int]string, len(obs.Nodes))
	for _, n := range obs.Nodes {
		names[n.ID] = n.Name
	}

	var routes []protocol.Route
	for _, target := range critical {
		path := world.ShortestPath(adj, world.CommandCenter, target.ID, true)
		status := protocol.RouteClear
		if path == nil {
			path = world.ShortestPath(adj, world.CommandCenter, target.ID, false)
			status = protocol.RouteBlocked
		}
		if path == nil {
			continue
		}
		pathNames := make([]string, 0, len(path))
		for _, id := range path {
			pathNames = append(pathNames, names[id])
		}
		routes = append(routes, protocol.Route{
			TargetID:   target.ID,
			TargetName: target.Name,
			Path:       path,
			PathNames:  pathNames,
			Status:     status,
			Priority:   target.PriorityScore,
		})
	}
	return routes, critical
}

// findCriticalNodes scores affected nodes by vulnerability and population,
// weighting residential and public-service areas, and keeps the top few.
// Ties keep their original node order.
func findCriticalNodes(obs Observation) []protocol.CriticalNode {
	affected := make(map[int]bool, len(obs.AffectedNodes))
	for _, id := range obs.AffectedNodes {
		affected[id] = true
	}

	var critical []protocol.CriticalNode
	for _, n := range obs.Nodes {
		if !affected[n.ID] {
			continue
		}
		vuln, ok := n.Vulnerability[string(obs.Scenario)]
		if !ok {
			vuln = 1.0
		}
		score := vuln * (float64(n.Population) / 100000)
		if n.Type == world.NodeResidential || n.Type == world.NodePublicService {
			score *= 1.5
		}
		critical = append(critical, protocol.CriticalNode{
			ID:            n.ID,
			Name:          n.Name,
			Type:          string(n.Type),
			PriorityScore: score,
			Population:    n.Population,
		})
	}
	sort.SliceStable(critical, func(i, j int) bool {
		return critical[i].PriorityScore > critical[j].PriorityScore
	})
	if len(critical) > maxTargets {
		critical = critical[:maxTargets]
	}
	return critical
}

func (g *GoalBased) Act(env *environment.Environment, b *bus.Bus) {
	actDefault(g, env, b)
}

// Reset clears the replan gate.
func (g *GoalBased) Reset() {
	g.lastPlanStep = -1
	g.hasPlan = false
}
