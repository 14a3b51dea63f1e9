package environment

import "github.com/talgya/rescuegrid/internal/world"

// Snapshot is a full, immutable copy of the environment state. Nothing in a
// Snapshot aliases live state; agents and transport readers can hold one
// across ticks safely.
type Snapshot struct {
	TimeStep         int            `json:"time_step"`
	Scenario         Scenario       `json:"scenario"`
	Disaster         bool           `json:"disaster"`
	Phase            Phase          `json:"phase"`
	RebuildProgress  float64        `json:"rebuild_progress"`
	CooldownCounter  int            `json:"cooldown_counter"`
	Victims          int            `json:"victims"`
	VictimsSaved     int            `json:"victims_saved"`
	SeismicLevel     float64        `json:"seismic_level"`
	Aftershock       bool           `json:"aftershock"`
	RoadsBlocked     bool           `json:"roads_blocked"`
	Resources        map[string]int `json:"resources"`
	ResourcesUsed    map[string]int `json:"resources_used"`
	InitialResources map[string]int `json:"initial_resources"`
	Params           Params         `json:"params"`
	Nodes            []world.Node   `json:"nodes"`
	Edges            []world.Edge   `json:"edges"`
	AffectedNodes    []int          `json:"affected_nodes"`
	AffectedEdges    []int          `json:"affected_edges"`
	Stats            Stats          `json:"stats"`
}

// Snapshot returns a deep copy of all state under the lock.
func (e *Environment) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		TimeStep:         e.timeStep,
		Scenario:         e.scenario,
		Disaster:         e.disaster,
		Phase:            e.phase,
		RebuildProgress:  e.rebuildProgress,
		CooldownCounter:  e.cooldownCounter,
		Victims:          e.victims,
		VictimsSaved:     e.victimsSaved,
		SeismicLevel:     e.seismicLevel,
		Aftershock:       e.aftershock,
		RoadsBlocked:     e.roadsBlocked,
		Resources:        copyCounts(e.resources),
		ResourcesUsed:    copyCounts(e.resourcesUsed),
		InitialResources: copyCounts(e.initialResources),
		Params:           e.params,
		Nodes:            world.CloneNodes(e.nodes),
		Edges:            world.CloneEdges(e.edges),
		AffectedNodes:    append([]int(nil), e.affectedNodes...),
		AffectedEdges:    append([]int(nil), e.affectedEdges...),
		Stats:            e.stats,
	}
}
