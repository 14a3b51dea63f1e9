// Package environment owns the shared world state: the city graph's mutable
// blocking flags, the disaster phase machine, and the resource ledger. Every
// public operation holds the environment lock for its full duration and
// readers only ever receive deep copies.
package environment

import (
	"errors"
	"fmt"
	"sync"

	"github.com/talgya/rescuegrid/internal/entropy"
	"github.com/talgya/rescuegrid/internal/world"
)

// Phase is the top-level disaster lifecycle state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseResponse  Phase = "response"
	PhaseRebuild   Phase = "rebuild"
	PhaseRecovered Phase = "recovered"
)

// Scenario is a disaster type.
type Scenario string

const (
	ScenarioEarthquake Scenario = "earthquake"
	ScenarioFlood      Scenario = "flood"
	ScenarioWildfire   Scenario = "wildfire"
)

// Validation errors for Trigger. Both are rejected before any state changes.
var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrIntensityRange  = errors.New("intensity out of range [0.1, 1.0]")
)

// Node sets with elevated scenario exposure.
var (
	floodProneNodes = []int{3, 4, 6, 19, 9, 8, 11}
	dryNodes        = []int{2, 4, 6, 17}
)

// Config wires an Environment's collaborators and tuning.
type Config struct {
	Params        Params
	AutoRetrigger bool // recovered → response after cooldown
	Rand          *entropy.Source
}

// Environment is the thread-safe disaster simulation state.
type Environment struct {
	mu  sync.Mutex
	rng *entropy.Source

	params        Params
	autoRetrigger bool

	timeStep     int
	scenario     Scenario
	disaster     bool
	phase        Phase
	victims      int
	victimsSaved int
	seismicLevel float64
	aftershock   bool
	roadsBlocked bool

	resources        map[string]int
	initialResources map[string]int
	resourcesUsed    map[string]int

	rebuildProgress float64
	cooldownCounter int

	nodes         []world.Node
	edges         []world.Edge
	affectedNodes []int
	affectedEdges []int

	stats Stats
}

// New creates an idle Environment over a copy of the given graph.
func New(g *world.Graph, cfg Config) *Environment {
	rng := cfg.Rand
	if rng == nil {
		rng = entropy.NewSource(1)
	}
	params := cfg.Params
	if params == (Params{}) {
		params = DefaultParams()
	}
	clone := g.Clone()
	env := &Environment{
		rng:           rng,
		params:        params,
		autoRetrigger: cfg.AutoRetrigger,
		phase:         PhaseIdle,
		nodes:         clone.Nodes,
		edges:         clone.Edges,
	}
	env.resources = defaultResources()
	env.initialResources = copyCounts(env.resources)
	env.resourcesUsed = zeroCounts(env.resources)
	return env
}

// Params returns the environment's tuning constants.
func (e *Environment) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// CurrentPhase returns the phase under the lock.
func (e *Environment) CurrentPhase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Trigger validates the request and starts a new disaster. Nothing mutates
// until both scenario and intensity pass validation.
func (e *Environment) Trigger(scenario Scenario, intensity float64, resources map[string]int) error {
	switch scenario {
	case ScenarioEarthquake, ScenarioFlood, ScenarioWildfire:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}
	if intensity < 0.1 || intensity > 1.0 {
		return fmt.Errorf("%w: %v", ErrIntensityRange, intensity)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.triggerLocked(scenario, intensity, resources)
	return nil
}

// triggerLocked resets disaster state and computes the affected sets,
// victims, and starting ledger. Caller holds the lock.
func (e *Environment) triggerLocked(scenario Scenario, intensity float64, resources map[string]int) {
	e.scenario = scenario
	e.disaster = true
	e.phase = PhaseResponse
	e.timeStep = 0
	e.victimsSaved = 0
	e.seismicLevel = clamp01(intensity)

	// Affected node selection by scenario.
	e.affectedNodes = nil
	switch scenario {
	case ScenarioEarthquake:
		for _, n := range e.nodes {
			e.affectedNodes = append(e.affectedNodes, n.ID)
		}
	case ScenarioFlood:
		fixed := asSet(floodProneNodes)
		for _, n := range e.nodes {
			if fixed[n.ID] || e.rng.Chance(0.3) {
				e.affectedNodes = append(e.affectedNodes, n.ID)
			}
		}
	case ScenarioWildfire:
		fixed := asSet(dryNodes)
		for _, n := range e.nodes {
			if fixed[n.ID] || e.rng.Chance(0.2) {
				e.affectedNodes = append(e.affectedNodes, n.ID)
			}
		}
	default:
		for _, n := range e.nodes {
			if e.rng.Chance(0.7) {
				e.affectedNodes = append(e.affectedNodes, n.ID)
			}
		}
	}
	affected := asSet(e.affectedNodes)

	// Edges touching an affected node become affected and may be blocked.
	e.affectedEdges = nil
	for i := range e.edges {
		edge := &e.edges[i]
		if !affected[edge.From] && !affected[edge.To] {
			continue
		}
		e.affectedEdges = append(e.affectedEdges, i)
		blockChance := 0.1
		if edge.Type == "road" {
			blockChance = 0.2
		}
		if e.rng.Chance(blockChance * e.seismicLevel) {
			edge.Blocked = true
		}
	}
	e.roadsBlocked = e.anyBlockedLocked()

	// Victims weighted by population and scenario vulnerability.
	e.victims = 0
	nodeByID := make(map[int]world.Node, len(e.nodes))
	for _, n := range e.nodes {
		nodeByID[n.ID] = n
	}
	for _, id := range e.affectedNodes {
		n := nodeByID[id]
		vuln, ok := n.Vulnerability[string(scenario)]
		if !ok {
			vuln = 1.0
		}
		e.victims += int(float64(n.Population) * 0.01 * e.seismicLevel * vuln)
	}
	if e.victims < 10 {
		e.victims = 10
	}
	e.stats.TotalVictimsInitial = e.victims

	// Ledger: caller-supplied counts win; otherwise scenario-tuned draws.
	if resources != nil {
		next := copyCounts(e.resources)
		for name, count := range resources {
			if _, known := next[name]; !known {
				continue
			}
			if count < 0 {
				count = 0
			}
			next[name] = count
		}
		e.resources = next
	} else {
		e.resources = e.rollResourcesLocked(scenario)
	}
	e.initialResources = copyCounts(e.resources)
	e.resourcesUsed = zeroCounts(e.resources)
}

// rollResourcesLocked draws a starting ledger from scenario-tuned ranges.
func (e *Environment) rollResourcesLocked(scenario Scenario) map[string]int {
	res := copyCounts(e.resources)
	switch scenario {
	case ScenarioEarthquake:
		res[ResourceAmbulances] = e.rng.IntBetween(3, 8)
		res[ResourceDrones] = e.rng.IntBetween(1, 4)
		res[ResourceMedicalKits] = e.rng.IntBetween(20, 80)
		res[ResourceRepairCrews] = e.rng.IntBetween(1, 4)
		res[ResourceFoodPacks] = e.rng.IntBetween(30, 100)
	case ScenarioFlood:
		res[ResourceAmbulances] = e.rng.IntBetween(2, 6)
		res[ResourceDrones] = e.rng.IntBetween(2, 6)
		res[ResourceMedicalKits] = e.rng.IntBetween(15, 60)
		res[ResourceRepairCrews] = e.rng.IntBetween(2, 6)
		res[ResourceFoodPacks] = e.rng.IntBetween(40, 120)
	case ScenarioWildfire:
		res[ResourceAmbulances] = e.rng.IntBetween(1, 4)
		res[ResourceDrones] = e.rng.IntBetween(3, 8)
		res[ResourceMedicalKits] = e.rng.IntBetween(10, 40)
		res[ResourceRepairCrews] = e.rng.IntBetween(3, 8)
		res[ResourceFoodPacks] = e.rng.IntBetween(20, 80)
	default:
		for name := range res {
			res[name] = int(float64(e.rng.IntBetween(1, 10)) * (1 + e.seismicLevel))
		}
	}
	return res
}

// Update advances the state machine one tick.
func (e *Environment) Update() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == PhaseIdle {
		return
	}

	e.timeStep++
	e.stats.TotalTimeSteps++

	switch e.phase {
	case PhaseResponse:
		e.updateResponseLocked()
	case PhaseRebuild:
		e.updateRebuildLocked()
	case PhaseRecovered:
		e.updateRecoveredLocked()
	}

	// Non-negativity holds after every tick.
	if e.victims < 0 {
		e.victims = 0
	}
	for name, count := range e.resources {
		if count < 0 {
			e.resources[name] = 0
		}
	}
}

func (e *Environment) updateResponseLocked() {
	e.aftershock = e.rng.Chance(e.params.AftershockFactor * (0.5 + e.seismicLevel))

	blockChance := e.params.RoadBlockChance + 0.2*e.seismicLevel
	if e.aftershock {
		blockChance += 0.2
	}
	e.roadsBlocked = e.rng.Chance(blockChance)

	// Seismic activity decays over time.
	e.seismicLevel -= e.rng.Float64() * 0.1
	if e.seismicLevel < 0 {
		e.seismicLevel = 0
	}

	// Secondary collapses during aftershocks.
	if e.aftershock && e.rng.Chance(0.2) {
		e.victims += e.rng.IntBetween(1, int(10*(0.5+e.seismicLevel)))
	}

	if e.victims <= 0 && !e.aftershock {
		e.phase = PhaseRebuild
		e.rebuildProgress = 0
		e.stats.VictimsSaved = e.victimsSaved
	}
}

func (e *Environment) updateRebuildLocked() {
	crews := e.resources[ResourceRepairCrews]
	drones := e.resources[ResourceDrones]

	increment := float64(crews)*e.params.RebuildFactorPerCrew + float64(drones)*0.15
	increment *= e.rng.Range(0.8, 1.2)
	e.rebuildProgress += increment
	if e.rebuildProgress > 100 {
		e.rebuildProgress = 100
	}

	// Crews clear some blocked roads as progress is made.
	unblock := int(increment / 5)
	if unblock > 0 {
		var blocked []int
		for i := range e.edges {
			if e.edges[i].Blocked {
				blocked = append(blocked, i)
			}
		}
		e.rng.Shuffle(len(blocked), func(i, j int) { blocked[i], blocked[j] = blocked[j], blocked[i] })
		if unblock > len(blocked) {
			unblock = len(blocked)
		}
		for _, idx := range blocked[:unblock] {
			e.edges[idx].Blocked = false
		}
	}
	e.roadsBlocked = e.anyBlockedLocked()

	// Fatigue rotation consumes crews gradually.
	consumed := int(increment / 3)
	if consumed > crews {
		consumed = crews
	}
	e.resources[ResourceRepairCrews] = crews - consumed

	if e.rebuildProgress >= e.params.RebuildRequired {
		e.phase = PhaseRecovered
		e.disaster = false
		e.seismicLevel = 0
		e.roadsBlocked = false
		e.victims = 0
		for i := range e.edges {
			e.edges[i].Blocked = false
		}
		e.affectedNodes = nil
		e.affectedEdges = nil
		e.stats.DisastersCompleted++
		// Restore baseline resources with drift.
		e.resources = copyCounts(e.initialResources)
		for name, count := range e.resources {
			e.resources[name] = int(float64(count) * e.rng.Range(0.9, 1.1))
		}
		e.cooldownCounter = e.rng.IntBetween(2, 6)
	}
}

func (e *Environment) updateRecoveredLocked() {
	if e.cooldownCounter > 0 {
		e.cooldownCounter--
		return
	}
	if !e.autoRetrigger {
		return
	}
	scenarios := []Scenario{ScenarioEarthquake, ScenarioFlood, ScenarioWildfire}
	next := scenarios[e.rng.IntN(len(scenarios))]
	e.triggerLocked(next, e.rng.Range(0.1, 1.0), nil)
}

// UseResource atomically consumes up to amount of a resource and returns the
// amount actually consumed. Unknown names are a no-op returning zero.
func (e *Environment) UseResource(name string, amount int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	available, known := e.resources[name]
	if !known || amount <= 0 {
		return 0
	}
	used := amount
	if used > available {
		used = available
	}
	e.resources[name] = available - used
	e.resourcesUsed[name] += used
	return used
}

// AddResource atomically returns units of a known resource to the ledger and
// reports the new count. Unknown names are a no-op returning zero. This is
// how crews mobilized from food stores enter the pool.
func (e *Environment) AddResource(name string, amount int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count, known := e.resources[name]
	if !known || amount <= 0 {
		return count
	}
	e.resources[name] = count + amount
	return e.resources[name]
}

// SaveVictims removes up to count victims from the outstanding pool and
// returns the number actually saved.
func (e *Environment) SaveVictims(count int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if count <= 0 {
		return 0
	}
	saved := count
	if saved > e.victims {
		saved = e.victims
	}
	e.victims -= saved
	e.victimsSaved += saved
	return saved
}

// Reset returns the environment to the idle baseline. Idempotent.
func (e *Environment) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.timeStep = 0
	e.scenario = ""
	e.disaster = false
	e.phase = PhaseIdle
	e.victims = 0
	e.victimsSaved = 0
	e.seismicLevel = 0
	e.aftershock = false
	e.roadsBlocked = false
	e.rebuildProgress = 0
	e.cooldownCounter = 0

	e.resources = defaultResources()
	e.initialResources = copyCounts(e.resources)
	e.resourcesUsed = zeroCounts(e.resources)

	e.affectedNodes = nil
	e.affectedEdges = nil
	for i := range e.edges {
		e.edges[i].Blocked = false
	}

	e.stats = Stats{}
}

func (e *Environment) anyBlockedLocked() bool {
	for i := range e.edges {
		if e.edges[i].Blocked {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func asSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func zeroCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k := range m {
		out[k] = 0
	}
	return out
}
