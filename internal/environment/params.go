package environment

// Resource ledger keys.
const (
	ResourceAmbulances  = "ambulances"
	ResourceDrones      = "drones"
	ResourceMedicalKits = "medical_kits"
	ResourceRepairCrews = "repair_crews"
	ResourceFoodPacks   = "food_packs"
)

// Params are the tunable constants of the disaster state machine.
type Params struct {
	SeismicThreshold     float64 `json:"seismic_threshold" yaml:"seismic_threshold"`
	AftershockFactor     float64 `json:"aftershock_factor" yaml:"aftershock_factor"`
	RoadBlockChance      float64 `json:"road_block_chance" yaml:"road_block_chance"`
	RebuildRequired      float64 `json:"rebuild_required" yaml:"rebuild_required"`
	RebuildFactorPerCrew float64 `json:"rebuild_factor_per_crew" yaml:"rebuild_factor_per_crew"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		SeismicThreshold:     0.5,
		AftershockFactor:     0.3,
		RoadBlockChance:      0.4,
		RebuildRequired:      100,
		RebuildFactorPerCrew: 2.0,
	}
}

// defaultResources is the idle-state ledger.
func defaultResources() map[string]int {
	return map[string]int{
		ResourceAmbulances:  5,
		ResourceDrones:      3,
		ResourceMedicalKits: 40,
		ResourceRepairCrews: 2,
		ResourceFoodPacks:   50,
	}
}

// Stats aggregates outcomes across the session.
type Stats struct {
	TotalVictimsInitial int `json:"total_victims_initial"`
	VictimsSaved        int `json:"victims_saved"`
	DisastersCompleted  int `json:"disasters_completed"`
	TotalTimeSteps      int `json:"total_time_steps"`
}
