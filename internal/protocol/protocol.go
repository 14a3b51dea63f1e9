// Package protocol defines the message vocabulary the agents exchange over
// the bus. Every payload is a fixed-shape struct tagged with a Kind; the bus
// stores this variant, never an open map.
package protocol

import "time"

// Kind identifies the shape of a payload.
type Kind string

const (
	KindAlert         Kind = "alert"
	KindRecon         Kind = "recon"
	KindReconComplete Kind = "recon_complete"
	KindPlan          Kind = "plan"
	KindRescue        Kind = "rescue"
	KindStatus        Kind = "status"
	KindRepairStatus  Kind = "repair_status"
	KindRepairRequest Kind = "repair_request"
	KindMilestone     Kind = "milestone"
	KindRepairAlloc   Kind = "repair_alloc"
	KindRepairBlocked Kind = "repair_blocked"
)

// Payload is implemented by every payload variant.
type Payload interface {
	Kind() Kind
}

// Intent is one decision emitted by an agent's Decide pass, not yet applied
// to the world.
type Intent struct {
	Priority int
	Payload  Payload
}

// Kind returns the payload's kind.
func (i Intent) Kind() Kind { return i.Payload.Kind() }

// Message is one entry on the bus. Immutable once created; ID order is send
// order.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Type      Kind      `json:"type"`
	Payload   Payload   `json:"payload"`
	Priority  int       `json:"priority"`
	Timestamp time.Time `json:"ts"`
}

// AlertPayload is the reflex agent's situation alert.
type AlertPayload struct {
	Message       string  `json:"message"`
	Severity      string  `json:"severity"`
	SeismicLevel  float64 `json:"seismic_level"`
	Aftershock    bool    `json:"aftershock"`
	TimeStep      int     `json:"time_step"`
	AffectedAreas int     `json:"affected_areas"`
}

func (AlertPayload) Kind() Kind { return KindAlert }

// ReconPayload reports one tick of drone scanning.
type ReconPayload struct {
	Message        string `json:"message"`
	NodesScanned   []int  `json:"nodes_scanned"`
	DronesActive   int    `json:"drones_active"`
	RemainingAreas int    `json:"remaining_areas"`
	TimeStep       int    `json:"time_step"`
}

func (ReconPayload) Kind() Kind { return KindRecon }

// ReconCompletePayload marks full coverage of the affected set.
type ReconCompletePayload struct {
	Message       string `json:"message"`
	TotalScanned  int    `json:"total_scanned"`
	TimeStep      int    `json:"time_step"`
	ReconDuration int    `json:"recon_duration"`
}

func (ReconCompletePayload) Kind() Kind { return KindReconComplete }

// CriticalNode is one high-priority rescue target.
type CriticalNode struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	PriorityScore float64 `json:"priority_score"`
	Population    int     `json:"population"`
}

// Route status values.
const (
	RouteClear   = "clear"
	RouteBlocked = "blocked_route"
)

// Route is one planned path from the command center to a target.
type Route struct {
	TargetID   int      `json:"target_id"`
	TargetName string   `json:"target_name"`
	Path       []int    `json:"path"`
	PathNames  []string `json:"path_names"`
	Status     string   `json:"status"`
	Priority   float64  `json:"priority"`
}

// PlanPayload bundles all routes and targets of one planning pass.
type PlanPayload struct {
	Message          string         `json:"message"`
	TimeStep         int            `json:"time_step"`
	Routes           []Route        `json:"routes"`
	CriticalNodes    []CriticalNode `json:"critical_nodes"`
	CommandCenter    int            `json:"command_center"`
	TotalTargets     int            `json:"total_targets"`
	VictimsRemaining int            `json:"victims_remaining"`
	RoadsBlocked     bool           `json:"roads_blocked"`
}

func (PlanPayload) Kind() Kind { return KindPlan }

// RescuePayload carries the utility agent's planned consumption and, after
// the act pass, the actually saved count.
type RescuePayload struct {
	Message          string         `json:"message"`
	Allocation       map[string]int `json:"allocation"`
	ExpectedHelped   int            `json:"expected_victims_helped"`
	RemainingVictims int            `json:"remaining_victims"`
	ActiveResources  map[string]int `json:"active_resources"`
	ActualSaved      int            `json:"actual_victims_saved"`
	TimeStep         int            `json:"time_step"`
}

func (RescuePayload) Kind() Kind { return KindRescue }

// StatusPayload is a low-priority informational report.
type StatusPayload struct {
	Message          string `json:"message"`
	VictimsRemaining int    `json:"victims_remaining"`
	TimeStep         int    `json:"time_step"`
}

func (StatusPayload) Kind() Kind { return KindStatus }

// RepairStatusPayload is the rebuild agent's per-tick progress estimate.
type RepairStatusPayload struct {
	RebuildProgress     float64 `json:"rebuild_progress"`
	AvailableCrews      int     `json:"available_crews"`
	AvailableDrones     int     `json:"available_drones"`
	EstimatedStepsLeft  int     `json:"estimated_steps_remaining"` // -1 when no crews
	TimeStep            int     `json:"time_step"`
}

func (RepairStatusPayload) Kind() Kind { return KindRepairStatus }

// RepairRequestPayload asks for crew mobilization to cover a shortfall.
type RepairRequestPayload struct {
	Reason       string `json:"reason"`
	CurrentCrews int    `json:"current_crews"`
	Needed       int    `json:"needed"`
	TimeStep     int    `json:"time_step"`
}

func (RepairRequestPayload) Kind() Kind { return KindRepairRequest }

// MilestonePayload marks rebuild progress crossing a reporting band.
type MilestonePayload struct {
	Message   string  `json:"message"`
	Milestone int     `json:"milestone"`
	Progress  float64 `json:"progress"`
	TimeStep  int     `json:"time_step"`
}

func (MilestonePayload) Kind() Kind { return KindMilestone }

// RepairAllocPayload confirms crews mobilized from food stores.
type RepairAllocPayload struct {
	AddedCrews int    `json:"added_crews"`
	Source     string `json:"source"`
	FoodUsed   int    `json:"food_used"`
	TimeStep   int    `json:"time_step"`
}

func (RepairAllocPayload) Kind() Kind { return KindRepairAlloc }

// RepairBlockedPayload reports a crew request that could not be resourced.
type RepairBlockedPayload struct {
	Reason        string `json:"reason"`
	Needed        int    `json:"needed"`
	AvailableFood int    `json:"available_food"`
	RequiredFood  int    `json:"required_food"`
	TimeStep      int    `json:"time_step"`
}

func (RepairBlockedPayload) Kind() Kind { return KindRepairBlocked }
