package agents

import (
	"fmt"

	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
)

// Severity levels for alerts.
const (
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Reflex reacts immediately to current conditions during the response phase:
// one alert per tick at most, severity scaled from the seismic level.
type Reflex struct {
	lastAlertStep int
}

// NewReflex creates the reflex agent.
func NewReflex() *Reflex {
	return &Reflex{lastAlertStep: -1}
}

func (r *Reflex) Name() string { return "ReflexAgent" }

func (r *Reflex) Sense(env *environment.Environment, b *bus.Bus) Observation {
	return sense(r.Name(), env, b)
}

func (r *Reflex) Decide(obs Observation) []protocol.Intent {
	if obs.Phase != environment.PhaseResponse {
		r.Reset()
		return nil
	}
	if obs.TimeStep == r.lastAlertStep {
		return nil
	}
	if !obs.Disaster {
		return nil
	}

	threshold := obs.Params.SeismicThreshold
	var severity, message string
	if obs.SeismicLevel >= threshold {
		severity = SeverityHigh
		if obs.SeismicLevel >= 0.8 {
			severity = SeverityCritical
		}
		message = fmt.Sprintf("ALERT: Seismic level %.2f exceeds threshold %.2f — emergency evacuation!", obs.SeismicLevel, threshold)
	} else {
		severity = SeverityMedium
		message = fmt.Sprintf("Monitoring: Seismic level %.2f below threshold", obs.SeismicLevel)
	}
	if obs.Aftershock {
		severity = SeverityCritical
		message = "AFTERSHOCK DETECTED! Take cover immediately!"
	}

	priority := 5
	if severity == SeverityHigh || severity == SeverityCritical {
		priority = 10
	}

	r.lastAlertStep = obs.TimeStep
	return []protocol.Intent{{
		Priority: priority,
		Payload: protocol.AlertPayload{
			Message:       message,
			Severity:      severity,
			SeismicLevel:  obs.SeismicLevel,
			Aftershock:    obs.Aftershock,
			TimeStep:      obs.TimeStep,
			AffectedAreas: len(obs.AffectedNodes),
		},
	}}
}

func (r *Reflex) Act(env *environment.Environment, b *bus.Bus) {
	actDefault(r, env, b)
}

// Reset clears the duplicate-alert memory.
func (r *Reflex) Reset() {
	r.lastAlertStep = -1
}
