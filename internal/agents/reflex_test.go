package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
)

func responseObs(step int, seismic float64, aftershock bool) Observation {
	return Observation{Snapshot: environment.Snapshot{
		Phase:        environment.PhaseResponse,
		Disaster:     true,
		TimeStep:     step,
		SeismicLevel: seismic,
		Aftershock:   aftershock,
		Params:       environment.DefaultParams(),
		Resources:    map[string]int{},
	}}
}

func TestReflexSeverityScalesWithSeismicLevel(t *testing.T) {
	cases := []struct {
		seismic    float64
		aftershock bool
		severity   string
		priority   int
	}{
		{0.3, false, SeverityMedium, 5},
		{0.5, false, SeverityHigh, 10},
		{0.85, false, SeverityCritical, 10},
		{0.3, true, SeverityCritical, 10},
	}

	for _, tc := range cases {
		r := NewReflex()
		intents := r.Decide(responseObs(1, tc.seismic, tc.aftershock))
		require.Len(t, intents, 1, "seismic %.2f", tc.seismic)

		alert, ok := intents[0].Payload.(protocol.AlertPayload)
		require.True(t, ok)
		assert.Equal(t, tc.severity, alert.Severity, "seismic %.2f", tc.seismic)
		assert.Equal(t, tc.priority, intents[0].Priority, "seismic %.2f", tc.seismic)
	}
}

func TestReflexOneAlertPerTimeStep(t *testing.T) {
	r := NewReflex()

	require.Len(t, r.Decide(responseObs(3, 0.9, false)), 1)
	assert.Empty(t, r.Decide(responseObs(3, 0.9, false)))
	assert.Len(t, r.Decide(responseObs(4, 0.9, false)), 1)
}

func TestReflexSilentOutsideResponsePhase(t *testing.T) {
	r := NewReflex()
	for _, phase := range []environment.Phase{environment.PhaseIdle, environment.PhaseRebuild, environment.PhaseRecovered} {
		obs := responseObs(1, 0.9, false)
		obs.Phase = phase
		assert.Empty(t, r.Decide(obs), "phase %s", phase)
	}
}

func TestReflexDedupResetsOnPhaseExit(t *testing.T) {
	r := NewReflex()
	require.Len(t, r.Decide(responseObs(2, 0.9, false)), 1)

	// Leaving and re-entering the response phase clears the alert memory,
	// so the same time step alerts again in the new disaster.
	rebuild := responseObs(3, 0, false)
	rebuild.Phase = environment.PhaseRebuild
	r.Decide(rebuild)

	assert.Len(t, r.Decide(responseObs(2, 0.9, false)), 1)
}
