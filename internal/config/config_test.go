package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rescuegrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, defaults(), cfg)
	assert.Equal(t, 8000, cfg.API.Port)
	assert.Equal(t, 800*time.Millisecond, cfg.Engine.TickInterval)
	assert.True(t, cfg.Simulation.AutoRetrigger)
}

func TestLoadOverridesAndKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
simulation:
  seed: 1234
  auto_retrigger: false
  params:
    rebuild_required: 150
engine:
  tick_interval: 250ms
api:
  port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(1234), cfg.Simulation.Seed)
	assert.False(t, cfg.Simulation.AutoRetrigger)
	assert.Equal(t, 150.0, cfg.Simulation.Params.RebuildRequired)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.TickInterval)
	assert.Equal(t, 9090, cfg.API.Port)

	// Untouched sections keep their defaults.
	assert.Equal(t, 500, cfg.Bus.HistoryCap)
	assert.Equal(t, 10, cfg.Engine.CompactEvery)
	assert.Equal(t, 0.5, cfg.Simulation.Params.SeismicThreshold)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "simulation: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
engine:
  tick_interval: soon
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick_interval")
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero history", func(c *Config) { c.Bus.HistoryCap = 0 }, "history_cap"},
		{"bad port", func(c *Config) { c.API.Port = 70000 }, "port"},
		{"negative keep_recent", func(c *Config) { c.Engine.KeepRecent = -1 }, "keep_recent"},
		{"empty journal path", func(c *Config) { c.Journal.Path = "" }, "journal.path"},
		{"threshold above one", func(c *Config) { c.Simulation.Params.SeismicThreshold = 1.5 }, "seismic_threshold"},
		{"zero rebuild target", func(c *Config) { c.Simulation.Params.RebuildRequired = 0 }, "rebuild_required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
