// Package config loads the simulation configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/rescuegrid/internal/environment"
)

// Config is the top-level configuration for the rescuegrid service.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Bus        BusConfig        `yaml:"bus"`
	Engine     EngineConfig     `yaml:"engine"`
	API        APIConfig        `yaml:"api"`
	Journal    JournalConfig    `yaml:"journal"`
}

// SimulationConfig controls the disaster environment.
type SimulationConfig struct {
	Seed          int64              `yaml:"seed"`
	AutoRetrigger bool               `yaml:"auto_retrigger"`
	Params        environment.Params `yaml:"params"`
}

// BusConfig controls the shared message bus.
type BusConfig struct {
	HistoryCap int `yaml:"history_cap"`
}

// EngineConfig controls the orchestrator loop. TickIntervalRaw holds
// the duration string from YAML; TickInterval is the parsed value.
type EngineConfig struct {
	CompactEvery    int           `yaml:"compact_every"`
	KeepRecent      int           `yaml:"keep_recent"`
	TickIntervalRaw string        `yaml:"tick_interval"`
	TickInterval    time.Duration `yaml:"-"`
}

// APIConfig controls the HTTP server.
type APIConfig struct {
	Port int `yaml:"port"`
}

// JournalConfig controls the SQLite session journal.
type JournalConfig struct {
	Path string `yaml:"path"`
}

func defaults() Config {
	return Config{
		Simulation: SimulationConfig{
			Seed:          0,
			AutoRetrigger: true,
			Params:        environment.DefaultParams(),
		},
		Bus: BusConfig{
			HistoryCap: 500,
		},
		Engine: EngineConfig{
			CompactEvery:    10,
			KeepRecent:      100,
			TickIntervalRaw: "800ms",
			TickInterval:    800 * time.Millisecond,
		},
		API: APIConfig{
			Port: 8000,
		},
		Journal: JournalConfig{
			Path: "rescuegrid.db",
		},
	}
}

// Load reads the configuration file at path, applying defaults for any
// field left unset. A missing file returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Engine.TickIntervalRaw != "" {
		d, err := time.ParseDuration(cfg.Engine.TickIntervalRaw)
		if err != nil {
			return cfg, fmt.Errorf("parse engine.tick_interval: %w", err)
		}
		cfg.Engine.TickInterval = d
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.Bus.HistoryCap <= 0 {
		return fmt.Errorf("bus.history_cap must be positive, got %d", c.Bus.HistoryCap)
	}
	if c.Engine.CompactEvery <= 0 {
		return fmt.Errorf("engine.compact_every must be positive, got %d", c.Engine.CompactEvery)
	}
	if c.Engine.KeepRecent < 0 {
		return fmt.Errorf("engine.keep_recent must not be negative, got %d", c.Engine.KeepRecent)
	}
	if c.Engine.TickInterval <= 0 {
		return fmt.Errorf("engine.tick_interval must be positive, got %s", c.Engine.TickInterval)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	if c.Journal.Path == "" {
		return fmt.Errorf("journal.path must not be empty")
	}
	p := c.Simulation.Params
	if p.SeismicThreshold < 0 || p.SeismicThreshold > 1 {
		return fmt.Errorf("simulation.params.seismic_threshold out of range: %v", p.SeismicThreshold)
	}
	if p.RoadBlockChance < 0 || p.RoadBlockChance > 1 {
		return fmt.Errorf("simulation.params.road_block_chance out of range: %v", p.RoadBlockChance)
	}
	if p.RebuildRequired <= 0 {
		return fmt.Errorf("simulation.params.rebuild_required must be positive, got %v", p.RebuildRequired)
	}
	return nil
}
