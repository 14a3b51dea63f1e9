// Command rescuegrid runs the multi-agent disaster response simulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/rescuegrid/internal/api"
	"github.com/talgya/rescuegrid/internal/bus"
	"github.com/talgya/rescuegrid/internal/config"
	"github.com/talgya/rescuegrid/internal/engine"
	"github.com/talgya/rescuegrid/internal/entropy"
	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/persistence"
	"github.com/talgya/rescuegrid/internal/world"
)

func main() {
	configPath := flag.String("config", "rescuegrid.yaml", "path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("RescueGrid — Multi-Agent Disaster Response Coordination")

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	slog.Info("configuration loaded", "path", *configPath, "seed", seed, "auto_retrigger", cfg.Simulation.AutoRetrigger)

	// ── Session Journal ──────────────────────────────────────────────
	if dir := filepath.Dir(cfg.Journal.Path); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	journal, err := persistence.Open(cfg.Journal.Path)
	if err != nil {
		slog.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()
	slog.Info("journal opened", "path", cfg.Journal.Path)

	// ── City Graph & Environment ─────────────────────────────────────
	graph := world.Karachi()
	slog.Info("city graph loaded", "nodes", len(graph.Nodes), "edges", len(graph.Edges))

	rng := entropy.NewSource(seed)
	env := environment.New(graph, environment.Config{
		Params:        cfg.Simulation.Params,
		AutoRetrigger: cfg.Simulation.AutoRetrigger,
		Rand:          rng,
	})

	// ── Message Bus & Orchestrator ───────────────────────────────────
	msgBus := bus.New(cfg.Bus.HistoryCap)
	orch := engine.New(env, msgBus, engine.Options{
		Recorder:     journal,
		Rand:         rng,
		NoiseSeed:    seed,
		CompactEvery: cfg.Engine.CompactEvery,
		KeepRecent:   cfg.Engine.KeepRecent,
	})

	// ── HTTP API ─────────────────────────────────────────────────────
	apiServer := &api.Server{
		Orch:    orch,
		Env:     env,
		Bus:     msgBus,
		Journal: journal,
		Port:    cfg.API.Port,
	}
	apiServer.Start()

	// ── Run ──────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	fmt.Printf("\nRescueGrid ready: %d districts, command center at %s.\n",
		len(graph.Nodes), graph.Nodes[world.CommandCenter].Name)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Trigger a disaster with POST /api/v1/start. (Ctrl+C to stop)")

	runner := engine.NewRunner(orch, env, cfg.Engine.TickInterval)
	runner.Run(ctx)

	fmt.Println("Simulation stopped.")
}
