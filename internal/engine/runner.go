package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/talgya/rescuegrid/internal/environment"
)

// Runner paces the orchestrator from its own goroutine: one cycle per
// interval while a disaster is active, idling otherwise. The core stays
// callable directly; the runner is just the default driver.
type Runner struct {
	Orch     *Orchestrator
	Env      *environment.Environment
	Interval time.Duration
}

// NewRunner creates a Runner with the given pacing interval.
func NewRunner(orch *Orchestrator, env *environment.Environment, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	return &Runner{Orch: orch, Env: env, Interval: interval}
}

// Run blocks until ctx is cancelled, invoking one cycle per interval. A
// paused orchestrator or idle environment just waits for the next beat.
func (r *Runner) Run(ctx context.Context) {
	slog.Info("simulation runner started", "interval", r.Interval)
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation runner stopped", "cycles", r.Orch.CycleCount())
			return
		case <-ticker.C:
			if r.Orch.IsPaused() || r.Env.CurrentPhase() == environment.PhaseIdle {
				continue
			}
			result := r.Orch.RunCycle()
			slog.Debug("cycle complete", "cycle", result.Cycle, "phase", r.Env.CurrentPhase())
		}
	}
}
