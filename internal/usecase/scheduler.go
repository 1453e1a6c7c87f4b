package usecase

import (
	"context"
	"time"

	"NewsDigest/internal/ports"
)

// Scheduler wires the daily trigger driver with the pipeline runner.
type Scheduler struct {
	driver ports.Scheduler
	runner *Runner
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, runner *Runner) *Scheduler {
	return &Scheduler{driver: driver, runner: runner}
}

// Start registers the runner with the provided trigger driver. Each firing
// performs one full state-machine pass; overlapping triggers are rejected by
// the runner's at-most-one-run rule.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		_ = s.runner.RunOnce(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying trigger driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
