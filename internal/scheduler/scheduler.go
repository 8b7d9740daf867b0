// Package scheduler drives the periodic change-detection cycle.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner is one detection cycle over all saved searches.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler wraps robfig/cron around the change detector.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
}

// New creates a Scheduler that fires every interval. Cycles run
// sequentially; a tick that lands while the previous cycle is still
// going is skipped.
func New(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		runner: runner,
		spec:   fmt.Sprintf("@every %s", interval),
	}
}

// Start registers the job and starts ticking. The first cycle runs
// only after one full interval, so a fresh deployment does not
// re-notify for offers the operator just saw.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	slog.Info("Scheduler started", "spec", s.spec)
	return nil
}

// Stop halts scheduling and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()
	slog.Info("Detection cycle started")
	if err := s.runner.Run(ctx); err != nil {
		slog.Error("Detection cycle finished with errors", "error", err, "duration", time.Since(start))
		return
	}
	slog.Info("Detection cycle finished", "duration", time.Since(start))
}
