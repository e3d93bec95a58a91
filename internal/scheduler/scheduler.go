package scheduler

import (
	"context"
	"log/slog"
	"time"

	"jobsift/internal/report"
)

// Pipeline is one full run of the aggregation pipeline.
type Pipeline interface {
	Run(ctx context.Context) (report.Summary, error)
}

// Scheduler owns the watch loop: runs the pipeline once immediately, then
// re-runs it on a fixed interval.
type Scheduler struct {
	pipeline Pipeline
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs the pipeline at the given interval.
func NewScheduler(pipeline Pipeline, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pipeline: pipeline,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the watch loop. It runs one immediate cycle, then ticks on the
// configured interval. A failed cycle is logged and the loop continues; the
// next tick gets a fresh chance. It returns nil when ctx is cancelled
// (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting watch loop", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down watch loop")
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.pipeline.Run(ctx); err != nil {
		s.logger.Error("run failed", "error", err)
	}
}
