package scheduler

import (
	"context"
	"log/slog"
	"time"
)

const DefaultInterval = time.Second

type task interface {
	Tick(ctx context.Context)
}

// Scheduler runs periodic background work. Tasks only hand work over to room
// queues, so a tick never holds up the next one for long.
type Scheduler struct {
	logger   *slog.Logger
	interval time.Duration
	tasks    []task
}

func New(logger *slog.Logger, interval time.Duration, tasks ...task) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Scheduler{
		logger:   logger.With("component", "scheduler"),
		interval: interval,
		tasks:    tasks,
	}
}

// Run - ticks until ctx is cancelled.
func (that *Scheduler) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	log.Info("scheduler started", "interval", that.interval.String())

	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return
		case <-ticker.C:
			that.tick(ctx)
		}
	}
}

func (that *Scheduler) tick(ctx context.Context) {
	for _, t := range that.tasks {
		that.run(ctx, t)
	}
}

// run - a panicking task is logged and skipped until the next tick.
func (that *Scheduler) run(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			that.logger.Error("scheduled task panicked", "panic", r)
		}
	}()

	t.Tick(ctx)
}
