// Package scheduler runs the recurring write-back sweep, decoupled from any
// inbound request.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"StockPulse/internal/usecase"
	xlogger "StockPulse/pkg/logger"
)

// Scheduler triggers the persister sweep on a fixed interval.
type Scheduler struct {
	cron      *cron.Cron
	persister *usecase.Persister
	interval  time.Duration
	logger    *xlogger.Logger
}

// New creates a Scheduler. Interval defaults to five minutes.
func New(persister *usecase.Persister, interval time.Duration, logger *xlogger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		cron:      cron.New(),
		persister: persister,
		interval:  interval,
		logger:    logger,
	}
}

// Register installs the sweep job.
func (s *Scheduler) Register() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("register persist sweep: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("persistence scheduler started", xlogger.String("interval", s.interval.String()))
}

// Stop stops the scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("persistence scheduler stopped")
}

// tick runs one sweep. Each tick gets a fresh context; a failing group never
// poisons its siblings (the persister isolates transactions per group).
func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	result, err := s.persister.Sweep(ctx)
	if err != nil {
		s.logger.Error("persist sweep failed", xlogger.Error(err))
		return
	}
	if result.Processed == 0 && result.Failed == 0 {
		return
	}
	s.logger.Info("persist sweep complete",
		xlogger.Int("processed", result.Processed),
		xlogger.Int("failed", result.Failed))
}
