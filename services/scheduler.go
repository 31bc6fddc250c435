package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PeriodicBiller runs one billing pass over all active customers.
type PeriodicBiller interface {
	GenerateAll(ctx context.Context) (RunSummary, error)
}

// BillingScheduler triggers periodic billing on a cron schedule.
type BillingScheduler struct {
	cron    *cron.Cron
	biller  PeriodicBiller
	logger  *zap.Logger
	timeout time.Duration
}

func NewBillingScheduler(biller PeriodicBiller, location *time.Location, logger *zap.Logger) *BillingScheduler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingScheduler{
		cron:    cron.New(cron.WithLocation(location)),
		biller:  biller,
		logger:  logger.Named("scheduler"),
		timeout: 30 * time.Minute,
	}
}

// Schedule registers the periodic run. schedule uses the standard five-field
// cron format, e.g. "0 6 1 * *" for 06:00 on the first of every month.
func (s *BillingScheduler) Schedule(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return fmt.Errorf("invalid billing schedule %q: %w", schedule, err)
	}
	s.logger.Info("periodic billing scheduled", zap.String("schedule", schedule))
	return nil
}

// RunOnce performs a single billing pass.
func (s *BillingScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Info("starting periodic billing")
	summary, err := s.biller.GenerateAll(ctx)
	if err != nil {
		s.logger.Error("periodic billing aborted", zap.Error(err))
		return
	}
	s.logger.Info("periodic billing completed",
		zap.Int("generated", summary.Generated),
		zap.Int("failed", summary.Failed),
	)
}

func (s *BillingScheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running pass to finish.
func (s *BillingScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("periodic billing still running at shutdown")
	}
}
