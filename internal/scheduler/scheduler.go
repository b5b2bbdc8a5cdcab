// Package scheduler runs the daily unpaid-marking sweep on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/societyhq/societyd/internal/service"
)

// SweepScheduler triggers the post-cycle unpaid sweep across all societies.
// The sweep itself decides per society whether its payment window has closed,
// so the job can safely run every day.
type SweepScheduler struct {
	cronEngine  *cron.Cron
	maintenance *service.MaintenanceService
	cronSpec    string
}

// New creates a scheduler that runs the sweep per cronSpec,
// e.g. "0 9 * * *" for 09:00 every day.
func New(maintenance *service.MaintenanceService, cronSpec string) *SweepScheduler {
	return &SweepScheduler{
		cronEngine:  cron.New(cron.WithLocation(time.Local)),
		maintenance: maintenance,
		cronSpec:    cronSpec,
	}
}

// Start registers the sweep job and starts the cron engine.
func (s *SweepScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		slog.Info("Unpaid sweep triggered", "cron_spec", s.cronSpec)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.maintenance.SweepAll(ctx)
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	slog.Info("Sweep scheduler started", "cron_spec", s.cronSpec)
	return nil
}

// Stop halts the cron engine and waits for a running sweep to finish.
func (s *SweepScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	slog.Info("Sweep scheduler stopped")
}
