// Package jobs runs the periodic background work of the API process.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"tripsplit/internal/domain"
)

// Scheduler owns the cron runner for settlement reminders.
type Scheduler struct {
	cron      *cron.Cron
	reminders domain.ReminderService
	logger    *slog.Logger
}

// NewScheduler registers the reminder job on spec, a standard five-field cron expression.
// An empty spec yields a scheduler with no jobs.
func NewScheduler(spec string, reminders domain.ReminderService, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		reminders: reminders,
		logger:    logger,
	}
	if spec == "" {
		logger.Info("settlement reminders disabled")
		return s, nil
	}
	if _, err := s.cron.AddFunc(spec, s.sendReminders); err != nil {
		return nil, fmt.Errorf("schedule settlement reminders %q: %w", spec, err)
	}
	logger.Info("settlement reminders scheduled", "schedule", spec)
	return s, nil
}

func (s *Scheduler) sendReminders() {
	ctx := context.Background()
	sent, err := s.reminders.SendSettlementReminders(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "settlement reminder job failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "settlement reminder job finished", "sent", sent)
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
