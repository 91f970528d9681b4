package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripsplit/internal/domain"
	"tripsplit/internal/metrics"
)

type reminderService struct {
	expenseRepo  domain.ExpenseRepository
	userRepo     domain.UserRepository
	emailService domain.EmailService
	metrics      *metrics.Metrics
	logger       *slog.Logger
	timeout      time.Duration
}

// NewReminderService returns a ReminderService. timeout bounds each query and each email
// send of a run; the run as a whole is bounded only by the caller's context.
func NewReminderService(expenseRepo domain.ExpenseRepository, userRepo domain.UserRepository, emailService domain.EmailService, m *metrics.Metrics, logger *slog.Logger, timeout time.Duration) domain.ReminderService {
	return &reminderService{
		expenseRepo:  expenseRepo,
		userRepo:     userRepo,
		emailService: emailService,
		metrics:      m,
		logger:       logger,
		timeout:      timeout,
	}
}

// SendSettlementReminders sends one email per debtor listing all of their unpaid splits.
// A failed email is logged and skipped.
func (s *reminderService) SendSettlementReminders(ctx context.Context) (int, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	outstanding, err := s.expenseRepo.ListOutstandingSplits(listCtx)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("list outstanding splits: %w", err)
	}

	payerNames := make(map[string]string)
	payerName := func(id string) string {
		if name, ok := payerNames[id]; ok {
			return name
		}
		name := "a trip member"
		lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
		if u, err := s.userRepo.GetByID(lookupCtx, id); err == nil {
			name = u.DisplayName()
		}
		cancel()
		payerNames[id] = name
		return name
	}

	var order []string
	byDebtor := make(map[string]*domain.SettlementReminderEmailData)
	for _, o := range outstanding {
		data, ok := byDebtor[o.DebtorID]
		if !ok {
			data = &domain.SettlementReminderEmailData{Email: o.DebtorEmail, FullName: o.DebtorName}
			byDebtor[o.DebtorID] = data
			order = append(order, o.DebtorID)
		}
		data.Lines = append(data.Lines, domain.ReminderLine{
			TripTitle:    o.TripTitle,
			ExpenseTitle: o.ExpenseTitle,
			Amount:       o.Amount.StringFixed(2),
			Currency:     o.Currency,
			PayerName:    payerName(o.PayerID),
		})
	}

	sent := 0
	for _, debtorID := range order {
		if ctx.Err() != nil {
			s.logger.WarnContext(ctx, "settlement reminders interrupted", "sent", sent, "debtors", len(order), "error", ctx.Err())
			break
		}
		if err := s.send(ctx, byDebtor[debtorID]); err != nil {
			s.logger.WarnContext(ctx, "settlement reminder failed", "user_id", debtorID, "error", err)
			continue
		}
		sent++
	}
	s.metrics.RemindersSent.Add(float64(sent))
	s.logger.InfoContext(ctx, "settlement reminders sent", "sent", sent, "debtors", len(order))
	return sent, nil
}

func (s *reminderService) send(ctx context.Context, data *domain.SettlementReminderEmailData) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.emailService.SendSettlementReminder(ctx, data)
}
