package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"tripsplit/internal/calculator"
	"tripsplit/internal/domain"
)

type expenseService struct {
	access          accessLoader
	participantRepo domain.ParticipantRepository
	expenseRepo     domain.ExpenseRepository
	contextTimeout  time.Duration
}

func NewExpenseService(tripRepo domain.TripRepository, participantRepo domain.ParticipantRepository, expenseRepo domain.ExpenseRepository, timeout time.Duration) domain.ExpenseService {
	return &expenseService{
		access:          accessLoader{trips: tripRepo, participants: participantRepo},
		participantRepo: participantRepo,
		expenseRepo:     expenseRepo,
		contextTimeout:  timeout,
	}
}

func (s *expenseService) participantIDs(ctx context.Context, tripID string) ([]string, error) {
	participants, err := s.participantRepo.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.UserID
	}
	return ids, nil
}

// CreateExpense splits the amount equally between the trip's current participants and
// stores the expense with its splits atomically. The payer's own split starts out paid.
func (s *expenseService) CreateExpense(ctx context.Context, tripID, creatorID string, in domain.ExpenseInput) (*domain.Expense, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Invalid("title is required")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if in.Category == "" {
		in.Category = domain.CategoryOther
	}
	if !in.Category.Valid() {
		return nil, domain.Invalid("unknown expense category")
	}
	if in.Date.IsZero() {
		return nil, domain.Invalid("date is required")
	}

	trip, err := s.access.require(ctx, tripID, creatorID, domain.CapEditContent)
	if err != nil {
		return nil, err
	}

	ids, err := s.participantIDs(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domain.ErrEmptyParticipantSet
	}
	payer := in.PaidBy
	if payer == "" {
		payer = creatorID
	}
	if !slices.Contains(ids, payer) {
		return nil, domain.ErrPayerNotParticipant
	}

	shares, err := calculator.EqualSplit(in.Amount, ids)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = trip.Currency
	}
	expense := &domain.Expense{
		TripID:      tripID,
		Title:       title,
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    currency,
		Category:    in.Category,
		PaidBy:      payer,
		Date:        in.Date,
		CreatedBy:   creatorID,
		Splits:      make([]*domain.ExpenseSplit, len(shares)),
	}
	for i, share := range shares {
		expense.Splits[i] = &domain.ExpenseSplit{
			UserID: share.UserID,
			Amount: share.Amount,
			Paid:   share.UserID == payer,
		}
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return expense, nil
}

func (s *expenseService) getExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	e, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// UpdateExpense edits the expense row only; existing splits keep their amounts.
func (s *expenseService) UpdateExpense(ctx context.Context, expenseID, actorID string, update domain.ExpenseUpdate) (*domain.Expense, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.getExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.require(ctx, e.TripID, actorID, domain.CapManageExpenses); err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, domain.Invalid("title must not be empty")
		}
		update.Title = &title
	}
	if update.Amount != nil && !update.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if update.Category != nil && !update.Category.Valid() {
		return nil, domain.Invalid("unknown expense category")
	}
	if update.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*update.Currency))
		if currency == "" {
			return nil, domain.Invalid("currency must not be empty")
		}
		update.Currency = &currency
	}
	if update.Date != nil && update.Date.IsZero() {
		return nil, domain.Invalid("date must not be empty")
	}
	if update.PaidBy != nil {
		ids, err := s.participantIDs(ctx, e.TripID)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(ids, *update.PaidBy) {
			return nil, domain.ErrPayerNotParticipant
		}
	}

	updated, err := s.expenseRepo.Update(ctx, expenseID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return updated, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, expenseID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.getExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if _, err := s.access.require(ctx, e.TripID, actorID, domain.CapManageExpenses); err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, expenseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// MarkSplitPaid may be called by any member who can edit trip content, not only the
// split's own user. Concurrent calls resolve last write wins.
func (s *expenseService) MarkSplitPaid(ctx context.Context, splitID string, paid bool, actorID string) (*domain.ExpenseSplit, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	split, err := s.expenseRepo.GetSplitByID(ctx, splitID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get split: %w", err)
	}
	e, err := s.getExpense(ctx, split.ExpenseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.require(ctx, e.TripID, actorID, domain.CapEditContent); err != nil {
		return nil, err
	}
	updated, err := s.expenseRepo.SetSplitPaid(ctx, splitID, paid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set split paid: %w", err)
	}
	return updated, nil
}

func (s *expenseService) ListTripExpenses(ctx context.Context, tripID, actorID string) ([]*domain.Expense, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.require(ctx, tripID, actorID, domain.CapView); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if expenses == nil {
		expenses = []*domain.Expense{}
	}
	return expenses, nil
}

func (s *expenseService) TripBalances(ctx context.Context, tripID, actorID string) (*domain.TripBalances, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.require(ctx, tripID, actorID, domain.CapView); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return calculator.Balances(tripID, expenses), nil
}
