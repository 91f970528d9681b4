package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies an expense.
type ExpenseCategory string

const (
	CategoryAccommodation ExpenseCategory = "accommodation"
	CategoryTransport     ExpenseCategory = "transport"
	CategoryFood          ExpenseCategory = "food"
	CategoryActivities    ExpenseCategory = "activities"
	CategoryShopping      ExpenseCategory = "shopping"
	CategoryOther         ExpenseCategory = "other"
)

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryAccommodation, CategoryTransport, CategoryFood, CategoryActivities, CategoryShopping, CategoryOther:
		return true
	}
	return false
}

// Expense is a payment made by one participant on behalf of the group.
// swagger:model Expense
type Expense struct {
	ID          string          `json:"id"`
	TripID      string          `json:"trip_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    ExpenseCategory `json:"category"`
	PaidBy      string          `json:"paid_by"`
	Date        time.Time       `json:"date"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Splits      []*ExpenseSplit `json:"splits"`
}

// ExpenseSplit is one participant's share of an expense.
// swagger:model ExpenseSplit
type ExpenseSplit struct {
	ID        string          `json:"id"`
	ExpenseID string          `json:"expense_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Paid      bool            `json:"paid"`
	CreatedAt time.Time       `json:"created_at"`
}

// ExpenseInput is the caller-supplied part of a new expense.
// Empty PaidBy means the creator paid; empty Currency means the trip currency.
type ExpenseInput struct {
	Title       string
	Description *string
	Amount      decimal.Decimal
	Currency    string
	Category    ExpenseCategory
	PaidBy      string
	Date        time.Time
}

// ExpenseUpdate holds the optional fields of an expense edit. Splits are not recomputed.
type ExpenseUpdate struct {
	Title       *string
	Description *string
	Amount      *decimal.Decimal
	Currency    *string
	Category    *ExpenseCategory
	PaidBy      *string
	Date        *time.Time
}

// OutstandingSplit is an unpaid split joined with what a reminder needs to describe it.
type OutstandingSplit struct {
	SplitID      string
	Amount       decimal.Decimal
	DebtorID     string
	DebtorEmail  string
	DebtorName   string
	PayerID      string
	ExpenseID    string
	ExpenseTitle string
	Currency     string
	TripID       string
	TripTitle    string
}

// MemberBalance summarizes one user's position within a trip.
// swagger:model MemberBalance
type MemberBalance struct {
	UserID      string          `json:"user_id"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	TotalShare  decimal.Decimal `json:"total_share"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Debt is an amount one user still owes another across unpaid splits.
// swagger:model Debt
type Debt struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// TripBalances is the settlement view of a trip.
// swagger:model TripBalances
type TripBalances struct {
	TripID  string          `json:"trip_id"`
	Members []MemberBalance `json:"members"`
	Debts   []Debt          `json:"debts"`
}

// ExpenseRepository defines storage operations for expenses and their splits.
type ExpenseRepository interface {
	// Create inserts the expense and all of e.Splits in one transaction.
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, id string) (*Expense, error)
	// ListByTripID returns the trip's expenses with splits, newest date first.
	ListByTripID(ctx context.Context, tripID string) ([]*Expense, error)
	Update(ctx context.Context, id string, update ExpenseUpdate) (*Expense, error)
	Delete(ctx context.Context, id string) error
	GetSplitByID(ctx context.Context, id string) (*ExpenseSplit, error)
	SetSplitPaid(ctx context.Context, id string, paid bool) (*ExpenseSplit, error)
	ListOutstandingSplits(ctx context.Context) ([]*OutstandingSplit, error)
}

// ExpenseService manages the expense ledger of a trip.
type ExpenseService interface {
	CreateExpense(ctx context.Context, tripID, creatorID string, in ExpenseInput) (*Expense, error)
	UpdateExpense(ctx context.Context, expenseID, actorID string, update ExpenseUpdate) (*Expense, error)
	DeleteExpense(ctx context.Context, expenseID, actorID string) error
	MarkSplitPaid(ctx context.Context, splitID string, paid bool, actorID string) (*ExpenseSplit, error)
	ListTripExpenses(ctx context.Context, tripID, actorID string) ([]*Expense, error)
	TripBalances(ctx context.Context, tripID, actorID string) (*TripBalances, error)
}
