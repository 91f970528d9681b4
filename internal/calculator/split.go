// Package calculator holds the money arithmetic of the expense ledger.
package calculator

import (
	"github.com/shopspring/decimal"

	"tripsplit/internal/domain"
)

// Share is one user's portion of an expense.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// EqualSplit divides amount evenly between userIDs, in order.
// The quotient uses decimal.DivisionPrecision digits; any remainder is not redistributed.
func EqualSplit(amount decimal.Decimal, userIDs []string) ([]Share, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if len(userIDs) == 0 {
		return nil, domain.ErrEmptyParticipantSet
	}
	share := amount.Div(decimal.NewFromInt(int64(len(userIDs))))
	shares := make([]Share, len(userIDs))
	for i, id := range userIDs {
		shares[i] = Share{UserID: id, Amount: share}
	}
	return shares, nil
}

// PerPersonShare returns total divided by count, or zero when count is not positive.
func PerPersonShare(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}
