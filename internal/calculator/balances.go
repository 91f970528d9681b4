package calculator

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"tripsplit/internal/domain"
)

type pair struct{ from, to string }

// Balances folds a trip's expenses into per-member totals and the debts still open.
//
// The payer of an expense is credited the full amount; every split counts toward its
// user's share. An unpaid split owed by someone other than the payer becomes a debt to
// the payer. Opposite debts between the same two users are netted.
func Balances(tripID string, expenses []*domain.Expense) *domain.TripBalances {
	members := make(map[string]*domain.MemberBalance)
	member := func(id string) *domain.MemberBalance {
		m, ok := members[id]
		if !ok {
			m = &domain.MemberBalance{UserID: id, TotalPaid: decimal.Zero, TotalShare: decimal.Zero, Outstanding: decimal.Zero}
			members[id] = m
		}
		return m
	}
	owed := make(map[pair]decimal.Decimal)

	for _, e := range expenses {
		payer := member(e.PaidBy)
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)
		for _, s := range e.Splits {
			m := member(s.UserID)
			m.TotalShare = m.TotalShare.Add(s.Amount)
			if s.Paid || s.UserID == e.PaidBy {
				continue
			}
			m.Outstanding = m.Outstanding.Add(s.Amount)
			k := pair{from: s.UserID, to: e.PaidBy}
			owed[k] = owed[k].Add(s.Amount)
		}
	}

	out := &domain.TripBalances{
		TripID:  tripID,
		Members: make([]domain.MemberBalance, 0, len(members)),
		Debts:   []domain.Debt{},
	}
	for _, m := range members {
		out.Members = append(out.Members, *m)
	}
	slices.SortFunc(out.Members, func(a, b domain.MemberBalance) int { return cmp.Compare(a.UserID, b.UserID) })

	for k, amt := range owed {
		back := owed[pair{from: k.to, to: k.from}]
		net := amt.Sub(back)
		if net.IsPositive() {
			out.Debts = append(out.Debts, domain.Debt{From: k.from, To: k.to, Amount: net})
		}
	}
	slices.SortFunc(out.Debts, func(a, b domain.Debt) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return out
}
