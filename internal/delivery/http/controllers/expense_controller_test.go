package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/domain"
)

type fakeExpenseService struct {
	expense  *domain.Expense
	expenses []*domain.Expense
	split    *domain.ExpenseSplit
	balances *domain.TripBalances
	err      error

	gotInput  domain.ExpenseInput
	gotUpdate domain.ExpenseUpdate
	gotPaid   bool
	gotID     string
}

func (f *fakeExpenseService) CreateExpense(_ context.Context, _, _ string, in domain.ExpenseInput) (*domain.Expense, error) {
	f.gotInput = in
	return f.expense, f.err
}

func (f *fakeExpenseService) UpdateExpense(_ context.Context, expenseID, _ string, update domain.ExpenseUpdate) (*domain.Expense, error) {
	f.gotID, f.gotUpdate = expenseID, update
	return f.expense, f.err
}

func (f *fakeExpenseService) DeleteExpense(_ context.Context, expenseID, _ string) error {
	f.gotID = expenseID
	return f.err
}

func (f *fakeExpenseService) MarkSplitPaid(_ context.Context, splitID string, paid bool, _ string) (*domain.ExpenseSplit, error) {
	f.gotID, f.gotPaid = splitID, paid
	return f.split, f.err
}

func (f *fakeExpenseService) ListTripExpenses(_ context.Context, _, _ string) ([]*domain.Expense, error) {
	return f.expenses, f.err
}

func (f *fakeExpenseService) TripBalances(_ context.Context, _, _ string) (*domain.TripBalances, error) {
	return f.balances, f.err
}

func TestExpenseController_CreateExpense(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "created",
			body:       `{"title":"Dinner","amount":"90.00","category":"Food","paid_by":"` + otherID + `","date":"2025-03-02"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "numeric amount",
			body:       `{"title":"Dinner","amount":90,"date":"2025-03-02"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "zero amount",
			body:       `{"title":"Dinner","amount":"0","date":"2025-03-02"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "payer not a uuid",
			body:       `{"title":"Dinner","amount":"10","paid_by":"bob","date":"2025-03-02"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "payer outside trip",
			body:       `{"title":"Dinner","amount":"10","paid_by":"` + otherID + `","date":"2025-03-02"}`,
			err:        domain.ErrPayerNotParticipant,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:        "guest",
			body:        `{"title":"Dinner","amount":"10","date":"2025-03-02"}`,
			err:         domain.ErrGuestReadOnly,
			wantStatus:  http.StatusForbidden,
			wantCode:    "forbidden",
			wantMessage: "guests cannot edit trip content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeExpenseService{expense: &domain.Expense{ID: otherID, Amount: decimal.NewFromInt(90)}, err: tt.err}
			ctrl := NewExpenseController(testLogger, svc)

			w, env := serve(t, "POST /trips/{tripID}/expenses", ctrl.CreateExpense, http.MethodPost, "/trips/"+tripID+"/expenses", tt.body, alice)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(env))
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, env.Error.Message)
			}
			if tt.wantStatus == http.StatusCreated {
				assert.True(t, svc.gotInput.Amount.Equal(decimal.NewFromInt(90)))
				assert.Equal(t, 2, svc.gotInput.Date.Day())
			}
		})
	}
}

func TestExpenseController_CreateExpense_Input(t *testing.T) {
	svc := &fakeExpenseService{expense: &domain.Expense{ID: otherID}}
	ctrl := NewExpenseController(testLogger, svc)

	w, _ := serve(t, "POST /trips/{tripID}/expenses", ctrl.CreateExpense, http.MethodPost, "/trips/"+tripID+"/expenses",
		`{"title":"Dinner","amount":"10.10","category":"Food","paid_by":"`+otherID+`","date":"2025-03-02"}`, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.CategoryFood, svc.gotInput.Category)
	assert.Equal(t, otherID, svc.gotInput.PaidBy)
	assert.Equal(t, "10.1", svc.gotInput.Amount.String())
}

func TestExpenseController_UpdateAndDelete(t *testing.T) {
	svc := &fakeExpenseService{expense: &domain.Expense{ID: otherID, Title: "Lunch"}}
	ctrl := NewExpenseController(testLogger, svc)

	w, _ := serve(t, "PATCH /expenses/{expenseID}", ctrl.UpdateExpense, http.MethodPatch, "/expenses/"+otherID,
		`{"title":"Lunch","category":"FOOD","date":"2025-03-03"}`, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, otherID, svc.gotID)
	require.NotNil(t, svc.gotUpdate.Category)
	assert.Equal(t, domain.CategoryFood, *svc.gotUpdate.Category)
	require.NotNil(t, svc.gotUpdate.Date)
	assert.Equal(t, 3, svc.gotUpdate.Date.Day())
	assert.Nil(t, svc.gotUpdate.Amount)

	w, _ = serve(t, "PATCH /expenses/{expenseID}", ctrl.UpdateExpense, http.MethodPatch, "/expenses/"+otherID, `{"date":"tomorrow"}`, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = serve(t, "DELETE /expenses/{expenseID}", ctrl.DeleteExpense, http.MethodDelete, "/expenses/"+otherID, "", alice)
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.err = errors.New("deadlock detected")
	w, env := serve(t, "DELETE /expenses/{expenseID}", ctrl.DeleteExpense, http.MethodDelete, "/expenses/"+otherID, "", alice)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Error.Message)
}

func TestExpenseController_MarkSplitPaid(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantPaid   bool
	}{
		{name: "paid", body: `{"paid":true}`, wantStatus: http.StatusOK, wantPaid: true},
		{name: "unpaid", body: `{"paid":false}`, wantStatus: http.StatusOK, wantPaid: false},
		{name: "missing flag", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "wrong type", body: `{"paid":"yes"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeExpenseService{split: &domain.ExpenseSplit{ID: otherID, Paid: tt.wantPaid}, gotPaid: !tt.wantPaid}
			ctrl := NewExpenseController(testLogger, svc)

			w, _ := serve(t, "PATCH /splits/{splitID}/paid", ctrl.MarkSplitPaid, http.MethodPatch, "/splits/"+otherID+"/paid", tt.body, alice)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantPaid, svc.gotPaid)
				assert.Equal(t, otherID, svc.gotID)
			}
		})
	}
}

func TestExpenseController_ListAndBalances(t *testing.T) {
	svc := &fakeExpenseService{
		expenses: []*domain.Expense{{ID: otherID, Amount: decimal.RequireFromString("90")}},
		balances: &domain.TripBalances{
			TripID: tripID,
			Debts:  []domain.Debt{{From: otherID, To: aliceID, Amount: decimal.RequireFromString("30")}},
		},
	}
	ctrl := NewExpenseController(testLogger, svc)

	w, env := serve(t, "GET /trips/{tripID}/expenses", ctrl.ListTripExpenses, http.MethodGet, "/trips/"+tripID+"/expenses", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	var expenses []domain.Expense
	require.NoError(t, json.Unmarshal(env.Data, &expenses))
	require.Len(t, expenses, 1)
	assert.Equal(t, "90", expenses[0].Amount.String())

	w, env = serve(t, "GET /trips/{tripID}/balances", ctrl.TripBalances, http.MethodGet, "/trips/"+tripID+"/balances", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	var balances domain.TripBalances
	require.NoError(t, json.Unmarshal(env.Data, &balances))
	require.Len(t, balances.Debts, 1)
	assert.Equal(t, "30", balances.Debts[0].Amount.String())
}
