package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	h "tripsplit/internal/delivery/http/helpers"
	"tripsplit/internal/domain"
)

// CreateExpenseRequest is the request body for POST /trips/{tripID}/expenses.
type CreateExpenseRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	// PaidBy defaults to the caller.
	PaidBy string `json:"paid_by"`
	Date   string `json:"date"`
}

// Validate implements Validator.
func (c CreateExpenseRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if !c.Amount.IsPositive() {
		errs = append(errs, "amount must be positive")
	}
	if c.PaidBy != "" && !validUUID(c.PaidBy) {
		errs = append(errs, "paid_by must be a UUID")
	}
	if _, err := parseDate(c.Date); err != nil {
		errs = append(errs, "date must be a date (YYYY-MM-DD)")
	}
	return errs
}

// UpdateExpenseRequest is the request body for PATCH /expenses/{expenseID}.
type UpdateExpenseRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    *string          `json:"currency"`
	Category    *string          `json:"category"`
	PaidBy      *string          `json:"paid_by"`
	Date        *string          `json:"date"`
}

// Validate implements Validator.
func (u UpdateExpenseRequest) Validate() []string {
	var errs []string
	if u.PaidBy != nil && !validUUID(*u.PaidBy) {
		errs = append(errs, "paid_by must be a UUID")
	}
	if u.Date != nil {
		if _, err := parseDate(*u.Date); err != nil {
			errs = append(errs, "date must be a date (YYYY-MM-DD)")
		}
	}
	return errs
}

func (u UpdateExpenseRequest) toDomain() domain.ExpenseUpdate {
	update := domain.ExpenseUpdate{
		Title:       u.Title,
		Description: u.Description,
		Amount:      u.Amount,
		Currency:    u.Currency,
		PaidBy:      u.PaidBy,
	}
	if u.Category != nil {
		c := domain.ExpenseCategory(strings.ToLower(*u.Category))
		update.Category = &c
	}
	if u.Date != nil {
		d, _ := parseDate(*u.Date)
		update.Date = &d
	}
	return update
}

// MarkSplitPaidRequest is the request body for PATCH /splits/{splitID}/paid.
type MarkSplitPaidRequest struct {
	Paid *bool `json:"paid"`
}

// Validate implements Validator.
func (m MarkSplitPaidRequest) Validate() []string {
	if m.Paid == nil {
		return []string{"paid is required"}
	}
	return nil
}

type ExpenseController struct {
	Logger  *slog.Logger
	Service domain.ExpenseService
}

func NewExpenseController(logger *slog.Logger, svc domain.ExpenseService) *ExpenseController {
	return &ExpenseController{Logger: logger, Service: svc}
}

// CreateExpense godoc
// @Summary Record an expense
// @Description Owners, organizers and participants record an expense. The amount is split equally among the trip's current members; the payer's own split starts paid.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Param body body CreateExpenseRequest true "Expense data"
// @Success 201 {object} helpers.APIResponse "data contains the expense with its splits"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /trips/{tripID}/expenses [post]
func (c *ExpenseController) CreateExpense(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	var req CreateExpenseRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	date, _ := parseDate(req.Date)
	exp, err := c.Service.CreateExpense(r.Context(), tripID, caller.UserID, domain.ExpenseInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    domain.ExpenseCategory(strings.ToLower(req.Category)),
		PaidBy:      req.PaidBy,
		Date:        date,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, exp)
}

// ListTripExpenses godoc
// @Summary List a trip's expenses
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the expenses with splits, newest first"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /trips/{tripID}/expenses [get]
func (c *ExpenseController) ListTripExpenses(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	expenses, err := c.Service.ListTripExpenses(r.Context(), tripID, caller.UserID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, expenses)
}

// UpdateExpense godoc
// @Summary Update an expense
// @Description Owners and organizers only. Existing splits are kept as they are.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param expenseID path string true "Expense ID (UUID)"
// @Param body body UpdateExpenseRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated expense"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /expenses/{expenseID} [patch]
func (c *ExpenseController) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, ok := h.PathUUID(w, r, "expenseID")
	if !ok {
		return
	}
	var req UpdateExpenseRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	exp, err := c.Service.UpdateExpense(r.Context(), expenseID, caller.UserID, req.toDomain())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, exp)
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Description Removes the expense and its splits. Owners and organizers only.
// @Tags expenses
// @Security BearerAuth
// @Param expenseID path string true "Expense ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /expenses/{expenseID} [delete]
func (c *ExpenseController) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, ok := h.PathUUID(w, r, "expenseID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteExpense(r.Context(), expenseID, caller.UserID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkSplitPaid godoc
// @Summary Mark a split paid or unpaid
// @Description Any member except guests may settle a split.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param splitID path string true "Split ID (UUID)"
// @Param body body MarkSplitPaidRequest true "Paid flag"
// @Success 200 {object} helpers.APIResponse "data contains the updated split"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /splits/{splitID}/paid [patch]
func (c *ExpenseController) MarkSplitPaid(w http.ResponseWriter, r *http.Request) {
	splitID, ok := h.PathUUID(w, r, "splitID")
	if !ok {
		return
	}
	var req MarkSplitPaidRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	split, err := c.Service.MarkSplitPaid(r.Context(), splitID, *req.Paid, caller.UserID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, split)
}

// TripBalances godoc
// @Summary Trip balances
// @Description Per-member totals and the netted debts still open between members.
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains members and debts"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /trips/{tripID}/balances [get]
func (c *ExpenseController) TripBalances(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	balances, err := c.Service.TripBalances(r.Context(), tripID, caller.UserID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, balances)
}
