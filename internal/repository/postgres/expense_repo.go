package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tripsplit/internal/domain"
)

type expenseRepository struct {
	DB *sql.DB
}

func NewExpenseRepository(db *sql.DB) domain.ExpenseRepository {
	return &expenseRepository{
		DB: db,
	}
}

const expenseColumns = `id, trip_id, title, description, amount, currency, category, paid_by, date, created_by, created_at, updated_at`

const splitColumns = `id, expense_id, user_id, amount, paid, created_at`

func scanExpense(row rowScanner) (*domain.Expense, error) {
	e := &domain.Expense{}
	var desc sql.NullString
	var category string
	err := row.Scan(&e.ID, &e.TripID, &e.Title, &desc, &e.Amount, &e.Currency, &category,
		&e.PaidBy, &e.Date, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Category = domain.ExpenseCategory(category)
	if desc.Valid {
		e.Description = &desc.String
	}
	e.Splits = []*domain.ExpenseSplit{}
	return e, nil
}

func scanSplit(row rowScanner) (*domain.ExpenseSplit, error) {
	s := &domain.ExpenseSplit{}
	if err := row.Scan(&s.ID, &s.ExpenseID, &s.UserID, &s.Amount, &s.Paid, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// Create writes the expense and its splits in a single transaction; a failure on any
// split leaves nothing behind.
func (r *expenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO expenses (trip_id, title, description, amount, currency, category, paid_by, date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, e.TripID, e.Title, e.Description, e.Amount, e.Currency, string(e.Category), e.PaidBy, e.Date, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO expense_splits (expense_id, user_id, amount, paid)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`)
	if err != nil {
		return fmt.Errorf("prepare split insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range e.Splits {
		s.ExpenseID = e.ID
		if err := stmt.QueryRowContext(ctx, s.ExpenseID, s.UserID, s.Amount, s.Paid).Scan(&s.ID, &s.CreatedAt); err != nil {
			return fmt.Errorf("insert split for %s: %w", s.UserID, err)
		}
	}

	return tx.Commit()
}

func (r *expenseRepository) listSplits(ctx context.Context, expenseID string) ([]*domain.ExpenseSplit, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+splitColumns+` FROM expense_splits WHERE expense_id = $1 ORDER BY created_at, id`, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	splits := make([]*domain.ExpenseSplit, 0)
	for rows.Next() {
		s, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	e, err := scanExpense(r.DB.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if e.Splits, err = r.listSplits(ctx, e.ID); err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	return e, nil
}

func (r *expenseRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.Expense, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE trip_id = $1
		ORDER BY date DESC, created_at DESC
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]*domain.Expense, 0)
	byID := make(map[string]*domain.Expense)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	splitRows, err := r.DB.QueryContext(ctx, `
		SELECT s.id, s.expense_id, s.user_id, s.amount, s.paid, s.created_at
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.trip_id = $1
		ORDER BY s.created_at, s.id
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	defer splitRows.Close()
	for splitRows.Next() {
		s, err := scanSplit(splitRows)
		if err != nil {
			return nil, err
		}
		if e, ok := byID[s.ExpenseID]; ok {
			e.Splits = append(e.Splits, s)
		}
	}
	return expenses, splitRows.Err()
}

func (r *expenseRepository) Update(ctx context.Context, id string, u domain.ExpenseUpdate) (*domain.Expense, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Amount != nil {
		add("amount", *u.Amount)
	}
	if u.Currency != nil {
		add("currency", *u.Currency)
	}
	if u.Category != nil {
		add("category", string(*u.Category))
	}
	if u.PaidBy != nil {
		add("paid_by", *u.PaidBy)
	}
	if u.Date != nil {
		add("date", *u.Date)
	}
	if len(args) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE expenses SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), len(args), expenseColumns)
	e, err := scanExpense(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if e.Splits, err = r.listSplits(ctx, e.ID); err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	return e, nil
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *expenseRepository) GetSplitByID(ctx context.Context, id string) (*domain.ExpenseSplit, error) {
	s, err := scanSplit(r.DB.QueryRowContext(ctx, `SELECT `+splitColumns+` FROM expense_splits WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *expenseRepository) SetSplitPaid(ctx context.Context, id string, paid bool) (*domain.ExpenseSplit, error) {
	s, err := scanSplit(r.DB.QueryRowContext(ctx, `
		UPDATE expense_splits SET paid = $2
		WHERE id = $1
		RETURNING `+splitColumns, id, paid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *expenseRepository) ListOutstandingSplits(ctx context.Context) ([]*domain.OutstandingSplit, error) {
	query := `
		SELECT s.id, s.amount, s.user_id, u.email, u.full_name, e.paid_by,
		       e.id, e.title, e.currency, t.id, t.title
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		JOIN trips t ON t.id = e.trip_id
		JOIN users u ON u.id = s.user_id
		WHERE s.paid = FALSE AND s.user_id <> e.paid_by AND t.status <> 'cancelled'
		ORDER BY u.email, t.title, e.date
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.OutstandingSplit, 0)
	for rows.Next() {
		o := &domain.OutstandingSplit{}
		if err := rows.Scan(&o.SplitID, &o.Amount, &o.DebtorID, &o.DebtorEmail, &o.DebtorName, &o.PayerID,
			&o.ExpenseID, &o.ExpenseTitle, &o.Currency, &o.TripID, &o.TripTitle); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
