package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tripsplit/internal/domain"
)

const tripColumns = `id, title, description, destination, start_date, end_date, budget, currency,
	cover_photo_url, status, owner_id, created_at, updated_at`

type tripRepository struct {
	DB *sql.DB
}

func NewTripRepository(db *sql.DB) domain.TripRepository {
	return &tripRepository{
		DB: db,
	}
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	t := &domain.Trip{}
	var desc, cover sql.NullString
	var budget decimal.NullDecimal
	var status string
	err := row.Scan(&t.ID, &t.Title, &desc, &t.Destination, &t.StartDate, &t.EndDate, &budget,
		&t.Currency, &cover, &status, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = domain.TripStatus(status)
	if desc.Valid {
		t.Description = &desc.String
	}
	if cover.Valid {
		t.CoverPhotoURL = &cover.String
	}
	if budget.Valid {
		t.Budget = &budget.Decimal
	}
	return t, nil
}

func (r *tripRepository) Create(ctx context.Context, t *domain.Trip, owner *domain.Participant) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO trips (title, description, destination, start_date, end_date, budget, currency, cover_photo_url, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query, t.Title, t.Description, t.Destination, t.StartDate, t.EndDate,
		t.Budget, t.Currency, t.CoverPhotoURL, string(t.Status), t.OwnerID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}

	owner.TripID = t.ID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO trip_participants (trip_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`, owner.TripID, owner.UserID, string(owner.Role)).Scan(&owner.ID, &owner.JoinedAt)
	if err != nil {
		return fmt.Errorf("insert owner participant: %w", err)
	}

	return tx.Commit()
}

func (r *tripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	t, err := scanTrip(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *tripRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE owner_id = $1
		   OR id IN (SELECT trip_id FROM trip_participants WHERE user_id = $1)
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trips := make([]*domain.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (r *tripRepository) Update(ctx context.Context, id string, u domain.TripUpdate) (*domain.Trip, error) {
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
	if u.Destination != nil {
		add("destination", *u.Destination)
	}
	if u.StartDate != nil {
		add("start_date", *u.StartDate)
	}
	if u.EndDate != nil {
		add("end_date", *u.EndDate)
	}
	if u.Budget != nil {
		add("budget", *u.Budget)
	}
	if u.Currency != nil {
		add("currency", *u.Currency)
	}
	if u.CoverPhotoURL != nil {
		add("cover_photo_url", *u.CoverPhotoURL)
	}
	if u.Status != nil {
		add("status", string(*u.Status))
	}
	if len(args) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE trips SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), len(args), tripColumns)
	t, err := scanTrip(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *tripRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
