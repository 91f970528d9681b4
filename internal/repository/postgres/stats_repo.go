package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"tripsplit/internal/domain"
)

type statsRepository struct {
	DB *sql.DB
}

// NewStatsRepository returns the aggregate queries used by the dashboard. Each method
// is a single statement so callers can treat failures independently.
func NewStatsRepository(db *sql.DB) domain.StatsRepository {
	return &statsRepository{DB: db}
}

func (r *statsRepository) listIDs(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *statsRepository) ListOwnedTripIDs(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT id FROM trips WHERE owner_id = $1`, userID)
}

func (r *statsRepository) ListParticipantTripIDs(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT trip_id FROM trip_participants WHERE user_id = $1`, userID)
}

func (r *statsRepository) CountTripsByStatus(ctx context.Context, tripIDs []string, status domain.TripStatus) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips WHERE id = ANY($1::uuid[]) AND status = $2`,
		pq.Array(tripIDs), string(status)).Scan(&n)
	return n, err
}

func (r *statsRepository) CountParticipants(ctx context.Context, tripIDs []string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM trip_participants WHERE trip_id = ANY($1::uuid[])`,
		pq.Array(tripIDs)).Scan(&n)
	return n, err
}

func (r *statsRepository) SumExpenses(ctx context.Context, tripIDs []string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.DB.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE trip_id = ANY($1::uuid[])`,
		pq.Array(tripIDs)).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
