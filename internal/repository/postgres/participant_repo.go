package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tripsplit/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{
		DB: db,
	}
}

const participantSelect = `
	SELECT p.id, p.trip_id, p.user_id, p.role, p.joined_at, u.email, u.full_name
	FROM trip_participants p
	JOIN users u ON u.id = p.user_id
`

func scanParticipant(row rowScanner) (*domain.Participant, error) {
	p := &domain.Participant{}
	var role string
	if err := row.Scan(&p.ID, &p.TripID, &p.UserID, &role, &p.JoinedAt, &p.Email, &p.FullName); err != nil {
		return nil, err
	}
	p.Role = domain.ParticipantRole(role)
	return p, nil
}

func (r *participantRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Participant, error) {
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	return r.getOne(ctx, participantSelect+`WHERE p.id = $1`, id)
}

func (r *participantRepository) GetByTripAndUser(ctx context.Context, tripID, userID string) (*domain.Participant, error) {
	return r.getOne(ctx, participantSelect+`WHERE p.trip_id = $1 AND p.user_id = $2`, tripID, userID)
}

func (r *participantRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.Participant, error) {
	rows, err := r.DB.QueryContext(ctx, participantSelect+`WHERE p.trip_id = $1 ORDER BY p.joined_at, p.id`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *participantRepository) UpdateRole(ctx context.Context, id string, role domain.ParticipantRole) (*domain.Participant, error) {
	query := `
		WITH updated AS (
			UPDATE trip_participants SET role = $2 WHERE id = $1
			RETURNING id, trip_id, user_id, role, joined_at
		)
		SELECT p.id, p.trip_id, p.user_id, p.role, p.joined_at, u.email, u.full_name
		FROM updated p
		JOIN users u ON u.id = p.user_id
	`
	return r.getOne(ctx, query, id, string(role))
}

func (r *participantRepository) Remove(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM trip_participants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
