package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tripsplit/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

const invitationColumns = `id, trip_id, email, role, invited_by, expires_at, accepted_at, created_at`

func scanInvitation(row rowScanner, extra ...any) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var role string
	var acceptedAt sql.NullTime
	dest := append([]any{&inv.ID, &inv.TripID, &inv.Email, &role, &inv.InvitedBy, &inv.ExpiresAt, &acceptedAt, &inv.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	inv.Role = domain.ParticipantRole(role)
	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}
	return inv, nil
}

// Create serializes invitations per (trip, email) with a transaction-scoped advisory
// lock, so the membership and pending checks cannot race with a concurrent insert.
func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation, ttl time.Duration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`, inv.TripID, inv.Email); err != nil {
		return fmt.Errorf("lock invitation key: %w", err)
	}

	var isMember bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM trip_participants p
			JOIN users u ON u.id = p.user_id
			WHERE p.trip_id = $1 AND lower(u.email) = $2
		)
	`, inv.TripID, inv.Email).Scan(&isMember)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if isMember {
		return domain.ErrAlreadyMember
	}

	var hasPending bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM invitations
			WHERE trip_id = $1 AND lower(email) = $2 AND accepted_at IS NULL AND expires_at > NOW()
		)
	`, inv.TripID, inv.Email).Scan(&hasPending)
	if err != nil {
		return fmt.Errorf("check pending invitation: %w", err)
	}
	if hasPending {
		return domain.ErrDuplicateInvitation
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO invitations (trip_id, email, role, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, NOW() + make_interval(secs => $5))
		RETURNING id, expires_at, created_at
	`, inv.TripID, inv.Email, string(inv.Role), inv.InvitedBy, ttl.Seconds()).
		Scan(&inv.ID, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}

	return tx.Commit()
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// Accept flips accepted_at only while the invitation is still pending at p.JoinedAt,
// then inserts the participant. When the guarded update matches nothing, the row is
// re-read to report why.
func (r *invitationRepository) Accept(ctx context.Context, invitationID string, p *domain.Participant) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE invitations SET accepted_at = $2
		WHERE id = $1 AND accepted_at IS NULL AND expires_at > $2
	`, invitationID, p.JoinedAt)
	if err != nil {
		return fmt.Errorf("mark invitation accepted: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		var acceptedAt sql.NullTime
		err := tx.QueryRowContext(ctx, `SELECT accepted_at FROM invitations WHERE id = $1`, invitationID).Scan(&acceptedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if acceptedAt.Valid {
			return domain.ErrAlreadyAccepted
		}
		return domain.ErrInvitationExpired
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO trip_participants (trip_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.TripID, p.UserID, string(p.Role), p.JoinedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("insert participant: %w", err)
	}

	return tx.Commit()
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const listedInvitationColumns = `i.id, i.trip_id, i.email, i.role, i.invited_by, i.expires_at, i.accepted_at, i.created_at,
	u.id, u.email, u.full_name`

func scanListedInvitation(row rowScanner, extra ...any) (*domain.Invitation, error) {
	inviter := &domain.Inviter{}
	inv, err := scanInvitation(row, append([]any{&inviter.ID, &inviter.Email, &inviter.FullName}, extra...)...)
	if err != nil {
		return nil, err
	}
	inv.Inviter = inviter
	return inv, nil
}

// ListUnacceptedByTripID matches search with strpos so % and _ carry no pattern meaning.
func (r *invitationRepository) ListUnacceptedByTripID(ctx context.Context, tripID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	where := `WHERE i.trip_id = $1 AND i.accepted_at IS NULL AND ($2 = '' OR strpos(lower(i.email), lower($2)) > 0)`

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations i `+where, tripID, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + listedInvitationColumns + `
		FROM invitations i
		JOIN users u ON u.id = i.invited_by
		` + where + `
		ORDER BY i.created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.DB.QueryContext(ctx, query, tripID, search, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanListedInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return invs, total, nil
}

func (r *invitationRepository) ListPendingByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + listedInvitationColumns + `,
		       t.title, t.destination, t.start_date, t.end_date
		FROM invitations i
		JOIN trips t ON t.id = i.trip_id
		JOIN users u ON u.id = i.invited_by
		WHERE lower(i.email) = lower($1) AND i.accepted_at IS NULL AND i.expires_at > NOW()
		ORDER BY i.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		var title, destination string
		var start, end time.Time
		inv, err := scanListedInvitation(rows, &title, &destination, &start, &end)
		if err != nil {
			return nil, err
		}
		inv.TripTitle = title
		inv.TripDestination = destination
		inv.TripStartDate = &start
		inv.TripEndDate = &end
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}
