package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/domain"
)

var participantRowColumns = []string{"id", "trip_id", "user_id", "role", "joined_at", "email", "full_name"}

func TestParticipantRepository_ListByTripID(t *testing.T) {
	ctx := context.Background()
	joined := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		mock func(mock sqlmock.Sqlmock)
		want []*domain.Participant
	}{
		{
			name: "success returns participants",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT p.id, p.trip_id, p.user_id, p.role, p.joined_at, u.email, u.full_name FROM trip_participants p JOIN users u`).
					WithArgs("trip-1").
					WillReturnRows(sqlmock.NewRows(participantRowColumns).
						AddRow("p-1", "trip-1", "user-a", "organizer", joined, "alice@example.com", "Alice").
						AddRow("p-2", "trip-1", "user-b", "guest", joined, "bob@example.com", ""))
			},
			want: []*domain.Participant{
				{ID: "p-1", TripID: "trip-1", UserID: "user-a", Role: domain.RoleOrganizer, JoinedAt: joined, Email: "alice@example.com", FullName: "Alice"},
				{ID: "p-2", TripID: "trip-1", UserID: "user-b", Role: domain.RoleGuest, JoinedAt: joined, Email: "bob@example.com"},
			},
		},
		{
			name: "success empty",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM trip_participants p`).
					WithArgs("trip-1").
					WillReturnRows(sqlmock.NewRows(participantRowColumns))
			},
			want: []*domain.Participant{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewParticipantRepository(db)
			got, err := repo.ListByTripID(ctx, "trip-1")
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestParticipantRepository_GetByTripAndUser_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE p.trip_id = \$1 AND p.user_id = \$2`).
		WithArgs("trip-1", "stranger").
		WillReturnRows(sqlmock.NewRows(participantRowColumns))

	_, err = NewParticipantRepository(db).GetByTripAndUser(context.Background(), "trip-1", "stranger")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepository_UpdateRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	joined := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE trip_participants SET role = \$2 WHERE id = \$1`).
		WithArgs("p-2", "organizer").
		WillReturnRows(sqlmock.NewRows(participantRowColumns).
			AddRow("p-2", "trip-1", "user-b", "organizer", joined, "bob@example.com", "Bob"))

	p, err := NewParticipantRepository(db).UpdateRole(context.Background(), "p-2", domain.RoleOrganizer)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOrganizer, p.Role)
	require.Equal(t, "bob@example.com", p.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepository_Remove(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "success", rows: 1},
		{name: "no row returns ErrNotFound", rows: 0, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`DELETE FROM trip_participants WHERE id = \$1`).
				WithArgs("p-1").
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err = NewParticipantRepository(db).Remove(ctx, "p-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
