package domain

import (
	"context"
	"time"
)

// ParticipantRole is the role a member holds within a trip.
type ParticipantRole string

const (
	RoleOrganizer   ParticipantRole = "organizer"
	RoleParticipant ParticipantRole = "participant"
	RoleGuest       ParticipantRole = "guest"
)

// Valid reports whether r is a participant role.
func (r ParticipantRole) Valid() bool {
	switch r {
	case RoleOrganizer, RoleParticipant, RoleGuest:
		return true
	}
	return false
}

// ValidForInvitation reports whether r may be offered in an invitation.
// Organizers are only made by promotion.
func (r ParticipantRole) ValidForInvitation() bool {
	return r == RoleParticipant || r == RoleGuest
}

// Participant is a user's membership in a trip. (TripID, UserID) is unique.
// swagger:model Participant
type Participant struct {
	ID       string          `json:"id"`
	TripID   string          `json:"trip_id"`
	UserID   string          `json:"user_id"`
	Role     ParticipantRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
	Email    string          `json:"email,omitempty"`
	FullName string          `json:"full_name,omitempty"`
}

// ParticipantRepository defines storage operations for trip participants.
type ParticipantRepository interface {
	GetByID(ctx context.Context, id string) (*Participant, error)
	GetByTripAndUser(ctx context.Context, tripID, userID string) (*Participant, error)
	ListByTripID(ctx context.Context, tripID string) ([]*Participant, error)
	UpdateRole(ctx context.Context, id string, role ParticipantRole) (*Participant, error)
	Remove(ctx context.Context, id string) error
}
