package domain

import (
	"context"
	"time"
)

// Inviter is the user who sent an invitation.
type Inviter struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Invitation offers an email address membership in a trip until ExpiresAt.
// Inviter and the trip fields are filled by the list queries only.
// swagger:model Invitation
type Invitation struct {
	ID              string          `json:"id"`
	TripID          string          `json:"trip_id"`
	Email           string          `json:"email"`
	Role            ParticipantRole `json:"role"`
	InvitedBy       string          `json:"invited_by"`
	ExpiresAt       time.Time       `json:"expires_at"`
	AcceptedAt      *time.Time      `json:"accepted_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Inviter         *Inviter        `json:"inviter,omitempty"`
	TripTitle       string          `json:"trip_title,omitempty"`
	TripDestination string          `json:"trip_destination,omitempty"`
	TripStartDate   *time.Time      `json:"trip_start_date,omitempty"`
	TripEndDate     *time.Time      `json:"trip_end_date,omitempty"`
}

// IsPending reports whether the invitation is neither accepted nor expired at now.
func (i *Invitation) IsPending(now time.Time) bool {
	return i.AcceptedAt == nil && now.Before(i.ExpiresAt)
}

// Identity is the authenticated caller as carried by the access token.
type Identity struct {
	UserID string
	Email  string
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	// Create stores inv with ExpiresAt set from the store clock plus ttl. It fails with
	// ErrAlreadyMember or ErrDuplicateInvitation; the checks and the insert are atomic.
	Create(ctx context.Context, inv *Invitation, ttl time.Duration) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	// Accept marks the invitation accepted at p.JoinedAt and inserts p in one transaction.
	Accept(ctx context.Context, invitationID string, p *Participant) error
	Delete(ctx context.Context, id string) error
	// ListUnacceptedByTripID includes expired invitations so organizers can see and clear them.
	// search matches a substring of the email literally.
	ListUnacceptedByTripID(ctx context.Context, tripID, search string, params PaginationParams) ([]*Invitation, int, error)
	// ListPendingByEmail returns unaccepted, unexpired invitations for email with trip details.
	// Both list queries fill Inviter.
	ListPendingByEmail(ctx context.Context, email string) ([]*Invitation, error)
}

// MembershipService manages invitations and trip participants.
type MembershipService interface {
	CreateInvitation(ctx context.Context, tripID string, inviter Identity, email string, role ParticipantRole) (*Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID string, actor Identity) (*Participant, error)
	DeleteInvitation(ctx context.Context, invitationID, actorID string) error
	ListTripInvitations(ctx context.Context, tripID, actorID, search string, params PaginationParams) ([]*Invitation, int, error)
	ListMyInvitations(ctx context.Context, actor Identity) ([]*Invitation, error)
	ListParticipants(ctx context.Context, tripID, actorID string) ([]*Participant, error)
	RemoveParticipant(ctx context.Context, participantID, actorID string) error
	UpdateParticipantRole(ctx context.Context, participantID string, role ParticipantRole, actorID string) (*Participant, error)
}
