package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tripsplit/internal/domain"
)

// MembershipConfig holds the tunables of the membership service.
type MembershipConfig struct {
	InvitationTTL  time.Duration
	// AppBaseURL prefixes the accept link in invitation emails.
	AppBaseURL     string
	ContextTimeout time.Duration
}

type membershipService struct {
	access           accessLoader
	participantRepo  domain.ParticipantRepository
	invitationRepo   domain.InvitationRepository
	userRepo         domain.UserRepository
	notificationRepo domain.NotificationRepository
	emailService     domain.EmailService
	clock            domain.Clock
	logger           *slog.Logger
	cfg              MembershipConfig
}

func NewMembershipService(
	tripRepo domain.TripRepository,
	participantRepo domain.ParticipantRepository,
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	notificationRepo domain.NotificationRepository,
	emailService domain.EmailService,
	clock domain.Clock,
	logger *slog.Logger,
	cfg MembershipConfig,
) domain.MembershipService {
	return &membershipService{
		access:           accessLoader{trips: tripRepo, participants: participantRepo},
		participantRepo:  participantRepo,
		invitationRepo:   invitationRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		emailService:     emailService,
		clock:            clock,
		logger:           logger,
		cfg:              cfg,
	}
}

func (s *membershipService) CreateInvitation(ctx context.Context, tripID string, inviter domain.Identity, email string, role domain.ParticipantRole) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ContextTimeout)
	defer cancel()

	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, domain.Invalid("invalid email format")
	}
	if role == "" {
		role = domain.RoleParticipant
	}
	if !role.ValidForInvitation() {
		return nil, domain.Invalid("role must be participant or guest")
	}

	trip, err := s.access.require(ctx, tripID, inviter.UserID, domain.CapInvite)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invitation{
		TripID:    tripID,
		Email:     email,
		Role:      role,
		InvitedBy: inviter.UserID,
	}
	if err := s.invitationRepo.Create(ctx, inv, s.cfg.InvitationTTL); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	inv.TripTitle = trip.Title
	inv.TripDestination = trip.Destination

	s.notifyInvitee(ctx, trip, inv, inviter)
	return inv, nil
}

// notifyInvitee sends the in-app notification and the invitation email. Failures are
// logged and never undo the invitation.
func (s *membershipService) notifyInvitee(ctx context.Context, trip *domain.Trip, inv *domain.Invitation, inviter domain.Identity) {
	inviterName := inviter.Email
	if u, err := s.userRepo.GetByID(ctx, inviter.UserID); err == nil {
		inviterName = u.DisplayName()
	}

	invitee, err := s.userRepo.GetByEmail(ctx, inv.Email)
	switch {
	case err == nil:
		n := &domain.Notification{
			UserID:  invitee.ID,
			TripID:  &trip.ID,
			Type:    domain.NotificationTripInvite,
			Title:   "Trip invitation",
			Message: fmt.Sprintf("%s invited you to %s", inviterName, trip.Title),
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			s.logger.WarnContext(ctx, "invitation notification failed", "invitation_id", inv.ID, "error", err)
		}
	case !errors.Is(err, domain.ErrNotFound):
		s.logger.WarnContext(ctx, "invitee lookup failed", "invitation_id", inv.ID, "error", err)
	}

	data := &domain.TripInvitationEmailData{
		Email:       inv.Email,
		InviterName: inviterName,
		TripTitle:   trip.Title,
		Destination: trip.Destination,
		Role:        inv.Role,
		ExpiresAt:   inv.ExpiresAt,
		AcceptURL:   strings.TrimRight(s.cfg.AppBaseURL, "/") + "/invitations/" + inv.ID,
	}
	if err := s.emailService.SendTripInvitation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "invitation email failed", "invitation_id", inv.ID, "error", err)
	}
}

// AcceptInvitation decides expiry with the store clock. An invitation addressed to
// another email is reported as not found.
func (s *membershipService) AcceptInvitation(ctx context.Context, invitationID string, actor domain.Identity) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ContextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if normalizeEmail(inv.Email) != normalizeEmail(actor.Email) {
		return nil, domain.ErrNotFound
	}

	now, err := s.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("read clock: %w", err)
	}
	if !now.Before(inv.ExpiresAt) {
		return nil, domain.ErrInvitationExpired
	}
	if inv.AcceptedAt != nil {
		return nil, domain.ErrAlreadyAccepted
	}

	p := &domain.Participant{
		TripID:   inv.TripID,
		UserID:   actor.UserID,
		Role:     inv.Role,
		JoinedAt: now,
		Email:    inv.Email,
	}
	if err := s.invitationRepo.Accept(ctx, inv.ID, p); err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrExpired) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	return p, nil
}

func (s *membershipService) DeleteInvitation(ctx context.Context, invitationID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ContextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}
	if _, err := s.access.require(ctx, inv.TripID, actorID, domain.CapInvite); err != nil {
		return err
	}
	if err := s.invitationRepo.Delete(ctx, invitationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

func (s *membershipService) ListTripInvitations(ctx context.Context, tripID, actorID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ContextTimeout)
	defer cancel()

	if _, err := s.access.require(ctx, tripID, actorID, domain.CapInvite); err != nil {
		return nil, 0, err
	}
	invs, total, err := s.invitationRepo.ListUnacceptedByTripID(ctx, tripID, normalizeEmail(search), params.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list trip invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, total, nil
}

func (s *membershipService) ListMyInvitations(ctx context.Context, actor domain.Identity) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ContextTimeout)
	defer cancel()

	invs, err := s.invitationRepo.ListPendingByEmail(ctx, normalizeEmail(actor.Email))
	if err != nil {
		return nil, fmt.Errorf("list my invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

func (s *membershipService) ListParticipants(ctx context.Context, tripID, actorID string) ([]*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ContextTimeout)
	defer cancel()

	if _, err := s.access.require(ctx, tripID, actorID, domain.CapView); err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if participants == nil {
		participants = []*domain.Participant{}
	}
	return participants, nil
}

func (s *membershipService) getParticipant(ctx context.Context, participantID string) (*domain.Participant, error) {
	p, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

// RemoveParticipant leaves the member's historical splits in place.
func (s *membershipService) RemoveParticipant(ctx context.Context, participantID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ContextTimeout)
	defer cancel()

	p, err := s.getParticipant(ctx, participantID)
	if err != nil {
		return err
	}
	trip, err := s.access.require(ctx, p.TripID, actorID, domain.CapManageParticipants)
	if err != nil {
		return err
	}
	if p.UserID == trip.OwnerID {
		return domain.Invalid("the trip owner cannot be removed")
	}
	if err := s.participantRepo.Remove(ctx, participantID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove participant: %w", err)
	}
	return nil
}

// UpdateParticipantRole allows any role, including demoting the last organizer.
func (s *membershipService) UpdateParticipantRole(ctx context.Context, participantID string, role domain.ParticipantRole, actorID string) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ContextTimeout)
	defer cancel()

	if !role.Valid() {
		return nil, domain.Invalid("role must be organizer, participant or guest")
	}
	p, err := s.getParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.require(ctx, p.TripID, actorID, domain.CapChangeRoles); err != nil {
		return nil, err
	}
	updated, err := s.participantRepo.UpdateRole(ctx, participantID, role)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update participant role: %w", err)
	}
	return updated, nil
}
