package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripsplit/internal/domain"
)

type tripService struct {
	tripRepo       domain.TripRepository
	access         accessLoader
	contextTimeout time.Duration
}

func NewTripService(tripRepo domain.TripRepository, participantRepo domain.ParticipantRepository, timeout time.Duration) domain.TripService {
	return &tripService{
		tripRepo:       tripRepo,
		access:         accessLoader{trips: tripRepo, participants: participantRepo},
		contextTimeout: timeout,
	}
}

func (s *tripService) CreateTrip(ctx context.Context, trip *domain.Trip) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if trip.OwnerID == "" {
		return domain.Invalid("trip owner is required")
	}
	trip.Title = strings.TrimSpace(trip.Title)
	if trip.Title == "" {
		return domain.Invalid("title is required")
	}
	trip.Destination = strings.TrimSpace(trip.Destination)
	if trip.EndDate.Before(trip.StartDate) {
		return domain.ErrInvalidDateRange
	}
	if trip.Budget != nil && trip.Budget.IsNegative() {
		return domain.Invalid("budget must not be negative")
	}
	trip.Currency = strings.ToUpper(strings.TrimSpace(trip.Currency))
	if trip.Currency == "" {
		trip.Currency = domain.DefaultCurrency
	}
	if trip.Status == "" {
		trip.Status = domain.TripStatusPlanning
	}
	if !trip.Status.Valid() {
		return domain.Invalid("unknown trip status")
	}

	owner := &domain.Participant{UserID: trip.OwnerID, Role: domain.RoleOrganizer}
	if err := s.tripRepo.Create(ctx, trip, owner); err != nil {
		return fmt.Errorf("create trip: %w", err)
	}
	return nil
}

func (s *tripService) GetTrip(ctx context.Context, tripID, userID string) (*domain.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.access.require(ctx, tripID, userID, domain.CapView)
}

func (s *tripService) ListMyTrips(ctx context.Context, userID string) ([]*domain.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	trips, err := s.tripRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	if trips == nil {
		trips = []*domain.Trip{}
	}
	return trips, nil
}

// UpdateTrip checks each part of the update against its own capability: details for
// owners and organizers, cover photo and status for the owner alone.
func (s *tripService) UpdateTrip(ctx context.Context, tripID, userID string, update domain.TripUpdate) (*domain.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	trip, access, err := s.access.load(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	checks := []domain.Capability{domain.CapView}
	if update.TouchesDetails() {
		checks = append(checks, domain.CapEditTripDetails)
	}
	if update.CoverPhotoURL != nil {
		checks = append(checks, domain.CapManageCoverPhoto)
	}
	if update.Status != nil {
		checks = append(checks, domain.CapChangeTripStatus)
	}
	for _, c := range checks {
		if err := access.Check(c); err != nil {
			return nil, err
		}
	}
	if update.IsEmpty() {
		return trip, nil
	}
	if err := validateTripUpdate(trip, &update); err != nil {
		return nil, err
	}

	updated, err := s.tripRepo.Update(ctx, tripID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update trip: %w", err)
	}
	return updated, nil
}

func validateTripUpdate(current *domain.Trip, u *domain.TripUpdate) error {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return domain.Invalid("title must not be empty")
		}
		u.Title = &title
	}
	if u.Status != nil && !u.Status.Valid() {
		return domain.Invalid("unknown trip status")
	}
	if u.Budget != nil && u.Budget.IsNegative() {
		return domain.Invalid("budget must not be negative")
	}
	if u.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*u.Currency))
		if currency == "" {
			return domain.Invalid("currency must not be empty")
		}
		u.Currency = &currency
	}
	start, end := current.StartDate, current.EndDate
	if u.StartDate != nil {
		start = *u.StartDate
	}
	if u.EndDate != nil {
		end = *u.EndDate
	}
	if end.Before(start) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

func (s *tripService) DeleteTrip(ctx context.Context, tripID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.require(ctx, tripID, userID, domain.CapDeleteTrip); err != nil {
		return err
	}
	if err := s.tripRepo.Delete(ctx, tripID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}
