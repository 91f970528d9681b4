package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"tripsplit/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// accessLoader resolves the caller's capabilities on a trip for a single request.
type accessLoader struct {
	trips        domain.TripRepository
	participants domain.ParticipantRepository
}

func (l accessLoader) load(ctx context.Context, tripID, userID string) (*domain.Trip, domain.Access, error) {
	trip, err := l.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Access{}, domain.ErrNotFound
		}
		return nil, domain.Access{}, fmt.Errorf("get trip: %w", err)
	}
	p, err := l.participants.GetByTripAndUser(ctx, tripID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Access{}, fmt.Errorf("get participant: %w", err)
	}
	return trip, domain.NewAccess(trip, userID, p), nil
}

// require loads the trip and fails with the capability's reason unless the caller holds it.
func (l accessLoader) require(ctx context.Context, tripID, userID string, c domain.Capability) (*domain.Trip, error) {
	trip, access, err := l.load(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(c); err != nil {
		return nil, err
	}
	return trip, nil
}
