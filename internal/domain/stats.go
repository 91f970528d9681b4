package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Stat field names reported in TripStats.Degraded.
const (
	StatTotalTrips        = "total_trips"
	StatActiveTrips       = "active_trips"
	StatTotalParticipants = "total_participants"
	StatTotalExpenses     = "total_expenses"
)

// TripStats is the dashboard summary across every trip a user owns or joined.
// Fields listed in Degraded could not be computed and hold zero.
// swagger:model TripStats
type TripStats struct {
	TotalTrips        int             `json:"total_trips"`
	ActiveTrips       int             `json:"active_trips"`
	TotalParticipants int             `json:"total_participants"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	Degraded          []string        `json:"degraded,omitempty"`
}

// TripSummary is the per-trip cost overview.
// swagger:model TripSummary
type TripSummary struct {
	TripID           string          `json:"trip_id"`
	Currency         string          `json:"currency"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	ParticipantCount int             `json:"participant_count"`
	PerPersonShare   decimal.Decimal `json:"per_person_share"`
}

// StatsRepository runs the independent aggregate queries behind TripStats.
type StatsRepository interface {
	ListOwnedTripIDs(ctx context.Context, userID string) ([]string, error)
	ListParticipantTripIDs(ctx context.Context, userID string) ([]string, error)
	CountTripsByStatus(ctx context.Context, tripIDs []string, status TripStatus) (int, error)
	CountParticipants(ctx context.Context, tripIDs []string) (int, error)
	SumExpenses(ctx context.Context, tripIDs []string) (decimal.Decimal, error)
}

// StatsService computes read-only aggregates.
type StatsService interface {
	// TripStats never fails; unavailable figures are zeroed and named in Degraded.
	TripStats(ctx context.Context, userID string) *TripStats
	TripSummary(ctx context.Context, tripID, userID string) (*TripSummary, error)
}
