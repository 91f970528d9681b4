package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TripStatus is the lifecycle state of a trip. Any status may move to any other.
type TripStatus string

const (
	TripStatusPlanning  TripStatus = "planning"
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPlanning, TripStatusActive, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// DefaultCurrency is used when a trip is created without one.
const DefaultCurrency = "USD"

// Trip is a planned journey owned by one user.
// swagger:model Trip
type Trip struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   *string          `json:"description,omitempty"`
	Destination   string           `json:"destination"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       time.Time        `json:"end_date"`
	Budget        *decimal.Decimal `json:"budget,omitempty"`
	Currency      string           `json:"currency"`
	CoverPhotoURL *string          `json:"cover_photo_url,omitempty"`
	Status        TripStatus       `json:"status"`
	OwnerID       string           `json:"owner_id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TripUpdate holds the optional fields of a trip edit; nil fields are left unchanged.
type TripUpdate struct {
	Title         *string
	Description   *string
	Destination   *string
	StartDate     *time.Time
	EndDate       *time.Time
	Budget        *decimal.Decimal
	Currency      *string
	CoverPhotoURL *string
	Status        *TripStatus
}

// TouchesDetails reports whether the update edits anything besides the cover photo and status.
func (u TripUpdate) TouchesDetails() bool {
	return u.Title != nil || u.Description != nil || u.Destination != nil ||
		u.StartDate != nil || u.EndDate != nil || u.Budget != nil || u.Currency != nil
}

// IsEmpty reports whether the update changes nothing.
func (u TripUpdate) IsEmpty() bool {
	return !u.TouchesDetails() && u.CoverPhotoURL == nil && u.Status == nil
}

// TripRepository defines storage operations for trips.
type TripRepository interface {
	// Create inserts the trip and the owner's participant row in one transaction.
	Create(ctx context.Context, trip *Trip, owner *Participant) error
	GetByID(ctx context.Context, id string) (*Trip, error)
	// ListByMember returns trips the user owns or participates in, newest first.
	ListByMember(ctx context.Context, userID string) ([]*Trip, error)
	Update(ctx context.Context, id string, update TripUpdate) (*Trip, error)
	Delete(ctx context.Context, id string) error
}

// TripService defines trip lifecycle operations.
type TripService interface {
	CreateTrip(ctx context.Context, trip *Trip) error
	GetTrip(ctx context.Context, tripID, userID string) (*Trip, error)
	ListMyTrips(ctx context.Context, userID string) ([]*Trip, error)
	UpdateTrip(ctx context.Context, tripID, userID string, update TripUpdate) (*Trip, error)
	DeleteTrip(ctx context.Context, tripID, userID string) error
}
