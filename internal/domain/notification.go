package domain

import (
	"context"
	"time"
)

type NotificationType string

const NotificationTripInvite NotificationType = "trip_invite"

// Notification is an in-app message for a user.
// swagger:model Notification
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	TripID    *string          `json:"trip_id,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUserID(ctx context.Context, userID string, params PaginationParams) ([]*Notification, int, error)
	// MarkRead returns ErrNotFound unless the notification belongs to userID.
	MarkRead(ctx context.Context, id, userID string) error
}

type NotificationService interface {
	ListNotifications(ctx context.Context, userID string, params PaginationParams) ([]*Notification, int, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}
