package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email    string
	FullName string
}

// TripInvitationEmailData holds data for the trip invitation email.
type TripInvitationEmailData struct {
	Email       string
	InviterName string
	TripTitle   string
	Destination string
	Role        ParticipantRole
	ExpiresAt   time.Time
	AcceptURL   string
}

// ReminderLine is one unpaid split listed in a settlement reminder.
type ReminderLine struct {
	TripTitle    string
	ExpenseTitle string
	Amount       string
	Currency     string
	PayerName    string
}

// SettlementReminderEmailData holds data for the settlement reminder email.
type SettlementReminderEmailData struct {
	Email    string
	FullName string
	Lines    []ReminderLine
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendTripInvitation(ctx context.Context, data *TripInvitationEmailData) error
	SendSettlementReminder(ctx context.Context, data *SettlementReminderEmailData) error
}

// ReminderService nudges users about splits they have not settled.
type ReminderService interface {
	// SendSettlementReminders emails every user with unpaid splits and returns how many were sent.
	SendSettlementReminders(ctx context.Context) (int, error)
}
