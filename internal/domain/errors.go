package domain

import "errors"

// Error categories. Handlers map these to HTTP status codes; match with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrExpired    = errors.New("expired")
)

// ErrInvalidCredentials is returned by login when the email or password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Specific errors. Each one unwraps to its category.
var (
	ErrInvalidInput        = newCategorized(ErrValidation, "invalid input")
	ErrInvalidAmount       = newCategorized(ErrValidation, "amount must be greater than zero")
	ErrInvalidDateRange    = newCategorized(ErrValidation, "end date must not be before start date")
	ErrPayerNotParticipant = newCategorized(ErrValidation, "payer is not a participant of this trip")
	ErrEmptyParticipantSet = newCategorized(ErrValidation, "trip has no participants to split the expense between")

	ErrAlreadyMember       = newCategorized(ErrConflict, "user is already a participant in this trip")
	ErrDuplicateInvitation = newCategorized(ErrConflict, "user already has a pending invitation")
	ErrAlreadyAccepted     = newCategorized(ErrConflict, "invitation already accepted")
	ErrDuplicateEmail      = newCategorized(ErrConflict, "email already in use")

	ErrUserNotFound = newCategorized(ErrNotFound, "user not found")

	ErrNotTripMember            = newCategorized(ErrForbidden, "you are not a member of this trip")
	ErrCannotInvite             = newCategorized(ErrForbidden, "only the trip owner or an organizer can invite")
	ErrGuestReadOnly            = newCategorized(ErrForbidden, "guests cannot edit trip content")
	ErrCannotManageParticipants = newCategorized(ErrForbidden, "only the trip owner or an organizer can remove participants")
	ErrCannotManageExpenses     = newCategorized(ErrForbidden, "only the trip owner or an organizer can change or delete expenses")
	ErrCannotEditTripDetails    = newCategorized(ErrForbidden, "only the trip owner or an organizer can edit trip details")
	ErrCannotManageCoverPhoto   = newCategorized(ErrForbidden, "only the trip owner can change the cover photo")
	ErrCannotChangeTripStatus   = newCategorized(ErrForbidden, "only the trip owner can change the trip status")
	ErrCannotChangeRoles        = newCategorized(ErrForbidden, "only the trip owner can change participant roles")
	ErrCannotDeleteTrip         = newCategorized(ErrForbidden, "only the trip owner can delete the trip")

	ErrInvitationExpired = newCategorized(ErrExpired, "invitation has expired")
)

type categorizedError struct {
	category error
	msg      string
}

func newCategorized(category error, msg string) error {
	return &categorizedError{category: category, msg: msg}
}

func (e *categorizedError) Error() string { return e.msg }

func (e *categorizedError) Unwrap() error { return e.category }

// Invalid returns a validation error carrying a request-specific message.
func Invalid(msg string) error {
	return newCategorized(ErrValidation, msg)
}
