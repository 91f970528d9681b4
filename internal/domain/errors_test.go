package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		err      error
		category error
	}{
		{ErrInvalidAmount, ErrValidation},
		{ErrPayerNotParticipant, ErrValidation},
		{ErrEmptyParticipantSet, ErrValidation},
		{ErrInvalidDateRange, ErrValidation},
		{Invalid("title is required"), ErrValidation},
		{ErrAlreadyMember, ErrConflict},
		{ErrDuplicateInvitation, ErrConflict},
		{ErrAlreadyAccepted, ErrConflict},
		{ErrDuplicateEmail, ErrConflict},
		{ErrUserNotFound, ErrNotFound},
		{ErrInvitationExpired, ErrExpired},
		{ErrNotTripMember, ErrForbidden},
		{ErrCannotInvite, ErrForbidden},
		{ErrGuestReadOnly, ErrForbidden},
		{ErrCannotChangeTripStatus, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("create invitation: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.err)
			assert.ErrorIs(t, wrapped, tt.category)
		})
	}
	assert.False(t, errors.Is(ErrAlreadyMember, ErrValidation))
	assert.Equal(t, "user already has a pending invitation", ErrDuplicateInvitation.Error())
}
