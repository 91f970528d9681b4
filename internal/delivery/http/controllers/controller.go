package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	h "tripsplit/internal/delivery/http/helpers"
	"tripsplit/internal/delivery/http/middleware"
	"tripsplit/internal/domain"
)

// callerIdentity returns the authenticated caller or writes 401.
func callerIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
	}
	return id, ok
}

// parseDate parses a calendar date in YYYY-MM-DD form as UTC midnight.
func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
