package domain

import (
	"context"
	"time"
)

// Clock supplies the authoritative current time for expiry decisions.
// The production implementation asks the database, not the host.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}
