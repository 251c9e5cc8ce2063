package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VisitKey identifies a visitor at one open house. Email is lower-cased and
// Phone is E.164; either may be empty but not both.
type VisitKey struct {
	EventID uuid.UUID
	Email   string
	Phone   string
}

// VisitTracker counts earlier check-ins by the same contact at the same open
// house within the calendar day containing at. Matching is email OR phone.
type VisitTracker interface {
	// ClaimVisit registers this check-in and returns how many check-ins by
	// the same contact preceded it today. Concurrent claims for one contact
	// see distinct counts when the tracker counts atomically.
	ClaimVisit(ctx context.Context, key VisitKey, at time.Time) (int, error)
	// ReleaseVisit undoes a claim whose check-in was not stored.
	ReleaseVisit(ctx context.Context, key VisitKey, at time.Time) error
}
