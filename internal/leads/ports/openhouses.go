// Package ports defines the interfaces that the leads domain requires from
// other bounded contexts and infrastructure. These interfaces form the
// Anti-Corruption Layer (ACL): the leads domain only knows about the data it
// needs, formatted the way it wants.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEventNotFound is returned by EventReader when no open house matches.
var ErrEventNotFound = errors.New("open house not found")

// Open house statuses the leads domain cares about.
const (
	EventStatusPublished = "published"
)

// EventSummary is the slice of an open house needed to accept a check-in.
type EventSummary struct {
	ID      uuid.UUID
	AgentID uuid.UUID
	Address string
	Status  string
	StartAt time.Time
	EndAt   time.Time
}

// AcceptsCheckIns reports whether visitors may sign in to the event.
func (e EventSummary) AcceptsCheckIns() bool {
	return e.Status == EventStatusPublished
}

// EventReader looks up open houses on behalf of the leads domain.
type EventReader interface {
	GetEventSummary(ctx context.Context, eventID uuid.UUID) (EventSummary, error)
}
