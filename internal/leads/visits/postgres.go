package visits

import (
	"context"
	"time"

	"openhouse_backend/internal/leads/ports"
	"openhouse_backend/internal/leads/repository"
)

// PostgresTracker derives visit counts from stored lead submissions. The
// count and the later insert are separate statements, so two simultaneous
// check-ins by one contact can both count as first visits; the Redis tracker
// does not have that gap.
type PostgresTracker struct {
	repo repository.VisitCounter
	loc  *time.Location
}

func NewPostgresTracker(repo repository.VisitCounter, loc *time.Location) *PostgresTracker {
	return &PostgresTracker{repo: repo, loc: loc}
}

func (t *PostgresTracker) ClaimVisit(ctx context.Context, key ports.VisitKey, at time.Time) (int, error) {
	from, to := DayBounds(at, t.loc)
	return t.repo.CountVisits(ctx, repository.CountVisitsParams{
		EventID: key.EventID,
		Email:   optional(key.Email),
		Phone:   optional(key.Phone),
		From:    from,
		To:      to,
	})
}

// ReleaseVisit is a no-op: the submission row is the record, and it was
// never written.
func (t *PostgresTracker) ReleaseVisit(context.Context, ports.VisitKey, time.Time) error {
	return nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

var _ ports.VisitTracker = (*PostgresTracker)(nil)
