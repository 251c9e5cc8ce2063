package visits

import (
	"context"
	"testing"
	"time"

	"openhouse_backend/internal/leads/ports"
	"openhouse_backend/internal/leads/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	params repository.CountVisitsParams
	count  int
}

func (r *countingRepo) CountVisits(_ context.Context, params repository.CountVisitsParams) (int, error) {
	r.params = params
	return r.count, nil
}

func TestPostgresTrackerQueriesBusinessDay(t *testing.T) {
	loc, err := time.LoadLocation("Pacific/Honolulu")
	require.NoError(t, err)
	repo := &countingRepo{count: 1}
	tracker := NewPostgresTracker(repo, loc)

	eventID := uuid.New()
	at := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC) // 16:00 on the 14th in Honolulu

	prior, err := tracker.ClaimVisit(context.Background(), ports.VisitKey{EventID: eventID, Email: "v@example.com"}, at)

	require.NoError(t, err)
	assert.Equal(t, 1, prior)
	assert.Equal(t, eventID, repo.params.EventID)
	require.NotNil(t, repo.params.Email)
	assert.Equal(t, "v@example.com", *repo.params.Email)
	assert.Nil(t, repo.params.Phone)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, loc), repo.params.From)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), repo.params.To)
}

func TestDayBoundsDefaultsToUTC(t *testing.T) {
	at := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)

	start, end := DayBounds(at, nil)

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestPostgresTrackerReleaseIsNoop(t *testing.T) {
	tracker := NewPostgresTracker(&countingRepo{}, time.UTC)

	assert.NoError(t, tracker.ReleaseVisit(context.Background(), ports.VisitKey{EventID: uuid.New(), Email: "v@example.com"}, time.Now()))
}
