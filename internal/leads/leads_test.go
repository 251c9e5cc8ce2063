package leads

import (
	"testing"
	"time"

	"openhouse_backend/internal/leads/visits"
	"openhouse_backend/platform/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVisitTrackerDefaultsToPostgres(t *testing.T) {
	tracker, err := NewVisitTracker("", nil, nil, time.UTC)

	require.NoError(t, err)
	assert.IsType(t, &visits.PostgresTracker{}, tracker)
}

func TestNewVisitTrackerRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tracker, err := NewVisitTracker(config.VisitTrackerRedis, nil, rdb, time.UTC)

	require.NoError(t, err)
	assert.IsType(t, &visits.RedisTracker{}, tracker)
}

func TestNewVisitTrackerRedisNeedsClient(t *testing.T) {
	_, err := NewVisitTracker(config.VisitTrackerRedis, nil, nil, time.UTC)

	assert.Error(t, err)
}

func TestNewVisitTrackerUnknown(t *testing.T) {
	_, err := NewVisitTracker("memcached", nil, nil, time.UTC)

	assert.Error(t, err)
}
