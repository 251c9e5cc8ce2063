// Package leads provides the open-house lead bounded context: visitor
// check-ins, heat scoring, the agent pipeline and event scorecards.
// This file holds the wiring other packages may depend on.
package leads

import (
	"fmt"
	"time"

	"openhouse_backend/internal/leads/ports"
	"openhouse_backend/internal/leads/repository"
	"openhouse_backend/internal/leads/visits"
	"openhouse_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewVisitTracker picks the same-day visit tracker named by the config.
// The Redis tracker requires a client; the Postgres tracker reads stored
// submissions and needs nothing else.
func NewVisitTracker(kind string, repo repository.VisitCounter, rdb redis.Cmdable, loc *time.Location) (ports.VisitTracker, error) {
	switch kind {
	case "", config.VisitTrackerPostgres:
		return visits.NewPostgresTracker(repo, loc), nil
	case config.VisitTrackerRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis visit tracker requires a redis client")
		}
		return visits.NewRedisTracker(rdb, loc), nil
	default:
		return nil, fmt.Errorf("unknown visit tracker %q", kind)
	}
}
