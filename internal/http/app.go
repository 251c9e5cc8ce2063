// Package http defines how domain modules plug into the gin router built by
// internal/http/router.
package http

import (
	"context"

	"openhouse_backend/platform/config"
	"openhouse_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context with its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the two groups every route hangs off.
type RouterContext struct {
	// Protected is /api/v1 behind AuthRequired; handlers read the agent with
	// httpkit.RequireAgent.
	Protected *gin.RouterGroup
	// Public is /api/v1/public, unauthenticated and rate limited per IP.
	Public *gin.RouterGroup
}

type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	GetCheckInRatePerMinute() float64
	GetCheckInBurst() int
}

// HealthChecker backs /api/ready. *pgxpool.Pool satisfies it.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is what cmd/api hands to router.New.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
	// Context bounds background work started by the router, such as the
	// rate limiter sweeper. Nil disables it.
	Context context.Context
}
