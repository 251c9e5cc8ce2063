// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"openhouse_backend/internal/events"
	apphttp "openhouse_backend/internal/http"
	"openhouse_backend/internal/leads/handler"
	"openhouse_backend/internal/leads/ports"
	"openhouse_backend/internal/leads/repository"
	"openhouse_backend/internal/leads/service"
	"openhouse_backend/platform/config"
	"openhouse_backend/platform/db"
	"openhouse_backend/platform/logger"
	"openhouse_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	public  *handler.PublicHandler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// rdb may be nil unless the config selects the Redis visit tracker.
func NewModule(pool db.Querier, eventReader ports.EventReader, rdb redis.Cmdable, eventBus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	tracker, err := NewVisitTracker(cfg.GetVisitTracker(), repo, rdb, cfg.GetBusinessLocation())
	if err != nil {
		return nil, err
	}

	svc := service.New(repo, eventReader, tracker, eventBus, log,
		service.WithPhoneRegion(cfg.GetPhoneDefaultRegion()),
		service.WithLocation(cfg.GetBusinessLocation()),
	)

	return &Module{
		handler: handler.New(svc, val),
		public:  handler.NewPublicHandler(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterStageRoutes(ctx.Protected.Group("/pipeline"))
	m.handler.RegisterScorecardRoutes(ctx.Protected.Group("/open-houses"))
	m.public.RegisterRoutes(ctx.Public.Group("/open-houses"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
