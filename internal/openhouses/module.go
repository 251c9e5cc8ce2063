// Package openhouses provides the open-house bounded context module.
package openhouses

import (
	"context"

	"openhouse_backend/internal/adapters/storage"
	"openhouse_backend/internal/events"
	apphttp "openhouse_backend/internal/http"
	"openhouse_backend/internal/openhouses/handler"
	"openhouse_backend/internal/openhouses/repository"
	"openhouse_backend/internal/openhouses/service"
	"openhouse_backend/platform/config"
	"openhouse_backend/platform/db"
	"openhouse_backend/platform/logger"
	"openhouse_backend/platform/validator"
)

// Module is the open-house bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the open-house repository, service and handler. flyers
// may be nil when MinIO is disabled.
func NewModule(pool db.Querier, flyers storage.Store, eventBus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, flyers, cfg.GetAppBaseURL(), eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// EnsureStorage creates the flyer bucket when storage is configured.
func EnsureStorage(ctx context.Context, flyers storage.Store) error {
	if flyers == nil {
		return nil
	}
	return flyers.EnsureBucket(ctx)
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "openhouses"
}

// Service exposes the open-house service to other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts open-house routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/open-houses"))
	m.handler.RegisterPublicRoutes(ctx.Public.Group("/open-houses"))
}

var _ apphttp.Module = (*Module)(nil)
