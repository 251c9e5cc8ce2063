package handler

import (
	"context"
	"net/http"

	"openhouse_backend/internal/leads/service"
	"openhouse_backend/internal/leads/transport"
	"openhouse_backend/platform/httpkit"
	"openhouse_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// LeadService is the slice of the leads service used by agent routes.
type LeadService interface {
	GetLead(ctx context.Context, agentID, leadID uuid.UUID) (transport.LeadResponse, error)
	AdvanceStage(ctx context.Context, agentID, leadID uuid.UUID, req transport.AdvanceStageRequest) (transport.AdvanceStageResponse, error)
	Pipeline(ctx context.Context, agentID uuid.UUID) (transport.PipelineResponse, error)
	Stats(ctx context.Context, agentID uuid.UUID) (transport.StatsResponse, error)
	Scorecard(ctx context.Context, agentID, eventID uuid.UUID) (transport.ScorecardResponse, error)
	MarkContacted(ctx context.Context, agentID, eventID uuid.UUID, req transport.MarkContactedRequest) (transport.LeadResponse, error)
}

var _ LeadService = (*service.Service)(nil)

// Handler serves the authenticated agent routes.
type Handler struct {
	svc LeadService
	val *validator.Validator
}

func New(svc LeadService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts lead routes on the /leads group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pipeline", h.Pipeline)
	rg.GET("/stats", h.Stats)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/advance-stage", h.AdvanceStage)
}

// RegisterStageRoutes mounts the stage catalog on the /pipeline group.
func (h *Handler) RegisterStageRoutes(rg *gin.RouterGroup) {
	rg.GET("/stages", h.ListStages)
}

// RegisterScorecardRoutes mounts scorecard routes on the /open-houses group.
func (h *Handler) RegisterScorecardRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/scorecard", h.Scorecard)
	rg.PATCH("/:id/scorecard", h.MarkContacted)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetLead(c.Request.Context(), agentID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) AdvanceStage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	var req transport.AdvanceStageRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.AdvanceStage(c.Request.Context(), agentID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Pipeline(c *gin.Context) {
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	board, err := h.svc.Pipeline(c.Request.Context(), agentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, board)
}

func (h *Handler) Stats(c *gin.Context) {
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), agentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

func (h *Handler) ListStages(c *gin.Context) {
	httpkit.OK(c, gin.H{"stages": service.StageCatalog()})
}

func (h *Handler) Scorecard(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	card, err := h.svc.Scorecard(c.Request.Context(), agentID, eventID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, card)
}

func (h *Handler) MarkContacted(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	var req transport.MarkContactedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	lead, err := h.svc.MarkContacted(c.Request.Context(), agentID, eventID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
