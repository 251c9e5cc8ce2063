package handler

import (
	"context"
	"net/http"
	"strconv"

	"openhouse_backend/internal/openhouses/service"
	"openhouse_backend/internal/openhouses/transport"
	"openhouse_backend/platform/httpkit"
	"openhouse_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// OpenHouseService is the slice of the open-house service used by HTTP routes.
type OpenHouseService interface {
	Create(ctx context.Context, agentID uuid.UUID, req transport.CreateOpenHouseRequest) (transport.OpenHouseResponse, error)
	Get(ctx context.Context, agentID, id uuid.UUID) (transport.OpenHouseResponse, error)
	List(ctx context.Context, agentID uuid.UUID) (transport.OpenHouseListResponse, error)
	Publish(ctx context.Context, agentID, id uuid.UUID) (transport.OpenHouseResponse, error)
	End(ctx context.Context, agentID, id uuid.UUID) (transport.OpenHouseResponse, error)
	PublicSummary(ctx context.Context, id uuid.UUID) (transport.PublicOpenHouseResponse, error)
	CheckInQRCode(ctx context.Context, agentID, id uuid.UUID, size int) ([]byte, error)
	PresignFlyerUpload(ctx context.Context, agentID, id uuid.UUID, req transport.FlyerUploadRequest) (transport.FlyerURLResponse, error)
	SetFlyer(ctx context.Context, agentID, id uuid.UUID, req transport.SetFlyerRequest) (transport.OpenHouseResponse, error)
	FlyerURL(ctx context.Context, agentID, id uuid.UUID) (transport.FlyerURLResponse, error)
}

var _ OpenHouseService = (*service.Service)(nil)

// Handler serves open-house routes.
type Handler struct {
	svc OpenHouseService
	val *validator.Validator
}

func New(svc OpenHouseService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the agent routes on the /open-houses group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/publish", h.Publish)
	rg.POST("/:id/end", h.End)
	rg.GET("/:id/qr", h.QRCode)
	rg.POST("/:id/flyer/presign", h.PresignFlyer)
	rg.PUT("/:id/flyer", h.SetFlyer)
	rg.GET("/:id/flyer", h.GetFlyer)
}

// RegisterPublicRoutes mounts the visitor-facing routes on /public/open-houses.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/:eventId", h.PublicSummary)
}

func (h *Handler) Create(c *gin.Context) {
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	var req transport.CreateOpenHouseRequest
	if !h.bind(c, &req) {
		return
	}

	event, err := h.svc.Create(c.Request.Context(), agentID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, event)
}

func (h *Handler) List(c *gin.Context) {
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), agentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, list)
}

func (h *Handler) GetByID(c *gin.Context) {
	h.withEvent(c, h.svc.Get)
}

func (h *Handler) Publish(c *gin.Context) {
	h.withEvent(c, h.svc.Publish)
}

func (h *Handler) End(c *gin.Context) {
	h.withEvent(c, h.svc.End)
}

func (h *Handler) QRCode(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "size must be an integer")
			return
		}
		size = parsed
	}

	png, err := h.svc.CheckInQRCode(c.Request.Context(), agentID, id, size)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) PresignFlyer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	var req transport.FlyerUploadRequest
	if !h.bind(c, &req) {
		return
	}

	presigned, err := h.svc.PresignFlyerUpload(c.Request.Context(), agentID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, presigned)
}

func (h *Handler) SetFlyer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	var req transport.SetFlyerRequest
	if !h.bind(c, &req) {
		return
	}

	event, err := h.svc.SetFlyer(c.Request.Context(), agentID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, event)
}

func (h *Handler) GetFlyer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	url, err := h.svc.FlyerURL(c.Request.Context(), agentID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, url)
}

func (h *Handler) PublicSummary(c *gin.Context) {
	id, ok := parseID(c, "eventId")
	if !ok {
		return
	}

	summary, err := h.svc.PublicSummary(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summary)
}

func (h *Handler) withEvent(c *gin.Context, fn func(context.Context, uuid.UUID, uuid.UUID) (transport.OpenHouseResponse, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	agentID, ok := httpkit.RequireAgent(c)
	if !ok {
		return
	}

	event, err := fn(c.Request.Context(), agentID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, event)
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
