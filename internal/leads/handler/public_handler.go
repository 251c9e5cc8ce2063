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
	publicMsgInvalidInput   = "Invalid input"
	publicMsgInvalidRequest = "Invalid request"
	msgWelcomeBack          = "Welcome back! Thanks for stopping by again."
	msgThanksForVisiting    = "Thanks for signing in! Enjoy the open house."
)

// CheckInService accepts visitor sign-ins.
type CheckInService interface {
	CheckIn(ctx context.Context, eventID uuid.UUID, req transport.CheckInRequest) (service.CheckInResult, error)
}

var _ CheckInService = (*service.Service)(nil)

// PublicHandler handles unauthenticated check-in endpoints reached from the
// open-house QR code.
type PublicHandler struct {
	svc CheckInService
	val *validator.Validator
}

func NewPublicHandler(svc CheckInService, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

// RegisterRoutes registers check-in routes under /public/open-houses.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:eventId/check-in", h.CheckIn)
}

func (h *PublicHandler) CheckIn(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, publicMsgInvalidRequest, nil)
		return
	}

	var req transport.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, publicMsgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, publicMsgInvalidInput, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.CheckIn(c.Request.Context(), eventID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	message := msgThanksForVisiting
	if result.Resolution.RedHot {
		message = msgWelcomeBack
	}

	httpkit.JSON(c, http.StatusCreated, transport.CheckInResponse{
		LeadID:      result.Lead.ID,
		VisitNumber: result.Lead.VisitNumber,
		WelcomeBack: result.Resolution.RedHot,
		Message:     message,
	})
}
