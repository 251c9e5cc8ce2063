package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"openhouse_backend/internal/email"
	leadrepo "openhouse_backend/internal/leads/repository"
	openhouserepo "openhouse_backend/internal/openhouses/repository"
	"openhouse_backend/internal/openhouses/transport"
	"openhouse_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// flyerLinkTTL keeps the emailed flyer link valid for the longest expiry
// S3 presigning allows.
const flyerLinkTTL = 7 * 24 * time.Hour

// LeadFinder loads the checked-in lead.
type LeadFinder interface {
	GetByID(ctx context.Context, agentID, id uuid.UUID) (leadrepo.Lead, error)
}

// OpenHouseFinder loads the open house and its flyer link.
type OpenHouseFinder interface {
	Lookup(ctx context.Context, id uuid.UUID) (openhouserepo.Event, error)
	FlyerURLForEvent(ctx context.Context, event openhouserepo.Event, ttl time.Duration) (transport.FlyerURLResponse, error)
}

// FollowUpHandler sends the post-visit email for one check-in.
type FollowUpHandler struct {
	leads      LeadFinder
	openHouses OpenHouseFinder
	sender     email.Sender
	log        *logger.Logger
}

func NewFollowUpHandler(leads LeadFinder, openHouses OpenHouseFinder, sender email.Sender, log *logger.Logger) *FollowUpHandler {
	return &FollowUpHandler{leads: leads, openHouses: openHouses, sender: sender, log: log.Named("scheduler")}
}

// ProcessTask implements asynq.Handler. Leads or events that disappeared and
// visitors without email consent are skipped without retry.
func (h *FollowUpHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	leadID, errLead := uuid.Parse(payload.LeadID)
	eventID, errEvent := uuid.Parse(payload.EventID)
	agentID, errAgent := uuid.Parse(payload.AgentID)
	if err := errors.Join(errLead, errEvent, errAgent); err != nil {
		return fmt.Errorf("invalid follow-up ids: %v: %w", err, asynq.SkipRetry)
	}

	lead, err := h.leads.GetByID(ctx, agentID, leadID)
	if errors.Is(err, leadrepo.ErrNotFound) {
		h.log.FollowUp("skipped_no_lead", leadID.String())
		return nil
	}
	if err != nil {
		return fmt.Errorf("load lead: %w", err)
	}

	if lead.Email == nil || *lead.Email == "" || !lead.Payload.Consent.Email {
		h.log.FollowUp("skipped_no_consent", leadID.String())
		return nil
	}

	event, err := h.openHouses.Lookup(ctx, eventID)
	if errors.Is(err, openhouserepo.ErrNotFound) {
		h.log.FollowUp("skipped_no_event", leadID.String(), "event_id", eventID.String())
		return nil
	}
	if err != nil {
		return fmt.Errorf("load open house: %w", err)
	}

	followUp := email.FollowUp{
		ToEmail:         *lead.Email,
		Name:            lead.Payload.Name,
		PropertyAddress: event.Address,
		VisitCount:      lead.VisitNumber,
	}
	if event.FlyerKey != nil {
		flyer, err := h.openHouses.FlyerURLForEvent(ctx, event, flyerLinkTTL)
		if err != nil {
			h.log.Warn("flyer link unavailable for follow-up", "event_id", eventID.String(), "error", err)
		} else {
			followUp.FlyerURL = flyer.URL
		}
	}

	if err := h.sender.SendFollowUpEmail(ctx, followUp); err != nil {
		return fmt.Errorf("send follow-up: %w", err)
	}

	h.log.FollowUp("sent", leadID.String(), "event_id", eventID.String(), "return_visit", followUp.IsReturnVisit())
	return nil
}

var _ asynq.Handler = (*FollowUpHandler)(nil)
