package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"openhouse_backend/internal/leads/ports"
	"openhouse_backend/internal/leads/repository"
	"openhouse_backend/internal/leads/scoring"
	"openhouse_backend/internal/leads/transport"
	"openhouse_backend/platform/apperr"
	"openhouse_backend/platform/sanitize"

	"github.com/google/uuid"
)

// speedToLeadWindow is the follow-up target tracked on the scorecard.
const speedToLeadWindow = 5 * time.Minute

// Scorecard summarizes sign-ins and follow-up speed for one open house.
func (s *Service) Scorecard(ctx context.Context, agentID, eventID uuid.UUID) (transport.ScorecardResponse, error) {
	event, err := s.ownedEvent(ctx, agentID, eventID)
	if err != nil {
		return transport.ScorecardResponse{}, err
	}

	leads, err := s.repo.ListByEvent(ctx, agentID, eventID)
	if err != nil {
		s.log.DatabaseError("leads.list_by_event", err)
		return transport.ScorecardResponse{}, apperr.Wrap(apperr.KindInternal, "load scorecard", err).WithOp("leads.Scorecard")
	}

	resp := transport.ScorecardResponse{
		EventID:      event.ID,
		Address:      event.Address,
		TotalSignIns: len(leads),
		Leads:        make([]transport.ScorecardLead, 0, len(leads)),
	}

	for _, lead := range leads {
		row := transport.ScorecardLead{
			LeadID:      lead.ID,
			Name:        lead.Payload.Name,
			HeatScore:   lead.HeatScore,
			Bucket:      string(scoring.Triage(lead.Payload, lead.HeatScore)),
			SignedInAt:  lead.CreatedAt,
			ContactedAt: lead.ContactedAt,
		}

		if lead.ContactedAt != nil {
			resp.TotalContacted++
			elapsed := lead.ContactedAt.Sub(lead.CreatedAt)
			minutes := int(elapsed / time.Minute)
			row.ContactedWithin = &minutes
			if elapsed <= speedToLeadWindow {
				resp.ContactedWithin5Min++
			}
		}

		rep := strings.ToLower(strings.TrimSpace(lead.Payload.Representation))
		if hasRealtor(rep) {
			resp.HasRealtor++
		}
		if lookingForAgent(rep) {
			resp.LookingForAgent++
		}

		resp.Leads = append(resp.Leads, row)
	}

	resp.PercentContacted = percent(resp.TotalContacted, resp.TotalSignIns)
	resp.PercentWithin5Min = percent(resp.ContactedWithin5Min, resp.TotalSignIns)
	resp.PercentHasRealtor = percent(resp.HasRealtor, resp.TotalSignIns)
	resp.PercentLooking = percent(resp.LookingForAgent, resp.TotalSignIns)

	return resp, nil
}

// MarkContacted records that the agent reached out to a visitor. A missing
// timestamp means now.
func (s *Service) MarkContacted(ctx context.Context, agentID, eventID uuid.UUID, req transport.MarkContactedRequest) (transport.LeadResponse, error) {
	if _, err := s.ownedEvent(ctx, agentID, eventID); err != nil {
		return transport.LeadResponse{}, err
	}

	contactedAt := s.now()
	if req.ContactedAt != nil {
		contactedAt = *req.ContactedAt
	}

	lead, err := s.repo.MarkContacted(ctx, agentID, eventID, req.LeadID, repository.MarkContactedParams{
		ContactedAt: contactedAt,
		Method:      optional(strings.TrimSpace(req.ContactMethod)),
		Notes:       optional(sanitize.Text(req.Notes)),
	})
	if err != nil {
		return transport.LeadResponse{}, s.mapLeadError(err, "leads.MarkContacted")
	}
	return ToLeadResponse(lead), nil
}

func (s *Service) ownedEvent(ctx context.Context, agentID, eventID uuid.UUID) (ports.EventSummary, error) {
	event, err := s.events.GetEventSummary(ctx, eventID)
	if err != nil {
		if errors.Is(err, ports.ErrEventNotFound) {
			return ports.EventSummary{}, apperr.NotFound("open house not found")
		}
		return ports.EventSummary{}, apperr.Wrap(apperr.KindInternal, "load open house", err)
	}
	if event.AgentID != agentID {
		return ports.EventSummary{}, apperr.Forbidden("open house belongs to another agent")
	}
	return event, nil
}

// Representation answers are free text on older forms, so both checks match
// on substrings rather than the enum values.
func hasRealtor(rep string) bool {
	return strings.Contains(rep, "have") || strings.Contains(rep, "yes") || strings.Contains(rep, "working")
}

func lookingForAgent(rep string) bool {
	return rep == "" || rep == "none" ||
		strings.Contains(rep, "no") || strings.Contains(rep, "looking") || strings.Contains(rep, "need")
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(part)*100/float64(total) + 0.5)
}
