package service

import (
	"context"
	"errors"
	"log/slog"

	"openhouse_backend/internal/events"
	"openhouse_backend/internal/leads/domain"
	"openhouse_backend/internal/leads/ports"
	"openhouse_backend/internal/leads/repository"
	"openhouse_backend/internal/leads/scoring"
	"openhouse_backend/internal/leads/transport"
	"openhouse_backend/platform/apperr"
	"openhouse_backend/platform/sanitize"

	"github.com/google/uuid"
)

// CheckInResult is a stored check-in with its scoring outcome.
type CheckInResult struct {
	Lead       repository.Lead
	Resolution scoring.Resolution
	Bucket     scoring.Bucket
	Event      ports.EventSummary
}

// CheckIn scores and stores a visitor sign-in at a published open house.
// A second sign-in by the same contact at the same event on the same
// business day is pinned to the maximum score and flagged red hot.
func (s *Service) CheckIn(ctx context.Context, eventID uuid.UUID, req transport.CheckInRequest) (CheckInResult, error) {
	event, err := s.events.GetEventSummary(ctx, eventID)
	if err != nil {
		if errors.Is(err, ports.ErrEventNotFound) {
			return CheckInResult{}, apperr.NotFound("open house not found")
		}
		return CheckInResult{}, apperr.Wrap(apperr.KindInternal, "load open house", err).WithOp("leads.CheckIn")
	}
	if !event.AcceptsCheckIns() {
		return CheckInResult{}, apperr.Conflict("open house is not accepting check-ins")
	}

	payload := s.toPayload(req)
	if payload.Email == "" && payload.PhoneE164 == "" {
		return CheckInResult{}, apperr.Validation("email or phone is required")
	}
	if req.Phone != "" && !s.phones.Valid(req.Phone) {
		s.log.WithContext(ctx).Info("check-in phone stored as entered",
			slog.String("event_id", event.ID.String()), slog.String("region", s.phones.Region()))
	}

	now := s.now()
	key := ports.VisitKey{EventID: event.ID, Email: payload.Email, Phone: payload.PhoneE164}

	claimed := true
	prior, err := s.visits.ClaimVisit(ctx, key, now)
	if err != nil {
		// A tracker outage must not block sign-ins; score as a first visit.
		s.log.WithContext(ctx).Warn("visit lookup failed", slog.String("event_id", event.ID.String()), slog.String("error", err.Error()))
		prior, claimed = 0, false
	}

	resolution := scoring.ResolveScore(payload, prior > 0)
	bucket := scoring.Triage(payload, resolution.Score)

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		EventID:       event.ID,
		AgentID:       event.AgentID,
		Payload:       payload,
		Email:         optional(payload.Email),
		PhoneE164:     optional(payload.PhoneE164),
		HeatScore:     resolution.Score,
		RedHot:        resolution.RedHot,
		VisitNumber:   prior + 1,
		PipelineStage: string(domain.InitialStage()),
	})
	if err != nil {
		s.log.DatabaseError("leads.create", err)
		if claimed {
			if rerr := s.visits.ReleaseVisit(ctx, key, now); rerr != nil {
				s.log.WithContext(ctx).Warn("visit release failed", slog.String("event_id", event.ID.String()), slog.String("error", rerr.Error()))
			}
		}
		return CheckInResult{}, apperr.Wrap(apperr.KindInternal, "store check-in", err).WithOp("leads.CheckIn")
	}

	s.log.WithContext(ctx).LeadScored(lead.ID.String(), event.ID.String(), resolution.Score, string(bucket), resolution.RedHot)

	s.bus.Publish(ctx, events.LeadSubmitted{
		BaseEvent:    events.NewBaseEventAt(now),
		LeadID:       lead.ID,
		EventID:      event.ID,
		AgentID:      event.AgentID,
		Name:         payload.Name,
		Email:        payload.Email,
		Phone:        payload.PhoneE164,
		HeatScore:    resolution.Score,
		Bucket:       string(bucket),
		RedHot:       resolution.RedHot,
		VisitNumber:  lead.VisitNumber,
		EmailConsent: payload.Consent.Email,
	})
	if resolution.RedHot {
		s.bus.Publish(ctx, events.ReturnVisitDetected{
			BaseEvent:   events.NewBaseEventAt(now),
			LeadID:      lead.ID,
			EventID:     event.ID,
			AgentID:     event.AgentID,
			Name:        payload.Name,
			VisitNumber: lead.VisitNumber,
		})
	}

	return CheckInResult{
		Lead:       lead,
		Resolution: resolution,
		Bucket:     bucket,
		Event:      event,
	}, nil
}

func (s *Service) toPayload(req transport.CheckInRequest) scoring.LeadPayload {
	return scoring.LeadPayload{
		Name:               sanitize.Text(req.Name),
		Email:              sanitize.Email(req.Email),
		PhoneE164:          s.phones.E164(req.Phone),
		Representation:     sanitize.Text(req.Representation),
		WantsAgentReachOut: req.WantsAgentReachOut,
		Timeline:           sanitize.Text(req.Timeline),
		Financing:          sanitize.Text(req.Financing),
		Neighborhoods:      sanitize.Text(req.Neighborhoods),
		MustHaves:          sanitize.Text(req.MustHaves),
		Consent: scoring.Consent{
			SMS:   req.Consent.SMS,
			Email: req.Consent.Email,
		},
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
