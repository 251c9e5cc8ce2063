// Package notification provides event handlers that alert agents and follow
// up with visitors in response to domain events.
// Domain modules publish events; this module owns delivery.
package notification

import (
	"context"
	"fmt"
	"time"

	"openhouse_backend/internal/events"
	apphttp "openhouse_backend/internal/http"
	"openhouse_backend/internal/notification/sse"
	"openhouse_backend/internal/scheduler"
	"openhouse_backend/platform/httpkit"
	"openhouse_backend/platform/logger"

	"github.com/google/uuid"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	followUps     scheduler.FollowUpScheduler
	followUpDelay time.Duration
	sse           *sse.Service
	log           *logger.Logger
	now           func() time.Time
}

// New creates a new notification module. followUps may be nil when Redis is
// not configured; visitor follow-ups are then skipped.
func New(followUps scheduler.FollowUpScheduler, followUpDelay time.Duration, stream *sse.Service, log *logger.Logger) *Module {
	return &Module{
		followUps:     followUps,
		followUpDelay: followUpDelay,
		sse:           stream,
		log:           log.Named("notification"),
		now:           time.Now,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes mounts the agent alert stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.sse == nil {
		return
	}
	ctx.Protected.GET("/notifications/stream", m.sse.Handler(httpkit.AgentFromContext))
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadSubmitted{}.EventName(), m)
	bus.Subscribe(events.ReturnVisitDetected{}.EventName(), m)
	bus.Subscribe(events.PipelineStageChanged{}.EventName(), m)
	bus.Subscribe(events.OpenHousePublished{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadSubmitted:
		return m.handleLeadSubmitted(ctx, e)
	case events.ReturnVisitDetected:
		return m.handleReturnVisitDetected(e)
	case events.PipelineStageChanged:
		m.push(e, e.AgentID, sse.Event{
			Type:   sse.EventLeadStageChanged,
			LeadID: e.LeadID,
			Data:   map[string]string{"oldStage": e.OldStage, "newStage": e.NewStage},
		})
		return nil
	case events.OpenHousePublished:
		m.push(e, e.AgentID, sse.Event{
			Type:    sse.EventOpenHousePublished,
			EventID: e.EventID,
			Message: e.Address,
		})
		return nil
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadSubmitted(ctx context.Context, e events.LeadSubmitted) error {
	m.push(e, e.AgentID, sse.Event{
		Type:    sse.EventLeadCheckedIn,
		LeadID:  e.LeadID,
		EventID: e.EventID,
		Message: e.Name,
		Data: map[string]any{
			"heatScore":   e.HeatScore,
			"bucket":      e.Bucket,
			"redHot":      e.RedHot,
			"visitNumber": e.VisitNumber,
		},
	})

	if e.Email == "" || !e.EmailConsent {
		return nil
	}
	if m.followUps == nil {
		m.log.FollowUp("skipped_scheduler_disabled", e.LeadID.String())
		return nil
	}

	runAt := m.now().Add(m.followUpDelay)
	err := m.followUps.ScheduleFollowUp(ctx, scheduler.FollowUpPayload{
		LeadID:  e.LeadID.String(),
		EventID: e.EventID.String(),
		AgentID: e.AgentID.String(),
	}, runAt)
	if err != nil {
		return fmt.Errorf("schedule follow-up for lead %s: %w", e.LeadID, err)
	}

	m.log.FollowUp("scheduled", e.LeadID.String(), "run_at", runAt)
	return nil
}

func (m *Module) handleReturnVisitDetected(e events.ReturnVisitDetected) error {
	m.log.RedHotLead(e.LeadID.String(), e.EventID.String(), e.AgentID.String(), e.VisitNumber)

	m.push(e, e.AgentID, sse.Event{
		Type:    sse.EventRedHotLead,
		LeadID:  e.LeadID,
		EventID: e.EventID,
		Message: fmt.Sprintf("%s is back for visit #%d", displayName(e.Name), e.VisitNumber),
	})
	return nil
}

// push forwards to the agent's stream, reusing the bus event id so clients
// can drop duplicates after a reconnect.
func (m *Module) push(source events.Event, agentID uuid.UUID, event sse.Event) {
	if m.sse == nil {
		return
	}
	event.ID = source.MessageID()
	m.sse.Publish(agentID, event)
}

func displayName(name string) string {
	if name == "" {
		return "A visitor"
	}
	return name
}

var _ apphttp.Module = (*Module)(nil)
