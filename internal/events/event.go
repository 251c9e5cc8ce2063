// Package events holds the domain events exchanged between the open-house,
// leads and notification modules. The bus itself lives in platform/events.
package events

import (
	"openhouse_backend/platform/events"
	"openhouse_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	InMemoryBus = events.InMemoryBus
	Event       = events.Event
	Bus         = events.Bus
	Publisher   = events.Publisher
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewBaseEventAt = events.NewBaseEventAt
)

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadSubmitted is published after a check-in has been scored and stored.
type LeadSubmitted struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	EventID      uuid.UUID `json:"eventId"`
	AgentID      uuid.UUID `json:"agentId"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	HeatScore    int       `json:"heatScore"`
	Bucket       string    `json:"bucket"`
	RedHot       bool      `json:"redHot"`
	VisitNumber  int       `json:"visitNumber"`
	EmailConsent bool      `json:"emailConsent"`
}

func (e LeadSubmitted) EventName() string { return "leads.lead.submitted" }

// ReturnVisitDetected is published when the same contact checks in again at
// the same open house on the same day.
type ReturnVisitDetected struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	EventID     uuid.UUID `json:"eventId"`
	AgentID     uuid.UUID `json:"agentId"`
	Name        string    `json:"name"`
	VisitNumber int       `json:"visitNumber"`
}

func (e ReturnVisitDetected) EventName() string { return "leads.lead.return_visit" }

// PipelineStageChanged is published when an agent moves a lead.
type PipelineStageChanged struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	AgentID  uuid.UUID `json:"agentId"`
	OldStage string    `json:"oldStage"`
	NewStage string    `json:"newStage"`
}

func (e PipelineStageChanged) EventName() string { return "leads.pipeline.stage_changed" }

// =============================================================================
// Open House Domain Events
// =============================================================================

// OpenHousePublished is published when an agent opens check-in for an event.
type OpenHousePublished struct {
	BaseEvent
	EventID uuid.UUID `json:"eventId"`
	AgentID uuid.UUID `json:"agentId"`
	Address string    `json:"address"`
}

func (e OpenHousePublished) EventName() string { return "openhouses.event.published" }
