package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to an agent's leads.
type LeadReader interface {
	GetByID(ctx context.Context, agentID, id uuid.UUID) (Lead, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]Lead, error)
	ListByEvent(ctx context.Context, agentID, eventID uuid.UUID) ([]Lead, error)
}

// LeadWriter provides write operations for lead submissions.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	UpdateStage(ctx context.Context, agentID, id uuid.UUID, stage string) (Lead, error)
	MarkContacted(ctx context.Context, agentID, eventID, id uuid.UUID, params MarkContactedParams) (Lead, error)
}

// VisitCounter counts submissions used for return-visit detection.
type VisitCounter interface {
	CountVisits(ctx context.Context, params CountVisitsParams) (int, error)
}

// StatsReader provides dashboard aggregates.
type StatsReader interface {
	CountByHeat(ctx context.Context, agentID uuid.UUID, hotThreshold, warmThreshold int) (HeatCounts, error)
	CountSince(ctx context.Context, agentID uuid.UUID, since time.Time) (int, error)
}

// LeadsRepository composes every lead store interface.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	VisitCounter
	StatsReader
}

var _ LeadsRepository = (*Repository)(nil)
