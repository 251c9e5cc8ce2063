package adapters

import (
	"context"
	"errors"
	"fmt"

	"openhouse_backend/internal/leads/ports"
	openhouserepo "openhouse_backend/internal/openhouses/repository"

	"github.com/google/uuid"
)

// OpenHouseReaderAdapter implements ports.EventReader using the open-house
// repository.
type OpenHouseReaderAdapter struct {
	repo openhouserepo.EventReader
}

func NewOpenHouseReaderAdapter(repo openhouserepo.EventReader) *OpenHouseReaderAdapter {
	return &OpenHouseReaderAdapter{repo: repo}
}

func (a *OpenHouseReaderAdapter) GetEventSummary(ctx context.Context, eventID uuid.UUID) (ports.EventSummary, error) {
	if a == nil || a.repo == nil {
		return ports.EventSummary{}, fmt.Errorf("open house reader not configured")
	}

	event, err := a.repo.GetByID(ctx, eventID)
	if errors.Is(err, openhouserepo.ErrNotFound) {
		return ports.EventSummary{}, ports.ErrEventNotFound
	}
	if err != nil {
		return ports.EventSummary{}, fmt.Errorf("get open house: %w", err)
	}

	return ports.EventSummary{
		ID:      event.ID,
		AgentID: event.AgentID,
		Address: event.Address,
		Status:  event.Status,
		StartAt: event.StartAt,
		EndAt:   event.EndAt,
	}, nil
}

var _ ports.EventReader = (*OpenHouseReaderAdapter)(nil)
