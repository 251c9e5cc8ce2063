// Package repository persists open-house events.
package repository

import (
	"context"
	"errors"
	"time"

	"openhouse_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("open house not found")

// Event statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusEnded     = "ended"
)

type Event struct {
	ID        uuid.UUID
	AgentID   uuid.UUID
	Address   string
	StartAt   time.Time
	EndAt     time.Time
	Status    string
	FlyerKey  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateEventParams struct {
	AgentID uuid.UUID
	Address string
	StartAt time.Time
	EndAt   time.Time
}

// EventReader provides read access to open houses.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Event, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]Event, error)
}

// EventWriter provides write access to an agent's open houses.
type EventWriter interface {
	Create(ctx context.Context, params CreateEventParams) (Event, error)
	UpdateStatus(ctx context.Context, agentID, id uuid.UUID, status string) (Event, error)
	SetFlyerKey(ctx context.Context, agentID, id uuid.UUID, key string) (Event, error)
}

// EventsRepository composes every open-house store interface.
type EventsRepository interface {
	EventReader
	EventWriter
}

type Repository struct {
	pool db.Querier
}

func New(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

var _ EventsRepository = (*Repository)(nil)

const eventColumns = `id, agent_id, address, start_at, end_at, status, flyer_key, created_at, updated_at`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.AgentID, &e.Address, &e.StartAt, &e.EndAt, &e.Status, &e.FlyerKey, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) Create(ctx context.Context, params CreateEventParams) (Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `
		INSERT INTO open_house_events (agent_id, address, start_at, end_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+eventColumns,
		params.AgentID, params.Address, params.StartAt, params.EndAt,
	))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `
		SELECT `+eventColumns+` FROM open_house_events WHERE id = $1
	`, id))
}

func (r *Repository) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM open_house_events
		WHERE agent_id = $1
		ORDER BY start_at DESC
	`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, agentID, id uuid.UUID, status string) (Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `
		UPDATE open_house_events
		SET status = $3, updated_at = now()
		WHERE id = $1 AND agent_id = $2
		RETURNING `+eventColumns,
		id, agentID, status,
	))
}

func (r *Repository) SetFlyerKey(ctx context.Context, agentID, id uuid.UUID, key string) (Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `
		UPDATE open_house_events
		SET flyer_key = $3, updated_at = now()
		WHERE id = $1 AND agent_id = $2
		RETURNING `+eventColumns,
		id, agentID, key,
	))
}
