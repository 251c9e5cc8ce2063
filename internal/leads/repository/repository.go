package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"openhouse_backend/internal/leads/scoring"
	"openhouse_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool db.Querier
}

func New(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	AgentID       uuid.UUID
	Payload       scoring.LeadPayload
	Email         *string
	PhoneE164     *string
	HeatScore     int
	RedHot        bool
	VisitNumber   int
	PipelineStage string
	ContactedAt   *time.Time
	ContactMethod *string
	ContactNotes  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CreateLeadParams struct {
	EventID       uuid.UUID
	AgentID       uuid.UUID
	Payload       scoring.LeadPayload
	Email         *string
	PhoneE164     *string
	HeatScore     int
	RedHot        bool
	VisitNumber   int
	PipelineStage string
}

type MarkContactedParams struct {
	ContactedAt time.Time
	Method      *string
	Notes       *string
}

// CountVisitsParams selects submissions at one event by email OR phone
// created in [From, To).
type CountVisitsParams struct {
	EventID uuid.UUID
	Email   *string
	Phone   *string
	From    time.Time
	To      time.Time
}

// HeatCounts are per-level lead totals for one agent. Hot, Warm and Cold
// exclude do-not-contact leads.
type HeatCounts struct {
	Total  int
	Hot    int
	Warm   int
	Cold   int
	DNC    int
	RedHot int
}

const leadColumns = `id, event_id, agent_id, payload, email, phone_e164, heat_score, red_hot,
	visit_number, pipeline_stage, contacted_at, contact_method, contact_notes, created_at, updated_at`

// dncPredicate matches visitors that already have a buyer's agent.
const dncPredicate = `lower(trim(coalesce(payload->>'representation', ''))) = 'yes'`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	var payload []byte
	err := row.Scan(
		&lead.ID, &lead.EventID, &lead.AgentID, &payload, &lead.Email, &lead.PhoneE164,
		&lead.HeatScore, &lead.RedHot, &lead.VisitNumber, &lead.PipelineStage,
		&lead.ContactedAt, &lead.ContactMethod, &lead.ContactNotes, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return Lead{}, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &lead.Payload); err != nil {
			return Lead{}, fmt.Errorf("decode lead payload: %w", err)
		}
	}
	return lead, nil
}

func scanOne(row pgx.Row) (Lead, error) {
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	payload, err := json.Marshal(params.Payload)
	if err != nil {
		return Lead{}, fmt.Errorf("encode lead payload: %w", err)
	}

	return scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO lead_submissions (
			event_id, agent_id, payload, email, phone_e164, heat_score, red_hot, visit_number, pipeline_stage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+leadColumns,
		params.EventID, params.AgentID, payload, params.Email, params.PhoneE164,
		params.HeatScore, params.RedHot, params.VisitNumber, params.PipelineStage,
	))
}

func (r *Repository) GetByID(ctx context.Context, agentID, id uuid.UUID) (Lead, error) {
	return scanOne(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM lead_submissions
		WHERE id = $1 AND agent_id = $2
	`, id, agentID))
}

// ListByAgent returns the agent's leads ordered by heat score, hottest first.
func (r *Repository) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM lead_submissions
		WHERE agent_id = $1
		ORDER BY heat_score DESC, created_at DESC
	`, agentID)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// ListByEvent returns one open house's sign-ins in arrival order.
func (r *Repository) ListByEvent(ctx context.Context, agentID, eventID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM lead_submissions
		WHERE agent_id = $1 AND event_id = $2
		ORDER BY created_at ASC
	`, agentID, eventID)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *Repository) UpdateStage(ctx context.Context, agentID, id uuid.UUID, stage string) (Lead, error) {
	return scanOne(r.pool.QueryRow(ctx, `
		UPDATE lead_submissions
		SET pipeline_stage = $3, updated_at = now()
		WHERE id = $1 AND agent_id = $2
		RETURNING `+leadColumns,
		id, agentID, stage,
	))
}

func (r *Repository) MarkContacted(ctx context.Context, agentID, eventID, id uuid.UUID, params MarkContactedParams) (Lead, error) {
	return scanOne(r.pool.QueryRow(ctx, `
		UPDATE lead_submissions
		SET contacted_at = $4, contact_method = $5, contact_notes = $6, updated_at = now()
		WHERE id = $1 AND agent_id = $2 AND event_id = $3
		RETURNING `+leadColumns,
		id, agentID, eventID, params.ContactedAt, params.Method, params.Notes,
	))
}

func (r *Repository) CountVisits(ctx context.Context, params CountVisitsParams) (int, error) {
	if params.Email == nil && params.Phone == nil {
		return 0, nil
	}

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM lead_submissions
		WHERE event_id = $1
			AND created_at >= $2 AND created_at < $3
			AND (($4::text IS NOT NULL AND email = $4) OR ($5::text IS NOT NULL AND phone_e164 = $5))
	`, params.EventID, params.From, params.To, params.Email, params.Phone).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) CountByHeat(ctx context.Context, agentID uuid.UUID, hotThreshold, warmThreshold int) (HeatCounts, error) {
	var counts HeatCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE NOT (`+dncPredicate+`) AND heat_score >= $2),
			COUNT(*) FILTER (WHERE NOT (`+dncPredicate+`) AND heat_score >= $3 AND heat_score < $2),
			COUNT(*) FILTER (WHERE NOT (`+dncPredicate+`) AND heat_score < $3),
			COUNT(*) FILTER (WHERE `+dncPredicate+`),
			COUNT(*) FILTER (WHERE red_hot)
		FROM lead_submissions
		WHERE agent_id = $1
	`, agentID, hotThreshold, warmThreshold).Scan(
		&counts.Total, &counts.Hot, &counts.Warm, &counts.Cold, &counts.DNC, &counts.RedHot,
	)
	if err != nil {
		return HeatCounts{}, err
	}
	return counts, nil
}

func (r *Repository) CountSince(ctx context.Context, agentID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM lead_submissions WHERE agent_id = $1 AND created_at >= $2
	`, agentID, since).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
