package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"openhouse_backend/internal/leads/scoring"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadColumnNames = []string{
	"id", "event_id", "agent_id", "payload", "email", "phone_e164", "heat_score", "red_hot",
	"visit_number", "pipeline_stage", "contacted_at", "contact_method", "contact_notes", "created_at", "updated_at",
}

func strPtr(s string) *string { return &s }

func leadRow(t *testing.T, rows *pgxmock.Rows, id, eventID, agentID uuid.UUID, payload scoring.LeadPayload, score int, stage string) *pgxmock.Rows {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, eventID, agentID, raw, strPtr(payload.Email), (*string)(nil), score, false,
		1, stage, (*time.Time)(nil), (*string)(nil), (*string)(nil), now, now,
	)
}

func TestCreateInsertsAndDecodesPayload(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := New(mock)
	id, eventID, agentID := uuid.New(), uuid.New(), uuid.New()
	payload := scoring.LeadPayload{Name: "Ana", Email: "ana@example.com", Timeline: scoring.Timeline0To3Months}

	mock.ExpectQuery("INSERT INTO lead_submissions").
		WithArgs(eventID, agentID, pgxmock.AnyArg(), strPtr("ana@example.com"), (*string)(nil), 30, false, 1, "new_lead").
		WillReturnRows(leadRow(t, pgxmock.NewRows(leadColumnNames), id, eventID, agentID, payload, 30, "new_lead"))

	lead, err := repo.Create(context.Background(), CreateLeadParams{
		EventID:       eventID,
		AgentID:       agentID,
		Payload:       payload,
		Email:         strPtr("ana@example.com"),
		HeatScore:     30,
		VisitNumber:   1,
		PipelineStage: "new_lead",
	})

	require.NoError(t, err)
	assert.Equal(t, id, lead.ID)
	assert.Equal(t, "Ana", lead.Payload.Name)
	assert.Equal(t, scoring.Timeline0To3Months, lead.Payload.Timeline)
	assert.Nil(t, lead.PhoneE164)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMapsNoRowsToNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := New(mock)
	agentID, id := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM lead_submissions").
		WithArgs(id, agentID).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), agentID, id)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByAgentReturnsRowsInOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := New(mock)
	agentID, eventID := uuid.New(), uuid.New()
	first, second := uuid.New(), uuid.New()

	rows := pgxmock.NewRows(leadColumnNames)
	leadRow(t, rows, first, eventID, agentID, scoring.LeadPayload{Email: "a@example.com"}, 90, "new_lead")
	leadRow(t, rows, second, eventID, agentID, scoring.LeadPayload{Email: "b@example.com"}, 20, "qualification")

	mock.ExpectQuery("ORDER BY heat_score DESC").
		WithArgs(agentID).
		WillReturnRows(rows)

	leads, err := repo.ListByAgent(context.Background(), agentID)

	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, first, leads[0].ID)
	assert.Equal(t, "qualification", leads[1].PipelineStage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStageNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := New(mock)
	agentID, id := uuid.New(), uuid.New()

	mock.ExpectQuery("UPDATE lead_submissions").
		WithArgs(id, agentID, "qualification").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.UpdateStage(context.Background(), agentID, id, "qualification")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountVisitsMatchesEmailOrPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := New(mock)
	eventID := uuid.New()
	from := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	phone := strPtr("+18085860034")

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(eventID, from, to, (*string)(nil), phone).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountVisits(context.Background(), CountVisitsParams{
		EventID: eventID,
		Phone:   phone,
		From:    from,
		To:      to,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountVisitsWithoutContactSkipsQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	count, err := New(mock).CountVisits(context.Background(), CountVisitsParams{EventID: uuid.New()})

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByHeat(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	agentID := uuid.New()
	mock.ExpectQuery("FILTER").
		WithArgs(agentID, 80, 50).
		WillReturnRows(pgxmock.NewRows([]string{"total", "hot", "warm", "cold", "dnc", "red_hot"}).
			AddRow(10, 3, 4, 2, 1, 1))

	counts, err := New(mock).CountByHeat(context.Background(), agentID, 80, 50)

	require.NoError(t, err)
	assert.Equal(t, HeatCounts{Total: 10, Hot: 3, Warm: 4, Cold: 2, DNC: 1, RedHot: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
