package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"openhouse_backend/internal/events"
	"openhouse_backend/internal/leads/ports"
	"openhouse_backend/internal/leads/repository"
	"openhouse_backend/internal/leads/scoring"
	"openhouse_backend/internal/leads/transport"
	"openhouse_backend/internal/leads/visits"
	"openhouse_backend/platform/apperr"
	"openhouse_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory LeadsRepository.
type memRepo struct {
	mu    sync.Mutex
	leads     []repository.Lead
	now       func() time.Time
	createErr error
}

func (r *memRepo) Create(_ context.Context, p repository.CreateLeadParams) (repository.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return repository.Lead{}, r.createErr
	}
	ts := r.now()
	lead := repository.Lead{
		ID: uuid.New(), EventID: p.EventID, AgentID: p.AgentID, Payload: p.Payload,
		Email: p.Email, PhoneE164: p.PhoneE164, HeatScore: p.HeatScore, RedHot: p.RedHot,
		VisitNumber: p.VisitNumber, PipelineStage: p.PipelineStage, CreatedAt: ts, UpdatedAt: ts,
	}
	r.leads = append(r.leads, lead)
	return lead, nil
}

func (r *memRepo) find(agentID, id uuid.UUID) int {
	for i, l := range r.leads {
		if l.ID == id && l.AgentID == agentID {
			return i
		}
	}
	return -1
}

func (r *memRepo) GetByID(_ context.Context, agentID, id uuid.UUID) (repository.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(agentID, id); i >= 0 {
		return r.leads[i], nil
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (r *memRepo) ListByAgent(_ context.Context, agentID uuid.UUID) ([]repository.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Lead
	for _, l := range r.leads {
		if l.AgentID == agentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memRepo) ListByEvent(_ context.Context, agentID, eventID uuid.UUID) ([]repository.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Lead
	for _, l := range r.leads {
		if l.AgentID == agentID && l.EventID == eventID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStage(_ context.Context, agentID, id uuid.UUID, stage string) (repository.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(agentID, id)
	if i < 0 {
		return repository.Lead{}, repository.ErrNotFound
	}
	r.leads[i].PipelineStage = stage
	return r.leads[i], nil
}

func (r *memRepo) MarkContacted(_ context.Context, agentID, eventID, id uuid.UUID, p repository.MarkContactedParams) (repository.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(agentID, id)
	if i < 0 || r.leads[i].EventID != eventID {
		return repository.Lead{}, repository.ErrNotFound
	}
	at := p.ContactedAt
	r.leads[i].ContactedAt = &at
	r.leads[i].ContactMethod = p.Method
	r.leads[i].ContactNotes = p.Notes
	return r.leads[i], nil
}

func (r *memRepo) CountVisits(_ context.Context, p repository.CountVisitsParams) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.leads {
		if l.EventID != p.EventID || l.CreatedAt.Before(p.From) || !l.CreatedAt.Before(p.To) {
			continue
		}
		emailMatch := p.Email != nil && l.Email != nil && *l.Email == *p.Email
		phoneMatch := p.Phone != nil && l.PhoneE164 != nil && *l.PhoneE164 == *p.Phone
		if emailMatch || phoneMatch {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CountByHeat(_ context.Context, agentID uuid.UUID, hot, warm int) (repository.HeatCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c repository.HeatCounts
	for _, l := range r.leads {
		if l.AgentID != agentID {
			continue
		}
		c.Total++
		if l.RedHot {
			c.RedHot++
		}
		switch {
		case scoring.IsRepresented(l.Payload):
			c.DNC++
		case l.HeatScore >= hot:
			c.Hot++
		case l.HeatScore >= warm:
			c.Warm++
		default:
			c.Cold++
		}
	}
	return c, nil
}

func (r *memRepo) CountSince(_ context.Context, agentID uuid.UUID, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.leads {
		if l.AgentID == agentID && !l.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type stubEvents struct {
	byID map[uuid.UUID]ports.EventSummary
}

func (s stubEvents) GetEventSummary(_ context.Context, id uuid.UUID) (ports.EventSummary, error) {
	if e, ok := s.byID[id]; ok {
		return e, nil
	}
	return ports.EventSummary{}, ports.ErrEventNotFound
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.published))
	for _, e := range b.published {
		out = append(out, e.EventName())
	}
	return out
}

type fixture struct {
	svc     *Service
	repo    *memRepo
	bus     *recordingBus
	clock   *time.Time
	agentID uuid.UUID
	eventID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Pacific/Honolulu")
	require.NoError(t, err)

	clock := time.Date(2026, 3, 14, 10, 0, 0, 0, loc)
	f := &fixture{clock: &clock, agentID: uuid.New(), eventID: uuid.New(), bus: &recordingBus{}}
	now := func() time.Time { return *f.clock }
	f.repo = &memRepo{now: now}

	reader := stubEvents{byID: map[uuid.UUID]ports.EventSummary{
		f.eventID: {ID: f.eventID, AgentID: f.agentID, Address: "123 Kalakaua Ave", Status: ports.EventStatusPublished},
	}}
	f.svc = New(f.repo, reader, visits.NewPostgresTracker(f.repo, loc), f.bus, logger.Discard(),
		WithClock(now), WithLocation(loc), WithPhoneRegion("US"))
	return f
}

func (f *fixture) advance(d time.Duration) {
	next := f.clock.Add(d)
	*f.clock = next
}

func fortyPointRequest() transport.CheckInRequest {
	// email 10 + unrepresented 20 + 6+ months 10
	return transport.CheckInRequest{
		Name:           "Leilani",
		Email:          "Leilani@Example.com ",
		Representation: "no",
		Timeline:       "6+ months",
	}
}

func TestCheckInScoresFirstVisit(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CheckIn(context.Background(), f.eventID, fortyPointRequest())

	require.NoError(t, err)
	assert.Equal(t, 40, res.Lead.HeatScore)
	assert.False(t, res.Lead.RedHot)
	assert.Equal(t, 1, res.Lead.VisitNumber)
	assert.Equal(t, "new_lead", res.Lead.PipelineStage)
	assert.Equal(t, scoring.BucketCold, res.Bucket)
	assert.Equal(t, f.agentID, res.Lead.AgentID)
	require.NotNil(t, res.Lead.Email)
	assert.Equal(t, "leilani@example.com", *res.Lead.Email)
	assert.Equal(t, []string{"leads.lead.submitted"}, f.bus.names())
}

func TestCheckInSameEmailSameDayIsRedHot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())
	require.NoError(t, err)

	f.advance(3 * time.Hour)
	second, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())

	require.NoError(t, err)
	assert.Equal(t, 100, second.Lead.HeatScore)
	assert.True(t, second.Lead.RedHot)
	assert.True(t, second.Resolution.RedHot)
	assert.Equal(t, 2, second.Lead.VisitNumber)
	assert.Equal(t, scoring.BucketHot, second.Bucket)
	assert.Contains(t, f.bus.names(), "leads.lead.return_visit")
}

func TestCheckInNextDayIsNotRedHot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())
	require.NoError(t, err)

	f.advance(24 * time.Hour)
	second, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())

	require.NoError(t, err)
	assert.Equal(t, 40, second.Lead.HeatScore)
	assert.False(t, second.Lead.RedHot)
	assert.Equal(t, 1, second.Lead.VisitNumber)
}

func TestCheckInPhoneOnlyMatchCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{
		Name:  "Kai",
		Email: "kai@example.com",
		Phone: "(808) 586-0034",
	})
	require.NoError(t, err)

	second, err := f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{
		Name:  "Kai",
		Phone: "808.586.0034",
	})

	require.NoError(t, err)
	require.NotNil(t, second.Lead.PhoneE164)
	assert.Equal(t, "+18085860034", *second.Lead.PhoneE164)
	assert.True(t, second.Lead.RedHot)
}

func TestCheckInRepresentedVisitorIsDoNotContact(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CheckIn(context.Background(), f.eventID, transport.CheckInRequest{
		Name:               "Noa",
		Email:              "noa@example.com",
		Representation:     "yes",
		WantsAgentReachOut: true,
		Timeline:           "0-3 months",
		Financing:          "cash",
	})

	require.NoError(t, err)
	assert.Equal(t, 65, res.Lead.HeatScore)
	assert.Equal(t, scoring.BucketDoNotContact, res.Bucket)
}

func TestCheckInErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, uuid.New(), fortyPointRequest())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{Name: "Nobody"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	draftID := uuid.New()
	f.svc.events = stubEvents{byID: map[uuid.UUID]ports.EventSummary{
		draftID: {ID: draftID, AgentID: f.agentID, Status: "draft"},
	}}
	_, err = f.svc.CheckIn(ctx, draftID, fortyPointRequest())
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestAdvanceStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())
	require.NoError(t, err)
	leadID := res.Lead.ID

	moved, err := f.svc.AdvanceStage(ctx, f.agentID, leadID, transport.AdvanceStageRequest{})
	require.NoError(t, err)
	assert.Equal(t, "new_lead", moved.PreviousStage)
	assert.Equal(t, "initial_contact", moved.NewStage)
	assert.Equal(t, "Initial Contact", moved.StageLabel)

	moved, err = f.svc.AdvanceStage(ctx, f.agentID, leadID, transport.AdvanceStageRequest{Stage: "review_request"})
	require.NoError(t, err)
	assert.Equal(t, "review_request", moved.NewStage)

	_, err = f.svc.AdvanceStage(ctx, f.agentID, leadID, transport.AdvanceStageRequest{Direction: "forward"})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.ErrorContains(t, err, "already at final stage")

	_, err = f.svc.AdvanceStage(ctx, f.agentID, leadID, transport.AdvanceStageRequest{Stage: "nowhere"})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = f.svc.AdvanceStage(ctx, uuid.New(), leadID, transport.AdvanceStageRequest{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.Contains(t, f.bus.names(), "leads.pipeline.stage_changed")
}

func TestPipelineGroupsByStageAndExcludesDoNotContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cold, err := f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{Name: "Cold", Email: "cold@example.com"})
	require.NoError(t, err)
	hot, err := f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{
		Name: "Hot", Email: "hot@example.com", Phone: "8085550100", Representation: "no",
		WantsAgentReachOut: true, Timeline: "0-3 months", Financing: "pre-approved",
	})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{Name: "Taken", Email: "taken@example.com", Representation: "yes"})
	require.NoError(t, err)

	board, err := f.svc.Pipeline(ctx, f.agentID)

	require.NoError(t, err)
	require.Len(t, board.Columns, 11)
	assert.Equal(t, 2, board.Total)
	assert.Equal(t, 1, board.Excluded)

	first := board.Columns[0]
	assert.Equal(t, "new_lead", first.Stage.ID)
	require.Equal(t, 2, first.Count)
	assert.Equal(t, hot.Lead.ID, first.Leads[0].ID)
	assert.Equal(t, cold.Lead.ID, first.Leads[1].ID)
	for _, col := range board.Columns[1:] {
		assert.Zero(t, col.Count)
		assert.NotNil(t, col.Leads)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{Name: "Rep", Email: "rep@example.com", Representation: "yes"})
	require.NoError(t, err)

	f.advance(10 * 24 * time.Hour)
	stats, err := f.svc.Stats(ctx, f.agentID)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Hot)
	assert.Equal(t, 1, stats.Cold)
	assert.Equal(t, 1, stats.DNC)
	assert.Equal(t, 1, stats.RedHot)
	assert.Zero(t, stats.ThisWeek)
}

func TestStatsThisWeekFollowsBusinessDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 2026-03-14 10:00 Honolulu.
	_, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())
	require.NoError(t, err)

	// 2026-03-20 23:00 Honolulu: the seventh business day still counts.
	f.advance(6*24*time.Hour + 13*time.Hour)
	stats, err := f.svc.Stats(ctx, f.agentID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ThisWeek)

	// 2026-03-21 08:00 Honolulu: under 168 hours later, but March 14 has
	// left the window.
	f.advance(9 * time.Hour)
	stats, err = f.svc.Stats(ctx, f.agentID)
	require.NoError(t, err)
	assert.Zero(t, stats.ThisWeek)
}

func TestScorecardAndMarkContacted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quick, err := f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{Name: "Quick", Email: "q@example.com", Representation: "no"})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{Name: "Repd", Email: "r@example.com", Representation: "yes"})
	require.NoError(t, err)
	slow, err := f.svc.CheckIn(ctx, f.eventID, transport.CheckInRequest{Name: "Slow", Email: "s@example.com"})
	require.NoError(t, err)

	f.advance(3 * time.Minute)
	marked, err := f.svc.MarkContacted(ctx, f.agentID, f.eventID, transport.MarkContactedRequest{LeadID: quick.Lead.ID, ContactMethod: "call"})
	require.NoError(t, err)
	require.NotNil(t, marked.ContactMethod)
	assert.Equal(t, "call", *marked.ContactMethod)

	f.advance(time.Hour)
	_, err = f.svc.MarkContacted(ctx, f.agentID, f.eventID, transport.MarkContactedRequest{LeadID: slow.Lead.ID})
	require.NoError(t, err)

	card, err := f.svc.Scorecard(ctx, f.agentID, f.eventID)

	require.NoError(t, err)
	assert.Equal(t, "123 Kalakaua Ave", card.Address)
	assert.Equal(t, 3, card.TotalSignIns)
	assert.Equal(t, 2, card.TotalContacted)
	assert.Equal(t, 1, card.ContactedWithin5Min)
	assert.Equal(t, 1, card.HasRealtor)
	assert.Equal(t, 2, card.LookingForAgent)
	assert.Equal(t, 67, card.PercentContacted)
	assert.Equal(t, 33, card.PercentWithin5Min)
	require.Len(t, card.Leads, 3)
	require.NotNil(t, card.Leads[0].ContactedWithin)
	assert.Equal(t, 3, *card.Leads[0].ContactedWithin)
}

func TestScorecardRejectsOtherAgent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Scorecard(context.Background(), uuid.New(), f.eventID)

	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestGetLeadNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetLead(context.Background(), f.agentID, uuid.New())

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func useRedisTracker(t *testing.T, f *fixture) {
	t.Helper()
	srv := miniredis.RunT(t)
	srv.SetTime(*f.clock)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f.svc.visits = visits.NewRedisTracker(client, f.svc.loc)
}

func TestConcurrentCheckInsFlagOneReturnVisit(t *testing.T) {
	f := newFixture(t)
	useRedisTracker(t, f)
	ctx := context.Background()

	results := make([]CheckInResult, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	redHot := 0
	for _, res := range results {
		if res.Resolution.RedHot {
			redHot++
			assert.Equal(t, 2, res.Lead.VisitNumber)
		}
	}
	assert.Equal(t, 1, redHot)
}

func TestFailedCheckInDoesNotCountAsVisit(t *testing.T) {
	f := newFixture(t)
	useRedisTracker(t, f)
	ctx := context.Background()

	f.repo.createErr = errors.New("connection reset")
	_, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	f.repo.createErr = nil
	res, err := f.svc.CheckIn(ctx, f.eventID, fortyPointRequest())
	require.NoError(t, err)
	assert.False(t, res.Resolution.RedHot)
	assert.Equal(t, 1, res.Lead.VisitNumber)
}
