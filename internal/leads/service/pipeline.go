package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"openhouse_backend/internal/events"
	"openhouse_backend/internal/leads/domain"
	"openhouse_backend/internal/leads/repository"
	"openhouse_backend/internal/leads/scoring"
	"openhouse_backend/internal/leads/transport"
	"openhouse_backend/internal/leads/visits"
	"openhouse_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// statsWindowDays is the "this week" span: today plus the six business days
// before it.
const statsWindowDays = 7

// GetLead returns one of the agent's leads.
func (s *Service) GetLead(ctx context.Context, agentID, leadID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, agentID, leadID)
	if err != nil {
		return transport.LeadResponse{}, s.mapLeadError(err, "leads.GetLead")
	}
	return ToLeadResponse(lead), nil
}

// AdvanceStage moves a lead to an explicit stage or one step forward or
// backward. Any known stage may be targeted; no transition order is enforced.
func (s *Service) AdvanceStage(ctx context.Context, agentID, leadID uuid.UUID, req transport.AdvanceStageRequest) (transport.AdvanceStageResponse, error) {
	lead, err := s.repo.GetByID(ctx, agentID, leadID)
	if err != nil {
		return transport.AdvanceStageResponse{}, s.mapLeadError(err, "leads.AdvanceStage")
	}

	current := domain.PipelineStage(lead.PipelineStage)
	next, err := domain.ResolveStageMove(current, domain.PipelineStage(req.Stage), req.Direction)
	if err != nil {
		return transport.AdvanceStageResponse{}, apperr.BadRequest(err.Error())
	}

	if next != current {
		if _, err := s.repo.UpdateStage(ctx, agentID, leadID, string(next)); err != nil {
			return transport.AdvanceStageResponse{}, s.mapLeadError(err, "leads.AdvanceStage")
		}

		s.bus.Publish(ctx, events.PipelineStageChanged{
			BaseEvent: events.NewBaseEventAt(s.now()),
			LeadID:    leadID,
			AgentID:   agentID,
			OldStage:  string(current),
			NewStage:  string(next),
		})
	}

	return transport.AdvanceStageResponse{
		LeadID:        leadID,
		PreviousStage: string(current),
		NewStage:      string(next),
		StageLabel:    domain.StageLabel(next),
	}, nil
}

// Pipeline groups the agent's leads by stage, hottest first within each
// column. Do-not-contact leads are left off the board. Leads in a stage this
// build does not recognize are shown in the initial column.
func (s *Service) Pipeline(ctx context.Context, agentID uuid.UUID) (transport.PipelineResponse, error) {
	leads, err := s.repo.ListByAgent(ctx, agentID)
	if err != nil {
		s.log.DatabaseError("leads.list_by_agent", err)
		return transport.PipelineResponse{}, apperr.Wrap(apperr.KindInternal, "load pipeline", err).WithOp("leads.Pipeline")
	}

	stages := domain.PipelineStages()
	grouped := make(map[domain.PipelineStage][]transport.LeadResponse, len(stages))
	excluded := 0

	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].HeatScore > leads[j].HeatScore
	})

	for _, lead := range leads {
		if scoring.IsRepresented(lead.Payload) {
			excluded++
			continue
		}
		stage := domain.PipelineStage(lead.PipelineStage)
		if !domain.IsKnownPipelineStage(stage) {
			stage = domain.InitialStage()
		}
		grouped[stage] = append(grouped[stage], ToLeadResponse(lead))
	}

	resp := transport.PipelineResponse{
		Columns:  make([]transport.PipelineColumn, 0, len(stages)),
		Excluded: excluded,
	}
	for _, stage := range stages {
		items := grouped[stage]
		if items == nil {
			items = []transport.LeadResponse{}
		}
		resp.Columns = append(resp.Columns, transport.PipelineColumn{
			Stage: ToStageResponse(stage),
			Count: len(items),
			Leads: items,
		})
		resp.Total += len(items)
	}

	return resp, nil
}

// Stats returns dashboard totals for the agent.
func (s *Service) Stats(ctx context.Context, agentID uuid.UUID) (transport.StatsResponse, error) {
	var (
		counts   repository.HeatCounts
		thisWeek int
	)
	since := s.weekStart()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.repo.CountByHeat(gctx, agentID, scoring.HotThreshold, scoring.WarmThreshold)
		return err
	})
	g.Go(func() error {
		var err error
		thisWeek, err = s.repo.CountSince(gctx, agentID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.DatabaseError("leads.stats", err)
		return transport.StatsResponse{}, apperr.Wrap(apperr.KindInternal, "load stats", err).WithOp("leads.Stats")
	}

	return transport.StatsResponse{
		Total:    counts.Total,
		Hot:      counts.Hot,
		Warm:     counts.Warm,
		Cold:     counts.Cold,
		DNC:      counts.DNC,
		RedHot:   counts.RedHot,
		ThisWeek: thisWeek,
	}, nil
}

func (s *Service) mapLeadError(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	s.log.DatabaseError(op, err)
	return apperr.Wrap(apperr.KindInternal, "lead storage failure", err).WithOp(op)
}

// weekStart is business-timezone midnight six days before today, so the
// window follows the same calendar days as the return-visit rule.
func (s *Service) weekStart() time.Time {
	today, _ := visits.DayBounds(s.now(), s.loc)
	return today.AddDate(0, 0, -(statsWindowDays - 1))
}
