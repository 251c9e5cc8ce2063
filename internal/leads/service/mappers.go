package service

import (
	"openhouse_backend/internal/leads/domain"
	"openhouse_backend/internal/leads/repository"
	"openhouse_backend/internal/leads/scoring"
	"openhouse_backend/internal/leads/transport"
	"openhouse_backend/platform/phone"
)

// ToLeadResponse renders a stored lead with its derived heat level, bucket
// and stage label.
func ToLeadResponse(lead repository.Lead) transport.LeadResponse {
	level := scoring.HeatLevel(lead.HeatScore)
	stage := domain.PipelineStage(lead.PipelineStage)

	return transport.LeadResponse{
		ID:                 lead.ID,
		EventID:            lead.EventID,
		Name:               lead.Payload.Name,
		Email:              lead.Email,
		Phone:              lead.PhoneE164,
		PhoneDisplay:       displayPhone(lead.PhoneE164),
		Representation:     lead.Payload.Representation,
		WantsAgentReachOut: lead.Payload.WantsAgentReachOut,
		Timeline:           lead.Payload.Timeline,
		Financing:          lead.Payload.Financing,
		Neighborhoods:      lead.Payload.Neighborhoods,
		MustHaves:          lead.Payload.MustHaves,
		Consent: transport.ConsentRequest{
			SMS:   lead.Payload.Consent.SMS,
			Email: lead.Payload.Consent.Email,
		},
		HeatScore:          lead.HeatScore,
		HeatLevel:          string(level),
		HeatColor:          scoring.HeatColor(level),
		Bucket:             string(scoring.Triage(lead.Payload, lead.HeatScore)),
		RedHot:             lead.RedHot,
		VisitNumber:        lead.VisitNumber,
		PipelineStage:      lead.PipelineStage,
		PipelineStageLabel: domain.StageLabel(stage),
		ContactedAt:        lead.ContactedAt,
		ContactMethod:      lead.ContactMethod,
		ContactNotes:       lead.ContactNotes,
		CreatedAt:          lead.CreatedAt,
		UpdatedAt:          lead.UpdatedAt,
	}
}

// ToStageResponse renders a pipeline stage for the board header.
func ToStageResponse(stage domain.PipelineStage) transport.StageResponse {
	return transport.StageResponse{
		ID:       string(stage),
		Label:    domain.StageLabel(stage),
		Color:    domain.StageColor(stage),
		Position: domain.StagePosition(stage),
	}
}

// StageCatalog lists every pipeline stage in order.
func StageCatalog() []transport.StageResponse {
	stages := domain.PipelineStages()
	out := make([]transport.StageResponse, 0, len(stages))
	for _, stage := range stages {
		out = append(out, ToStageResponse(stage))
	}
	return out
}

func displayPhone(e164 *string) string {
	if e164 == nil {
		return ""
	}
	return phone.Display(*e164)
}
