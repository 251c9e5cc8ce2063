// Package domain holds the pure pipeline-stage model for open-house leads.
package domain

import (
	"errors"
	"strings"
)

// PipelineStage identifies where a lead sits in the agent's workflow.
type PipelineStage string

const (
	PipelineStageNewLead                   PipelineStage = "new_lead"
	PipelineStageInitialContact            PipelineStage = "initial_contact"
	PipelineStageQualification             PipelineStage = "qualification"
	PipelineStageInitialConsultation       PipelineStage = "initial_consultation"
	PipelineStagePropertySearchListingPrep PipelineStage = "property_search_listing_prep"
	PipelineStageOpenHousesAndTours        PipelineStage = "open_houses_and_tours"
	PipelineStageOfferAndNegotiation       PipelineStage = "offer_and_negotiation"
	PipelineStageUnderContractEscrow       PipelineStage = "under_contract_escrow"
	PipelineStageClosingCoordination       PipelineStage = "closing_coordination"
	PipelineStageClosedAndFollowup         PipelineStage = "closed_and_followup"
	PipelineStageReviewRequest             PipelineStage = "review_request"
)

// Direction for single-step stage moves.
const (
	DirectionForward  = "forward"
	DirectionBackward = "backward"
)

var (
	ErrUnknownStage     = errors.New("invalid pipeline stage")
	ErrAtFinalStage     = errors.New("already at final stage")
	ErrAtFirstStage     = errors.New("already at first stage")
	ErrInvalidDirection = errors.New("invalid direction")
)

type stageInfo struct {
	stage PipelineStage
	label string
	color string
}

var orderedStages = []stageInfo{
	{PipelineStageNewLead, "New Lead", "#6366f1"},
	{PipelineStageInitialContact, "Initial Contact", "#3b82f6"},
	{PipelineStageQualification, "Qualification", "#8b5cf6"},
	{PipelineStageInitialConsultation, "Initial Consultation", "#a855f7"},
	{PipelineStagePropertySearchListingPrep, "Property Search / Listing Prep", "#ec4899"},
	{PipelineStageOpenHousesAndTours, "Open Houses & Tours", "#f59e0b"},
	{PipelineStageOfferAndNegotiation, "Offer & Negotiation", "#f97316"},
	{PipelineStageUnderContractEscrow, "Under Contract / Escrow", "#14b8a6"},
	{PipelineStageClosingCoordination, "Closing Coordination", "#06b6d4"},
	{PipelineStageClosedAndFollowup, "Closed & Follow-up", "#10b981"},
	{PipelineStageReviewRequest, "Review Request", "#84cc16"},
}

var stagePositions = func() map[PipelineStage]int {
	m := make(map[PipelineStage]int, len(orderedStages))
	for i, s := range orderedStages {
		m[s.stage] = i
	}
	return m
}()

// InitialStage is the stage every new lead starts in.
func InitialStage() PipelineStage {
	return orderedStages[0].stage
}

// PipelineStages returns all stages in order. The slice is a copy.
func PipelineStages() []PipelineStage {
	out := make([]PipelineStage, len(orderedStages))
	for i, s := range orderedStages {
		out[i] = s.stage
	}
	return out
}

func IsKnownPipelineStage(stage PipelineStage) bool {
	_, ok := stagePositions[stage]
	return ok
}

// StagePosition returns the zero-based index of stage, or -1 if unknown.
func StagePosition(stage PipelineStage) int {
	if pos, ok := stagePositions[stage]; ok {
		return pos
	}
	return -1
}

// NextStage returns the stage after current. ok is false when current is
// unknown or terminal.
func NextStage(current PipelineStage) (PipelineStage, bool) {
	pos := StagePosition(current)
	if pos < 0 || pos >= len(orderedStages)-1 {
		return "", false
	}
	return orderedStages[pos+1].stage, true
}

// PreviousStage returns the stage before current. ok is false when current
// is unknown or the first stage.
func PreviousStage(current PipelineStage) (PipelineStage, bool) {
	pos := StagePosition(current)
	if pos <= 0 {
		return "", false
	}
	return orderedStages[pos-1].stage, true
}

// StageLabel returns the display label, or the raw identifier when unknown.
func StageLabel(stage PipelineStage) string {
	if pos := StagePosition(stage); pos >= 0 {
		return orderedStages[pos].label
	}
	return string(stage)
}

// StageColor returns the display color, or a neutral gray when unknown.
func StageColor(stage PipelineStage) string {
	if pos := StagePosition(stage); pos >= 0 {
		return orderedStages[pos].color
	}
	return "#6b7280"
}

// ResolveStageMove computes the stage a lead moves to.
//
// A non-empty target wins and may be any known stage; skipping and reversing
// are allowed. Without a target the lead moves one step in direction, which
// defaults to forward. A lead in an unrecognized stage moving forward lands
// on the initial stage.
func ResolveStageMove(current, target PipelineStage, direction string) (PipelineStage, error) {
	if target != "" {
		if !IsKnownPipelineStage(target) {
			return "", ErrUnknownStage
		}
		return target, nil
	}

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", DirectionForward:
		pos := StagePosition(current)
		if pos >= len(orderedStages)-1 {
			return "", ErrAtFinalStage
		}
		return orderedStages[pos+1].stage, nil
	case DirectionBackward:
		prev, ok := PreviousStage(current)
		if !ok {
			return "", ErrAtFirstStage
		}
		return prev, nil
	default:
		return "", ErrInvalidDirection
	}
}
