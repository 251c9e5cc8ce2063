package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type ConsentRequest struct {
	SMS   bool `json:"sms"`
	Email bool `json:"email"`
}

// CheckInRequest is what a visitor submits from the open-house QR form.
// At least one of email or phone is required.
type CheckInRequest struct {
	Name               string         `json:"name" validate:"required,notblank,max=200"`
	Email              string         `json:"email,omitempty" validate:"required_without=Phone,omitempty,email,max=254"`
	Phone              string         `json:"phone,omitempty" validate:"required_without=Email,omitempty,min=5,max=30"`
	Representation     string         `json:"representation,omitempty" validate:"omitempty,max=50"`
	WantsAgentReachOut bool           `json:"wantsAgentReachOut"`
	Timeline           string         `json:"timeline,omitempty" validate:"omitempty,max=50"`
	Financing          string         `json:"financing,omitempty" validate:"omitempty,max=50"`
	Neighborhoods      string         `json:"neighborhoods,omitempty" validate:"omitempty,max=500"`
	MustHaves          string         `json:"mustHaves,omitempty" validate:"omitempty,max=1000"`
	Consent            ConsentRequest `json:"consent"`
}

// AdvanceStageRequest moves a lead. Stage wins over Direction when both are set.
type AdvanceStageRequest struct {
	Stage     string `json:"stage,omitempty" validate:"omitempty,max=64"`
	Direction string `json:"direction,omitempty" validate:"omitempty,max=16"`
}

// MarkContactedRequest records agent follow-up on a scorecard row.
type MarkContactedRequest struct {
	LeadID        uuid.UUID  `json:"leadId" validate:"required"`
	ContactedAt   *time.Time `json:"contactedAt,omitempty"`
	ContactMethod string     `json:"contactMethod,omitempty" validate:"omitempty,oneof=call text email in_person"`
	Notes         string     `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Response DTOs

type LeadResponse struct {
	ID                 uuid.UUID      `json:"id"`
	EventID            uuid.UUID      `json:"eventId"`
	Name               string         `json:"name"`
	Email              *string        `json:"email,omitempty"`
	Phone              *string        `json:"phone,omitempty"`
	PhoneDisplay       string         `json:"phoneDisplay,omitempty"`
	Representation     string         `json:"representation,omitempty"`
	WantsAgentReachOut bool           `json:"wantsAgentReachOut"`
	Timeline           string         `json:"timeline,omitempty"`
	Financing          string         `json:"financing,omitempty"`
	Neighborhoods      string         `json:"neighborhoods,omitempty"`
	MustHaves          string         `json:"mustHaves,omitempty"`
	Consent            ConsentRequest `json:"consent"`
	HeatScore          int            `json:"heatScore"`
	HeatLevel          string         `json:"heatLevel"`
	HeatColor          string         `json:"heatColor"`
	Bucket             string         `json:"bucket"`
	RedHot             bool           `json:"redHot"`
	VisitNumber        int            `json:"visitNumber"`
	PipelineStage      string         `json:"pipelineStage"`
	PipelineStageLabel string         `json:"pipelineStageLabel"`
	ContactedAt        *time.Time     `json:"contactedAt,omitempty"`
	ContactMethod      *string        `json:"contactMethod,omitempty"`
	ContactNotes       *string        `json:"contactNotes,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// CheckInResponse is returned to the visitor's device. It deliberately
// omits the score.
type CheckInResponse struct {
	LeadID      uuid.UUID `json:"leadId"`
	VisitNumber int       `json:"visitNumber"`
	WelcomeBack bool      `json:"welcomeBack"`
	Message     string    `json:"message"`
}

type AdvanceStageResponse struct {
	LeadID        uuid.UUID `json:"leadId"`
	PreviousStage string    `json:"previousStage"`
	NewStage      string    `json:"newStage"`
	StageLabel    string    `json:"stageLabel"`
}

type StageResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	Position int    `json:"position"`
}

type PipelineColumn struct {
	Stage StageResponse  `json:"stage"`
	Count int            `json:"count"`
	Leads []LeadResponse `json:"leads"`
}

type PipelineResponse struct {
	Columns  []PipelineColumn `json:"columns"`
	Total    int              `json:"total"`
	Excluded int              `json:"excludedDoNotContact"`
}

type StatsResponse struct {
	Total    int `json:"total"`
	Hot      int `json:"hot"`
	Warm     int `json:"warm"`
	Cold     int `json:"cold"`
	DNC      int `json:"doNotContact"`
	RedHot   int `json:"redHot"`
	ThisWeek int `json:"thisWeek"`
}

type ScorecardLead struct {
	LeadID          uuid.UUID  `json:"leadId"`
	Name            string     `json:"name"`
	HeatScore       int        `json:"heatScore"`
	Bucket          string     `json:"bucket"`
	SignedInAt      time.Time  `json:"signedInAt"`
	ContactedAt     *time.Time `json:"contactedAt,omitempty"`
	ContactedWithin *int       `json:"contactedWithinMinutes,omitempty"`
}

type ScorecardResponse struct {
	EventID             uuid.UUID       `json:"eventId"`
	Address             string          `json:"address"`
	TotalSignIns        int             `json:"totalSignIns"`
	TotalContacted      int             `json:"totalContacted"`
	ContactedWithin5Min int             `json:"contactedWithin5Min"`
	HasRealtor          int             `json:"hasRealtor"`
	LookingForAgent     int             `json:"lookingForAgent"`
	PercentContacted    int             `json:"percentContacted"`
	PercentWithin5Min   int             `json:"percentWithin5Min"`
	PercentHasRealtor   int             `json:"percentHasRealtor"`
	PercentLooking      int             `json:"percentLookingForAgent"`
	Leads               []ScorecardLead `json:"leads"`
}
