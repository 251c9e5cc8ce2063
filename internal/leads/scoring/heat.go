// Package scoring computes open-house lead heat scores.
//
// Everything in this package is pure: no I/O, no clocks, no shared state.
// Callers persist the resulting score and decide on bucketing.
package scoring

import "strings"

const (
	// ScoreVersion tracks the heat formula for debugging and analysis.
	// Bump this when changing factor weights.
	ScoreVersion = "heat-v1"

	// MinScore and MaxScore bound every heat score.
	MinScore = 0
	MaxScore = 100

	// HotThreshold and WarmThreshold split scores into heat levels.
	HotThreshold  = 80
	WarmThreshold = 50
)

// Representation values a visitor can pick on the check-in form.
const (
	RepresentationYes    = "yes"
	RepresentationNo     = "no"
	RepresentationUnsure = "unsure"
)

// Timeline values.
const (
	Timeline0To3Months   = "0-3 months"
	Timeline3To6Months   = "3-6 months"
	Timeline6PlusMonths  = "6+ months"
	TimelineJustBrowsing = "just browsing"
)

// Financing values.
const (
	FinancingPreApproved = "pre-approved"
	FinancingCash        = "cash"
	FinancingNeedLender  = "need lender"
	FinancingNotSure     = "not sure"
)

// Consent records which channels the visitor opted into.
type Consent struct {
	SMS   bool `json:"sms"`
	Email bool `json:"email"`
}

// LeadPayload is what a visitor submits at an open-house check-in.
// Every field is optional; missing or unknown values contribute nothing.
type LeadPayload struct {
	Name               string  `json:"name"`
	Email              string  `json:"email,omitempty"`
	PhoneE164          string  `json:"phone_e164,omitempty"`
	Representation     string  `json:"representation,omitempty"`
	WantsAgentReachOut bool    `json:"wants_agent_reach_out,omitempty"`
	Timeline           string  `json:"timeline,omitempty"`
	Financing          string  `json:"financing,omitempty"`
	Neighborhoods      string  `json:"neighborhoods,omitempty"`
	MustHaves          string  `json:"must_haves,omitempty"`
	Consent            Consent `json:"consent"`
}

// Factor weights. Category maximums: contact 30, representation 20,
// reach-out 15, timeline 20, financing 15, specificity 10.
var (
	representationPoints = map[string]int{
		RepresentationNo:     20,
		RepresentationUnsure: 10,
		RepresentationYes:    5,
	}
	timelinePoints = map[string]int{
		Timeline0To3Months:   20,
		Timeline3To6Months:   15,
		Timeline6PlusMonths:  10,
		TimelineJustBrowsing: 5,
	}
	financingPoints = map[string]int{
		FinancingPreApproved: 15,
		FinancingCash:        15,
		FinancingNeedLender:  10,
		FinancingNotSure:     5,
	}
)

const (
	pointsEmail         = 10
	pointsPhone         = 10
	pointsEmailConsent  = 5
	pointsSMSConsent    = 5
	pointsReachOut      = 15
	pointsNeighborhoods = 5
	pointsMustHaves     = 5
)

// Breakdown is a heat score with the contribution of each factor.
type Breakdown struct {
	Score   int            `json:"score"`
	Factors map[string]int `json:"factors"`
	Version string         `json:"version"`
}

// HeatScore returns the lead's heat score in [0,100].
func HeatScore(payload LeadPayload) int {
	return Explain(payload).Score
}

// Explain computes the heat score and records which factors contributed.
// Factors that contribute zero are omitted.
func Explain(payload LeadPayload) Breakdown {
	factors := make(map[string]int)
	add := func(name string, points int) {
		if points > 0 {
			factors[name] = points
		}
	}

	if hasText(payload.Email) {
		add("email", pointsEmail)
	}
	if hasText(payload.PhoneE164) {
		add("phone", pointsPhone)
	}
	if payload.Consent.Email {
		add("consent_email", pointsEmailConsent)
	}
	if payload.Consent.SMS {
		add("consent_sms", pointsSMSConsent)
	}

	add("representation", representationPoints[normalizeChoice(payload.Representation)])
	if payload.WantsAgentReachOut {
		add("wants_agent_reach_out", pointsReachOut)
	}
	add("timeline", timelinePoints[normalizeChoice(payload.Timeline)])
	add("financing", financingPoints[normalizeChoice(payload.Financing)])

	if hasText(payload.Neighborhoods) {
		add("neighborhoods", pointsNeighborhoods)
	}
	if hasText(payload.MustHaves) {
		add("must_haves", pointsMustHaves)
	}

	total := 0
	for _, points := range factors {
		total += points
	}

	return Breakdown{
		Score:   clampScore(total),
		Factors: factors,
		Version: ScoreVersion,
	}
}

// IsRepresented reports whether the visitor already has a buyer's agent.
func IsRepresented(payload LeadPayload) bool {
	return normalizeChoice(payload.Representation) == RepresentationYes
}

func normalizeChoice(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hasText(value string) bool {
	return strings.TrimSpace(value) != ""
}

func clampScore(value int) int {
	if value < MinScore {
		return MinScore
	}
	if value > MaxScore {
		return MaxScore
	}
	return value
}
