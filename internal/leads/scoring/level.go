package scoring

// Level is the heat category derived from a score.
type Level string

const (
	LevelHot  Level = "hot"
	LevelWarm Level = "warm"
	LevelCold Level = "cold"
)

// HeatLevel maps a score to hot (>=80), warm (>=50) or cold.
func HeatLevel(score int) Level {
	if score >= HotThreshold {
		return LevelHot
	}
	if score >= WarmThreshold {
		return LevelWarm
	}
	return LevelCold
}

// HeatColor returns the badge color used by the dashboard for a level.
func HeatColor(level Level) string {
	switch level {
	case LevelHot:
		return "#ef4444"
	case LevelWarm:
		return "#f59e0b"
	default:
		return "#3b82f6"
	}
}

// Bucket is where a lead lands in the agent's outreach funnel.
type Bucket string

const (
	BucketHot  Bucket = "hot"
	BucketWarm Bucket = "warm"
	BucketCold Bucket = "cold"
	// BucketDoNotContact holds visitors already represented by another agent.
	BucketDoNotContact Bucket = "dnc"
)

// Triage puts represented visitors in the do-not-contact bucket regardless of
// score; everyone else lands in the bucket matching their heat level.
func Triage(payload LeadPayload, score int) Bucket {
	if IsRepresented(payload) {
		return BucketDoNotContact
	}
	return Bucket(HeatLevel(score))
}

// Resolution is the score a check-in is stored with.
type Resolution struct {
	Score  int   `json:"score"`
	Level  Level `json:"level"`
	RedHot bool  `json:"redHot"`
}

// ResolveScore applies the return-visit rule on top of the heat formula:
// a visitor checking in again at the same open house on the same day is
// pinned to the maximum score and flagged red hot.
func ResolveScore(payload LeadPayload, returningVisitToday bool) Resolution {
	if returningVisitToday {
		return Resolution{Score: MaxScore, Level: LevelHot, RedHot: true}
	}
	score := HeatScore(payload)
	return Resolution{Score: score, Level: HeatLevel(score)}
}
