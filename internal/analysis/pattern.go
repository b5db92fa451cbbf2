package analysis

import "time"

// CandidatePattern is a mined pattern before it is merged into the store.
// Both the statistical and qualitative pipelines produce this shape.
type CandidatePattern struct {
	Type        string
	Name        string
	Description string
	Occurrences int
	Trend       string
	Confidence  float64
	RelatedIDs  []string
	Evidence    []string
	Outcome     *OutcomeStats
}

// OutcomeStats summarizes win/loss performance behind a pattern.
type OutcomeStats struct {
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
	AvgPL   float64 `json:"avg_pl"`
}

// ThesisOutcome names a single thesis result, used for narrative context
// (best/worst in a bucket, best/worst of a month).
type ThesisOutcome struct {
	ThesisID   uint64     `json:"thesis_id"`
	Name       string     `json:"name"`
	Ticker     string     `json:"ticker"`
	Outcome    string     `json:"outcome"`
	RealizedPL float64    `json:"realized_pl"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}
