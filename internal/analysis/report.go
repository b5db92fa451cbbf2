package analysis

import (
	"sort"
	"time"

	"traderjournal/internal/models"
)

// MonthlyReport is the month-in-review aggregate. Everything except Insight
// is computed symbolically; Insight is filled in by the report service and
// stays empty when the completion fails.
type MonthlyReport struct {
	Month string    `json:"month"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	EntryCount    int            `json:"entry_count"`
	EntriesByKind map[string]int `json:"entries_by_kind"`
	MoodCounts    map[string]int `json:"mood_counts"`
	Sentiment     map[string]int `json:"sentiment_counts"`

	ClosedTheses int     `json:"closed_theses"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	TotalPL      float64 `json:"total_pl"`

	Best  *ThesisOutcome `json:"best,omitempty"`
	Worst *ThesisOutcome `json:"worst,omitempty"`

	MarketDays   int            `json:"market_days"`
	MarketStates map[string]int `json:"market_states"`
	AvgIndexMove float64        `json:"avg_index_move_pct"`

	TopPatterns []models.PatternInsight `json:"top_patterns"`

	Insight string `json:"insight,omitempty"`
}

// BuildMonthlyReport aggregates the corpus and picks the highest-confidence
// active patterns, up to topPatterns.
func BuildMonthlyReport(corpus *Corpus, patterns []models.PatternInsight, topPatterns int) *MonthlyReport {
	report := &MonthlyReport{
		Month:         corpus.Start.Format("2006-01"),
		Start:         corpus.Start,
		End:           corpus.End,
		EntryCount:    len(corpus.Entries),
		EntriesByKind: map[string]int{},
		MoodCounts:    map[string]int{},
		Sentiment:     map[string]int{},
		MarketStates:  map[string]int{},
	}

	for _, entry := range corpus.Entries {
		report.EntriesByKind[entry.EntryKind]++
		if entry.Mood != "" {
			report.MoodCounts[entry.Mood]++
		}
		if entry.Sentiment != "" {
			report.Sentiment[entry.Sentiment]++
		}
	}

	var sumPL float64
	for _, th := range corpus.ClosedTheses() {
		report.ClosedTheses++
		pl := th.RealizedPL.InexactFloat64()
		sumPL += pl
		switch th.Outcome {
		case models.OutcomeWin:
			report.Wins++
		case models.OutcomeLoss:
			report.Losses++
		}
		o := &ThesisOutcome{
			ThesisID:   th.ID,
			Name:       th.Name,
			Ticker:     th.Ticker,
			Outcome:    th.Outcome,
			RealizedPL: pl,
			ClosedAt:   th.ClosedAt,
		}
		if report.Best == nil || pl > report.Best.RealizedPL {
			report.Best = o
		}
		if report.Worst == nil || pl < report.Worst.RealizedPL {
			report.Worst = o
		}
	}
	report.TotalPL = sumPL
	if decided := report.Wins + report.Losses; decided > 0 {
		report.WinRate = float64(report.Wins) / float64(decided)
	}

	var sumMove float64
	for _, day := range corpus.Days {
		report.MarketDays++
		report.MarketStates[day.MarketState]++
		sumMove += day.IndexMovePct
	}
	if report.MarketDays > 0 {
		report.AvgIndexMove = sumMove / float64(report.MarketDays)
	}

	report.TopPatterns = pickTopPatterns(patterns, topPatterns)
	return report
}

func pickTopPatterns(patterns []models.PatternInsight, limit int) []models.PatternInsight {
	if limit <= 0 {
		limit = 5
	}
	picked := make([]models.PatternInsight, 0, len(patterns))
	for _, p := range patterns {
		if !p.IsActive || p.IsDismissed {
			continue
		}
		picked = append(picked, p)
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].Confidence > picked[j].Confidence })
	if len(picked) > limit {
		picked = picked[:limit]
	}
	return picked
}
