package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"traderjournal/internal/models"
)

// Reminder kinds, surfaced before a new trade is logged.
const (
	ReminderSuccess = "success"
	ReminderWarning = "warning"
	ReminderLesson  = "lesson"
	ReminderInfo    = "info"
)

type Reminder struct {
	Kind     string  `json:"kind"`
	Priority int     `json:"priority"`
	Message  string  `json:"message"`
	ThesisID *uint64 `json:"thesis_id,omitempty"`
}

// Lesson surfaces a past thesis's lessons-learned text alongside reminders.
type Lesson struct {
	ThesisID uint64     `json:"thesis_id"`
	Ticker   string     `json:"ticker"`
	Text     string     `json:"text"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

// ReminderInput is a candidate trade plus the history needed to judge it.
type ReminderInput struct {
	Ticker       string
	StrategyType *string
	Extracted    *models.ExtractedTradeData

	// History: newest-first theses matching ticker or strategy (<=20).
	History []models.Thesis
	// StrategyHistory: closed theses sharing the strategy, for the
	// volatility-ratio bucket lookback.
	StrategyHistory []models.Thesis
}

// Reminder thresholds and priorities. Priorities are fixed per rule; output
// is sorted by priority descending with ties keeping emission order.
const (
	reminderMinTheses    = 3
	maxLessons           = 3
	strategyWeakWinRate  = 0.4
	volHighRatio         = 1.3
	volLowRatio          = 0.8
	volBucketGoodWinRate = 0.6
	volBucketBadWinRate  = 0.4
)

// GenerateReminders applies the ticker, strategy, and volatility-ratio
// lookbacks to a candidate trade.
func GenerateReminders(in ReminderInput) ([]Reminder, []Lesson) {
	var reminders []Reminder
	var lessons []Lesson

	ticker := strings.ToUpper(strings.TrimSpace(in.Ticker))

	// Ticker lookback.
	var tickerTheses []models.Thesis
	for _, th := range in.History {
		if th.Ticker == ticker {
			tickerTheses = append(tickerTheses, th)
		}
	}
	if len(tickerTheses) >= reminderMinTheses {
		if stat, ok := decidedStats(tickerTheses); ok {
			if stat.WinRate >= strongWinRate {
				reminders = append(reminders, Reminder{
					Kind:     ReminderSuccess,
					Priority: 2,
					Message: fmt.Sprintf("%s has been good to you: %.0f%% win rate across %d theses (avg P&L %+.2f)",
						ticker, stat.WinRate*100, stat.Wins+stat.Losses, stat.AvgPL),
				})
			} else if stat.WinRate <= weakWinRate {
				reminders = append(reminders, Reminder{
					Kind:     ReminderWarning,
					Priority: 5,
					Message: fmt.Sprintf("Caution on %s: only %.0f%% win rate across %d theses (avg P&L %+.2f)",
						ticker, stat.WinRate*100, stat.Wins+stat.Losses, stat.AvgPL),
				})
			}
		}
	}

	// Most recent lessons from the ticker's closed theses, newest first.
	for _, th := range tickerTheses {
		if len(lessons) >= maxLessons {
			break
		}
		if th.Status != models.ThesisStatusClosed {
			continue
		}
		text := strings.TrimSpace(th.LessonsLearned)
		if text == "" {
			continue
		}
		id := th.ID
		reminders = append(reminders, Reminder{
			Kind:     ReminderLesson,
			Priority: 3,
			Message:  fmt.Sprintf("Lesson from %q: %s", th.Name, text),
			ThesisID: &id,
		})
		lessons = append(lessons, Lesson{
			ThesisID: th.ID,
			Ticker:   th.Ticker,
			Text:     text,
			ClosedAt: th.ClosedAt,
		})
	}

	// Strategy lookback.
	if in.StrategyType != nil && strings.TrimSpace(*in.StrategyType) != "" {
		strategy := strings.TrimSpace(*in.StrategyType)
		var strategyTheses []models.Thesis
		for _, th := range in.History {
			if hasStrategy(th, strategy) {
				strategyTheses = append(strategyTheses, th)
			}
		}
		if len(strategyTheses) >= reminderMinTheses {
			if stat, ok := decidedStats(strategyTheses); ok {
				if stat.WinRate >= strongWinRate {
					reminders = append(reminders, Reminder{
						Kind:     ReminderInfo,
						Priority: 1,
						Message: fmt.Sprintf("%s is working for you: %.0f%% win rate across %d theses",
							strategy, stat.WinRate*100, stat.Wins+stat.Losses),
					})
				} else if stat.WinRate <= strategyWeakWinRate {
					reminders = append(reminders, Reminder{
						Kind:     ReminderWarning,
						Priority: 4,
						Message: fmt.Sprintf("%s has struggled: %.0f%% win rate across %d theses",
							strategy, stat.WinRate*100, stat.Wins+stat.Losses),
					})
				}
			}
		}

		// Volatility-ratio lookback, only when the candidate carries both
		// IV and HV.
		if ratio, ok := in.Extracted.IVHVRatio(); ok {
			bucket := MineVolatilityBucket(in.StrategyHistory, ratio)
			if bucket != nil && bucket.Total >= reminderMinTheses {
				if ratio > volHighRatio && bucket.WinRate >= volBucketGoodWinRate {
					reminders = append(reminders, Reminder{
						Kind:     ReminderInfo,
						Priority: 2,
						Message: fmt.Sprintf("Rich premium (IV/HV %.2f): similar setups won %.0f%% of the time (%d trades)",
							ratio, bucket.WinRate*100, bucket.Total),
					})
				} else if ratio < volLowRatio && bucket.WinRate <= volBucketBadWinRate {
					reminders = append(reminders, Reminder{
						Kind:     ReminderWarning,
						Priority: 4,
						Message: fmt.Sprintf("Thin premium (IV/HV %.2f): similar setups won only %.0f%% of the time (%d trades)",
							ratio, bucket.WinRate*100, bucket.Total),
					})
				}
			}
		}
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].Priority > reminders[j].Priority
	})
	return reminders, lessons
}

// decidedStats computes win rate and avg P&L over a slice's decided
// (win/loss) closed theses; false when nothing is decided.
func decidedStats(theses []models.Thesis) (OutcomeStats, bool) {
	var stat OutcomeStats
	var sumPL float64
	for _, th := range theses {
		switch th.Outcome {
		case models.OutcomeWin:
			stat.Wins++
		case models.OutcomeLoss:
			stat.Losses++
		default:
			continue
		}
		sumPL += th.RealizedPL.InexactFloat64()
	}
	total := stat.Wins + stat.Losses
	if total == 0 {
		return stat, false
	}
	stat.WinRate = float64(stat.Wins) / float64(total)
	stat.AvgPL = sumPL / float64(total)
	return stat, true
}
