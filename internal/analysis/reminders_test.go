package analysis

import (
	"strings"
	"testing"
	"time"

	"traderjournal/internal/models"
)

func TestGenerateReminders_TickerSuccess(t *testing.T) {
	history := []models.Thesis{
		closedThesis(1, "AAPL", models.DirectionBullish, models.OutcomeWin, 120),
		closedThesis(2, "AAPL", models.DirectionBullish, models.OutcomeWin, 140),
		closedThesis(3, "AAPL", models.DirectionBullish, models.OutcomeWin, 100),
		closedThesis(4, "AAPL", models.DirectionBullish, models.OutcomeWin, 120),
		closedThesis(5, "AAPL", models.DirectionBullish, models.OutcomeLoss, -80),
	}
	reminders, _ := GenerateReminders(ReminderInput{Ticker: "aapl", History: history})
	if len(reminders) != 1 {
		t.Fatalf("reminders=%d want 1", len(reminders))
	}
	r := reminders[0]
	if r.Kind != ReminderSuccess || r.Priority != 2 {
		t.Fatalf("unexpected reminder %+v", r)
	}
	if !strings.Contains(r.Message, "80%") {
		t.Fatalf("message should cite the 80%% win rate: %q", r.Message)
	}
}

func TestGenerateReminders_TickerWarning(t *testing.T) {
	history := []models.Thesis{
		closedThesis(1, "TSLA", models.DirectionBullish, models.OutcomeLoss, -50),
		closedThesis(2, "TSLA", models.DirectionBullish, models.OutcomeLoss, -70),
		closedThesis(3, "TSLA", models.DirectionBullish, models.OutcomeLoss, -20),
		closedThesis(4, "TSLA", models.DirectionBullish, models.OutcomeWin, 30),
	}
	reminders, _ := GenerateReminders(ReminderInput{Ticker: "TSLA", History: history})
	if len(reminders) != 1 {
		t.Fatalf("reminders=%d want 1", len(reminders))
	}
	if reminders[0].Kind != ReminderWarning || reminders[0].Priority != 5 {
		t.Fatalf("unexpected reminder %+v", reminders[0])
	}
}

func TestGenerateReminders_BelowFloorSilent(t *testing.T) {
	history := []models.Thesis{
		closedThesis(1, "NVDA", models.DirectionBullish, models.OutcomeWin, 10),
		closedThesis(2, "NVDA", models.DirectionBullish, models.OutcomeWin, 10),
	}
	reminders, _ := GenerateReminders(ReminderInput{Ticker: "NVDA", History: history})
	if len(reminders) != 0 {
		t.Fatalf("expected silence below the floor, got %+v", reminders)
	}
}

func TestGenerateReminders_LessonsCappedAtThree(t *testing.T) {
	closedAt := time.Now()
	var history []models.Thesis
	for i := uint64(1); i <= 5; i++ {
		th := closedThesis(i, "AMD", models.DirectionBullish, models.OutcomeWin, 10)
		th.LessonsLearned = "take profits earlier"
		th.ClosedAt = &closedAt
		history = append(history, th)
	}
	reminders, lessons := GenerateReminders(ReminderInput{Ticker: "AMD", History: history})
	if len(lessons) != 3 {
		t.Fatalf("lessons=%d want 3", len(lessons))
	}
	lessonCount := 0
	for _, r := range reminders {
		if r.Kind == ReminderLesson {
			lessonCount++
			if r.Priority != 3 || r.ThesisID == nil {
				t.Fatalf("unexpected lesson reminder %+v", r)
			}
		}
	}
	if lessonCount != 3 {
		t.Fatalf("lesson reminders=%d want 3", lessonCount)
	}
}

func TestGenerateReminders_StrategyAndVolatility(t *testing.T) {
	strategy := "credit_spread"
	iv, hv := 150.0, 100.0 // ratio 1.5

	var history []models.Thesis
	for i := uint64(1); i <= 3; i++ {
		history = append(history, withStrategy(closedThesis(i, "SPY", models.DirectionNeutral, models.OutcomeWin, 20), strategy))
	}
	strategyHistory := []models.Thesis{
		withVolData(closedThesis(10, "SPY", models.DirectionNeutral, models.OutcomeWin, 20), 145, 100),
		withVolData(closedThesis(11, "SPY", models.DirectionNeutral, models.OutcomeWin, 25), 160, 100),
		withVolData(closedThesis(12, "QQQ", models.DirectionNeutral, models.OutcomeLoss, -10), 150, 100),
	}

	reminders, _ := GenerateReminders(ReminderInput{
		Ticker:          "XLF",
		StrategyType:    &strategy,
		Extracted:       &models.ExtractedTradeData{IV: &iv, HV: &hv},
		History:         history,
		StrategyHistory: strategyHistory,
	})

	var kinds []string
	for _, r := range reminders {
		kinds = append(kinds, r.Kind)
	}
	if len(reminders) != 2 {
		t.Fatalf("reminders=%v want strategy info + volatility info", kinds)
	}
	// Strategy info is priority 1, volatility info priority 2; sorted desc.
	if reminders[0].Priority != 2 || reminders[1].Priority != 1 {
		t.Fatalf("priorities=[%d %d] want [2 1]", reminders[0].Priority, reminders[1].Priority)
	}
}

func TestGenerateReminders_SortedByPriorityDesc(t *testing.T) {
	strategy := "naked_put"
	closedAt := time.Now()

	// Ticker warning (p5) + lessons (p3) + strategy warning (p4).
	var history []models.Thesis
	for i := uint64(1); i <= 4; i++ {
		th := withStrategy(closedThesis(i, "COIN", models.DirectionBullish, models.OutcomeLoss, -40), strategy)
		th.LessonsLearned = "stop selling puts into downtrends"
		th.ClosedAt = &closedAt
		history = append(history, th)
	}
	reminders, _ := GenerateReminders(ReminderInput{
		Ticker:       "COIN",
		StrategyType: &strategy,
		History:      history,
	})
	if len(reminders) < 3 {
		t.Fatalf("reminders=%d want at least 3", len(reminders))
	}
	for i := 1; i < len(reminders); i++ {
		if reminders[i].Priority > reminders[i-1].Priority {
			t.Fatalf("not sorted by priority desc: %+v", reminders)
		}
	}
	if reminders[0].Priority != 5 {
		t.Fatalf("top priority=%d want 5", reminders[0].Priority)
	}
}
