package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"traderjournal/internal/analysis"
	"traderjournal/internal/llm"
	"traderjournal/internal/models"
)

type cannedCompleter struct {
	response string
	calls    int
}

func (c *cannedCompleter) Complete(_ context.Context, _ llm.Request) (string, error) {
	c.calls++
	return c.response, nil
}

func TestAdvisorService_TradeReminders(t *testing.T) {
	repo := newStubRepo()
	repo.theses = strongTickerTheses()
	svc := &AdvisorService{Repo: repo}

	result, err := svc.TradeReminders(context.Background(), TradeQuery{Ticker: "aapl"})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(result.Reminders) != 1 || result.Reminders[0].Kind != analysis.ReminderSuccess {
		t.Fatalf("reminders=%+v want one success", result.Reminders)
	}
}

func TestAdvisorService_SimilarTheses(t *testing.T) {
	repo := newStubRepo()
	repo.theses = []models.Thesis{
		{
			ID:         1,
			Ticker:     "AAPL",
			Status:     models.ThesisStatusClosed,
			Outcome:    models.OutcomeWin,
			RealizedPL: decimal.NewFromInt(50),
		},
		{
			ID:     2,
			Ticker: "MSFT",
			Status: models.ThesisStatusActive,
		},
	}
	svc := &AdvisorService{Repo: repo}
	matches, err := svc.SimilarTheses(context.Background(), "AAPL", nil)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(matches) != 1 || matches[0].Thesis.ID != 1 {
		t.Fatalf("matches=%+v want the AAPL thesis only", matches)
	}
	if matches[0].Score != 60 {
		t.Fatalf("score=%d want 60 (ticker + closed)", matches[0].Score)
	}
}

func TestAdvisorService_CheckDraft(t *testing.T) {
	repo := newStubRepo()
	repo.entries = []models.JournalEntry{
		{ID: 9, Content: "chasing again, cannot sit out", Sentiment: models.SentimentNegative},
	}
	completer := &cannedCompleter{response: `{"alert":"Same chase pattern as entry 9.","matchingEntryIds":["9"]}`}
	svc := &AdvisorService{
		Repo:    repo,
		Matcher: &analysis.DraftMatcher{Completer: completer},
	}

	alert, err := svc.CheckDraft(context.Background(), "I want to buy this breakout right now before it runs without me")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if alert == nil || len(alert.EntryIDs) != 1 {
		t.Fatalf("alert=%+v", alert)
	}
}

func TestAdvisorService_CheckDraftNoCandidates(t *testing.T) {
	completer := &cannedCompleter{response: `{"alert":"x","matchingEntryIds":["1"]}`}
	svc := &AdvisorService{
		Repo:    newStubRepo(),
		Matcher: &analysis.DraftMatcher{Completer: completer},
	}
	alert, err := svc.CheckDraft(context.Background(), "a draft that is long enough to pass the length gate easily")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if alert != nil {
		t.Fatalf("expected nil without candidates, got %+v", alert)
	}
	if completer.calls != 0 {
		t.Fatalf("completer should not run without candidates")
	}
}
