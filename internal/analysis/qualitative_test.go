package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"traderjournal/internal/llm"
	"traderjournal/internal/models"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
	lastReq  llm.Request
}

func (s *stubCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.calls++
	s.lastReq = req
	return s.response, s.err
}

func testCorpus(entryCount int) *Corpus {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)
	entries := make([]models.JournalEntry, 0, entryCount)
	for i := 0; i < entryCount; i++ {
		entries = append(entries, models.JournalEntry{
			ID:        uint64(i + 1),
			Content:   fmt.Sprintf("entry %d about sizing and patience", i+1),
			EntryKind: "reflection",
			Mood:      "anxious",
			Sentiment: models.SentimentNegative,
			CreatedAt: start.AddDate(0, 0, i),
		})
	}
	return NewCorpus(start, end, entries, nil, nil)
}

func TestExtractor_SkipsBelowEntryFloor(t *testing.T) {
	completer := &stubCompleter{response: "[]"}
	e := &Extractor{Completer: completer, MinEntries: 20}
	if got := e.Extract(context.Background(), testCorpus(19)); got != nil {
		t.Fatalf("expected nil below floor, got %+v", got)
	}
	if completer.calls != 0 {
		t.Fatalf("completer should not be called below the floor")
	}
}

func TestExtractor_CompletionFailureYieldsNothing(t *testing.T) {
	completer := &stubCompleter{err: errors.New("rate limited")}
	e := &Extractor{Completer: completer, MinEntries: 20}
	if got := e.Extract(context.Background(), testCorpus(25)); got != nil {
		t.Fatalf("expected nil on completion failure, got %+v", got)
	}
}

func TestExtractor_UnparseableResponseYieldsNothing(t *testing.T) {
	completer := &stubCompleter{response: "I could not find any patterns, sorry."}
	e := &Extractor{Completer: completer, MinEntries: 20}
	if got := e.Extract(context.Background(), testCorpus(25)); got != nil {
		t.Fatalf("expected nil on unparseable response, got %+v", got)
	}
}

func TestExtractor_ParsesAndFilters(t *testing.T) {
	completer := &stubCompleter{response: "```json\n" + `[
		{"patternType":"emotional","patternName":"Anxious After Losses","description":"Entries after losing days show anxiety.","occurrences":5,"evidence":["quote one"],"trend":"increasing","confidence":0.7,"relatedEntryIds":["1","4","9"]},
		{"patternType":"timing","patternName":"monday_entries","description":"Too thin.","occurrences":2,"evidence":[],"trend":"stable","confidence":0.5,"relatedEntryIds":["2"]},
		{"patternType":"astrology","patternName":"mercury_retrograde","description":"Not a known type.","occurrences":6,"evidence":[],"trend":"stable","confidence":0.9,"relatedEntryIds":[]}
	]` + "\n```"}
	e := &Extractor{Completer: completer, MinEntries: 20}

	got := e.Extract(context.Background(), testCorpus(25))
	if len(got) != 1 {
		t.Fatalf("patterns=%d want 1 (occurrence floor and type filter)", len(got))
	}
	p := got[0]
	if p.Name != "anxious_after_losses" {
		t.Fatalf("name=%q want normalized snake case", p.Name)
	}
	if p.Type != models.PatternTypeEmotional || p.Occurrences != 5 {
		t.Fatalf("unexpected pattern %+v", p)
	}
	if completer.lastReq.Tier != llm.TierDeep {
		t.Fatalf("tier=%q want deep", completer.lastReq.Tier)
	}
}

func TestExtractor_ClampsConfidenceAndTrend(t *testing.T) {
	completer := &stubCompleter{response: `[{"patternType":"timing","patternName":"late_entries","description":"x","occurrences":4,"trend":"sideways","confidence":1.7,"relatedEntryIds":["3"]}]`}
	e := &Extractor{Completer: completer, MinEntries: 20}
	got := e.Extract(context.Background(), testCorpus(25))
	if len(got) != 1 {
		t.Fatalf("patterns=%d want 1", len(got))
	}
	if got[0].Confidence != 1.0 || got[0].Trend != models.TrendStable {
		t.Fatalf("confidence=%v trend=%q", got[0].Confidence, got[0].Trend)
	}
}

func TestSummarizeEntry_IncludesContext(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	day := models.MarketCondition{
		Date:         start,
		IndexMovePct: -1.4,
		MarketState:  models.MarketStateDown,
	}
	ticker := "AAPL"
	thesis := closedThesis(7, "AAPL", models.DirectionBullish, models.OutcomeLoss, -120)
	thesis.CreatedAt = start.AddDate(0, 0, -2)
	corpus := NewCorpus(start, start.AddDate(0, 1, 0), nil, []models.Thesis{thesis}, []models.MarketCondition{day})

	entry := models.JournalEntry{
		ID:        1,
		Content:   "doubling down even though the chart says no",
		EntryKind: "trade_note",
		Ticker:    &ticker,
		Sentiment: models.SentimentNegative,
		CreatedAt: start.Add(15 * time.Hour),
	}
	line := summarizeEntry(corpus, entry)
	for _, want := range []string{"market=down", "thesis_outcome=loss", "ticker=AAPL"} {
		if !strings.Contains(line, want) {
			t.Fatalf("summary missing %q: %s", want, line)
		}
	}
}
