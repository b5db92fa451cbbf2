package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"traderjournal/internal/analysis"
	"traderjournal/internal/llm"
	"traderjournal/internal/models"
	"traderjournal/internal/repository"
)

// stubRepo is an in-memory Repository for service tests.
type stubRepo struct {
	entries    []models.JournalEntry
	theses     []models.Thesis
	conditions []models.MarketCondition
	patterns   map[uint64]*models.PatternInsight
	nextID     uint64

	updateCalls []map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{patterns: map[uint64]*models.PatternInsight{}, nextID: 1}
}

func (r *stubRepo) ListEntries(_ context.Context, _ repository.ListEntriesParams) ([]models.JournalEntry, error) {
	return r.entries, nil
}

func (r *stubRepo) CountEntries(_ context.Context, _ repository.ListEntriesParams) (int64, error) {
	return int64(len(r.entries)), nil
}

func (r *stubRepo) GetEntryByID(_ context.Context, id uint64) (*models.JournalEntry, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) ListDraftMatchCandidates(_ context.Context, limit int, _ []string) ([]models.JournalEntry, error) {
	var out []models.JournalEntry
	for _, e := range r.entries {
		if e.Sentiment == models.SentimentNegative || len(e.BiasTags) > 0 {
			out = append(out, e)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubRepo) UpdateEntryAnalysis(_ context.Context, id uint64, updates map[string]any) (int64, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.updateCalls = append(r.updateCalls, updates)
			if content, ok := updates["content"].(string); ok {
				r.entries[i].Content = content
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (r *stubRepo) GetThesisByID(_ context.Context, id uint64) (*models.Thesis, error) {
	for i := range r.theses {
		if r.theses[i].ID == id {
			th := r.theses[i]
			return &th, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) ListTheses(_ context.Context, _ repository.ListThesesParams) ([]models.Thesis, error) {
	return r.theses, nil
}

func (r *stubRepo) ListClosedTheses(_ context.Context, _, _ *time.Time) ([]models.Thesis, error) {
	var out []models.Thesis
	for _, th := range r.theses {
		if th.Status == models.ThesisStatusClosed {
			out = append(out, th)
		}
	}
	return out, nil
}

func (r *stubRepo) ListThesesByTickerOrStrategy(_ context.Context, ticker string, strategyType *string, limit int) ([]models.Thesis, error) {
	var out []models.Thesis
	for _, th := range r.theses {
		match := th.Ticker == ticker
		if !match && strategyType != nil {
			for _, leg := range th.Trades {
				if leg.StrategyType == *strategyType {
					match = true
					break
				}
			}
		}
		if match {
			out = append(out, th)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubRepo) ListClosedThesesByStrategy(_ context.Context, strategyType string, limit int) ([]models.Thesis, error) {
	var out []models.Thesis
	for _, th := range r.theses {
		if th.Status != models.ThesisStatusClosed {
			continue
		}
		for _, leg := range th.Trades {
			if leg.StrategyType == strategyType {
				out = append(out, th)
				break
			}
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubRepo) ListUpdatesByThesisIDs(_ context.Context, _ []uint64) ([]models.ThesisUpdate, error) {
	return nil, nil
}

func (r *stubRepo) UpsertMarketCondition(_ context.Context, item *models.MarketCondition) error {
	for i := range r.conditions {
		if r.conditions[i].Date.Equal(item.Date) {
			r.conditions[i] = *item
			return nil
		}
	}
	r.conditions = append(r.conditions, *item)
	return nil
}

func (r *stubRepo) ListMarketConditions(_ context.Context, _, _ *time.Time) ([]models.MarketCondition, error) {
	return r.conditions, nil
}

func (r *stubRepo) GetMarketConditionByDate(_ context.Context, date time.Time) (*models.MarketCondition, error) {
	for i := range r.conditions {
		if r.conditions[i].Date.Equal(date) {
			c := r.conditions[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) GetActivePatternByName(_ context.Context, name string) (*models.PatternInsight, error) {
	for _, p := range r.patterns {
		if p.PatternName == name && p.IsActive {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) SavePatternInsight(_ context.Context, item *models.PatternInsight) error {
	if item.ID == 0 {
		item.ID = r.nextID
		r.nextID++
	}
	clone := *item
	r.patterns[item.ID] = &clone
	return nil
}

func (r *stubRepo) GetPatternInsightByID(_ context.Context, id uint64) (*models.PatternInsight, error) {
	p, ok := r.patterns[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *stubRepo) ListPatternInsights(_ context.Context, params repository.ListPatternsParams) ([]models.PatternInsight, error) {
	var out []models.PatternInsight
	for _, p := range r.patterns {
		if params.Active != nil && p.IsActive != *params.Active {
			continue
		}
		if params.Dismissed != nil && p.IsDismissed != *params.Dismissed {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubRepo) DismissPatternInsight(_ context.Context, id uint64) (int64, error) {
	p, ok := r.patterns[id]
	if !ok {
		return 0, nil
	}
	p.IsDismissed = true
	return 1, nil
}

func strongTickerTheses() []models.Thesis {
	var out []models.Thesis
	for i := uint64(1); i <= 3; i++ {
		out = append(out, models.Thesis{
			ID:         i,
			Name:       "AAPL run",
			Ticker:     "AAPL",
			Direction:  models.DirectionBullish,
			Status:     models.ThesisStatusClosed,
			Outcome:    models.OutcomeWin,
			RealizedPL: decimal.NewFromInt(100),
		})
	}
	return out
}

func TestPatternService_AnalyzeCreatesPatterns(t *testing.T) {
	repo := newStubRepo()
	repo.theses = strongTickerTheses()
	svc := &PatternService{Repo: repo}

	result, err := svc.Analyze(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Statistical == 0 || len(result.Saved) == 0 {
		t.Fatalf("expected saved patterns, got %+v", result)
	}

	saved, err := repo.GetActivePatternByName(context.Background(), "ticker_aapl")
	if err != nil || saved == nil {
		t.Fatalf("ticker_aapl not stored: %v", err)
	}
	if saved.Occurrences != 3 || !saved.IsActive || saved.IsDismissed {
		t.Fatalf("unexpected stored pattern %+v", saved)
	}
	var relatedIDs []string
	if err := json.Unmarshal(saved.RelatedIDs, &relatedIDs); err != nil || len(relatedIDs) != 3 {
		t.Fatalf("relatedIDs=%v err=%v", relatedIDs, err)
	}
}

func TestPatternService_AnalyzeIdempotent(t *testing.T) {
	repo := newStubRepo()
	repo.theses = strongTickerTheses()
	svc := &PatternService{Repo: repo}

	if _, err := svc.Analyze(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := repo.GetActivePatternByName(context.Background(), "ticker_aapl")

	time.Sleep(time.Millisecond)
	if _, err := svc.Analyze(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := repo.GetActivePatternByName(context.Background(), "ticker_aapl")

	if second.ID != first.ID {
		t.Fatalf("identical input must not create a new row")
	}
	if second.Occurrences != first.Occurrences {
		t.Fatalf("occurrences changed on identical input: %d -> %d", first.Occurrences, second.Occurrences)
	}
	if second.Trend != models.TrendStable {
		t.Fatalf("trend=%q want stable", second.Trend)
	}
	if !second.LastUpdated.After(first.LastUpdated) {
		t.Fatalf("lastUpdated must strictly increase")
	}
	count := 0
	for _, p := range repo.patterns {
		if p.PatternName == "ticker_aapl" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("rows=%d want 1", count)
	}
}

func TestPatternService_ReanalysisRefreshesInPlace(t *testing.T) {
	repo := newStubRepo()
	repo.theses = strongTickerTheses()
	svc := &PatternService{Repo: repo}

	if _, err := svc.Analyze(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := repo.GetActivePatternByName(context.Background(), "ticker_aapl")

	// One more winning thesis; the pattern should refresh, not duplicate.
	repo.theses = append(repo.theses, models.Thesis{
		ID:         4,
		Ticker:     "AAPL",
		Direction:  models.DirectionBullish,
		Status:     models.ThesisStatusClosed,
		Outcome:    models.OutcomeWin,
		RealizedPL: decimal.NewFromInt(60),
	})
	if _, err := svc.Analyze(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	second, _ := repo.GetActivePatternByName(context.Background(), "ticker_aapl")
	if second.ID != first.ID {
		t.Fatalf("pattern id changed: %d -> %d", first.ID, second.ID)
	}
	if second.Occurrences != 4 {
		t.Fatalf("occurrences=%d want 4", second.Occurrences)
	}
	if second.Trend != models.TrendIncreasing {
		t.Fatalf("trend=%q want increasing", second.Trend)
	}
	if second.LastUpdated.Before(first.LastUpdated) {
		t.Fatalf("lastUpdated went backwards")
	}

	count := 0
	for _, p := range repo.patterns {
		if p.PatternName == "ticker_aapl" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("active rows for ticker_aapl=%d want 1", count)
	}
}

func TestPatternService_DismissalSticky(t *testing.T) {
	repo := newStubRepo()
	repo.theses = strongTickerTheses()
	svc := &PatternService{Repo: repo}

	if _, err := svc.Analyze(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stored, _ := repo.GetActivePatternByName(context.Background(), "ticker_aapl")
	if err := svc.Dismiss(context.Background(), stored.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	if _, err := svc.Analyze(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	after, _ := repo.GetActivePatternByName(context.Background(), "ticker_aapl")
	if !after.IsDismissed {
		t.Fatalf("re-detection must not clear dismissal")
	}
}

func TestPatternService_DismissNotFound(t *testing.T) {
	svc := &PatternService{Repo: newStubRepo()}
	if err := svc.Dismiss(context.Background(), 999); err != ErrNotFound {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestPatternService_QualitativeFailureDegrades(t *testing.T) {
	repo := newStubRepo()
	repo.theses = strongTickerTheses()
	// Enough entries to clear the floor, but the completer always fails.
	for i := uint64(1); i <= 25; i++ {
		repo.entries = append(repo.entries, models.JournalEntry{ID: i, Content: "entry", CreatedAt: time.Now()})
	}
	svc := &PatternService{
		Repo:      repo,
		Extractor: newFailingExtractor(),
	}
	result, err := svc.Analyze(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Qualitative != 0 {
		t.Fatalf("qualitative=%d want 0", result.Qualitative)
	}
	if result.Statistical == 0 {
		t.Fatalf("statistical pass must survive a qualitative failure")
	}
}

type failingCompleter struct{}

func (failingCompleter) Complete(_ context.Context, _ llm.Request) (string, error) {
	return "", context.DeadlineExceeded
}

func newFailingExtractor() *analysis.Extractor {
	return &analysis.Extractor{Completer: failingCompleter{}, MinEntries: 20}
}

func TestPatternService_ActivePatternsDefaults(t *testing.T) {
	repo := newStubRepo()
	now := time.Now()
	repo.patterns[1] = &models.PatternInsight{ID: 1, PatternName: "a", IsActive: true, LastUpdated: now}
	repo.patterns[2] = &models.PatternInsight{ID: 2, PatternName: "b", IsActive: true, IsDismissed: true, LastUpdated: now}
	repo.patterns[3] = &models.PatternInsight{ID: 3, PatternName: "c", IsActive: false, LastUpdated: now}
	svc := &PatternService{Repo: repo}

	items, err := svc.ActivePatterns(context.Background(), repository.ListPatternsParams{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(items) != 1 || items[0].PatternName != "a" {
		t.Fatalf("items=%+v want only the active, non-dismissed pattern", items)
	}

	dismissed := true
	items, err = svc.ActivePatterns(context.Background(), repository.ListPatternsParams{Dismissed: &dismissed})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(items) != 1 || items[0].PatternName != "b" {
		t.Fatalf("items=%+v want the dismissed pattern", items)
	}
}
