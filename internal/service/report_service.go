package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"traderjournal/internal/analysis"
	"traderjournal/internal/config"
	"traderjournal/internal/llm"
	"traderjournal/internal/repository"
)

const reportSystemPrompt = `You write a short month-in-review note for a trader's journal. Two or three sentences, direct and specific, grounded only in the numbers and patterns given. No advice boilerplate.`

// ReportService builds the monthly review. The narrative insight comes from
// the fast model; when that call fails the report ships with the numbers
// only.
type ReportService struct {
	Repo      repository.Repository
	Completer llm.CompletionService
	Logger    *zap.Logger
	Config    config.AnalysisConfig
}

func (s *ReportService) Monthly(ctx context.Context, year int, month time.Month) (*analysis.MonthlyReport, error) {
	if s == nil || s.Repo == nil {
		return nil, ErrNotFound
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	agg := &analysis.Aggregator{Repo: s.Repo}
	corpus, err := agg.Load(ctx, start, end)
	if err != nil {
		return nil, err
	}

	active := true
	patterns, err := s.Repo.ListPatternInsights(ctx, repository.ListPatternsParams{
		Limit:  100,
		Active: &active,
	})
	if err != nil {
		return nil, err
	}

	report := analysis.BuildMonthlyReport(corpus, patterns, s.Config.ReportTopPatternsLimit)
	report.Insight = s.narrate(ctx, report)
	return report, nil
}

func (s *ReportService) narrate(ctx context.Context, report *analysis.MonthlyReport) string {
	if s.Completer == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Month %s: %d journal entries, %d closed theses (%d wins, %d losses, %.0f%% win rate), total P&L %+.2f.\n",
		report.Month, report.EntryCount, report.ClosedTheses, report.Wins, report.Losses, report.WinRate*100, report.TotalPL)
	if report.Best != nil {
		fmt.Fprintf(&b, "Best: %s (%s) %+.2f.\n", report.Best.Name, report.Best.Ticker, report.Best.RealizedPL)
	}
	if report.Worst != nil {
		fmt.Fprintf(&b, "Worst: %s (%s) %+.2f.\n", report.Worst.Name, report.Worst.Ticker, report.Worst.RealizedPL)
	}
	if report.MarketDays > 0 {
		fmt.Fprintf(&b, "Market: %d days tracked, avg index move %+.2f%%.\n", report.MarketDays, report.AvgIndexMove)
	}
	for _, p := range report.TopPatterns {
		fmt.Fprintf(&b, "Pattern %s (%s, confidence %.2f): %s\n", p.PatternName, p.Trend, p.Confidence, p.Description)
	}

	out, err := s.Completer.Complete(ctx, llm.Request{
		SystemPrompt: reportSystemPrompt,
		UserPrompt:   b.String(),
		Tier:         llm.TierFast,
	})
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("report insight completion failed", zap.Error(err))
		}
		return ""
	}
	return strings.TrimSpace(out)
}
