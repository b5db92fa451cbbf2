package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"traderjournal/internal/analysis"
	"traderjournal/internal/config"
	"traderjournal/internal/models"
	"traderjournal/internal/repository"
)

// AdvisorService answers the pre-trade surfaces: reminders for a candidate
// trade, similar past theses, and live draft checks.
type AdvisorService struct {
	Repo    repository.Repository
	Matcher *analysis.DraftMatcher
	Logger  *zap.Logger
	Config  config.AnalysisConfig
}

// TradeQuery describes the trade being considered. IV and HV are optional;
// the volatility lookback only fires when both are present.
type TradeQuery struct {
	Ticker       string
	StrategyType *string
	IV           *float64
	HV           *float64
}

type RemindersResult struct {
	Reminders []analysis.Reminder `json:"reminders"`
	Lessons   []analysis.Lesson   `json:"lessons"`
}

func (s *AdvisorService) TradeReminders(ctx context.Context, query TradeQuery) (*RemindersResult, error) {
	if s == nil || s.Repo == nil {
		return &RemindersResult{}, nil
	}
	limit := s.Config.ReminderHistoryLimit
	if limit <= 0 {
		limit = 20
	}
	history, err := s.Repo.ListThesesByTickerOrStrategy(ctx, strings.ToUpper(strings.TrimSpace(query.Ticker)), query.StrategyType, limit)
	if err != nil {
		return nil, err
	}

	input := analysis.ReminderInput{
		Ticker:       query.Ticker,
		StrategyType: query.StrategyType,
		History:      history,
	}
	if query.IV != nil && query.HV != nil {
		input.Extracted = &models.ExtractedTradeData{IV: query.IV, HV: query.HV}
	}
	if query.StrategyType != nil && input.Extracted != nil {
		strategyHistory, err := s.Repo.ListClosedThesesByStrategy(ctx, *query.StrategyType, limit)
		if err != nil {
			return nil, err
		}
		input.StrategyHistory = strategyHistory
	}

	reminders, lessons := analysis.GenerateReminders(input)
	return &RemindersResult{Reminders: reminders, Lessons: lessons}, nil
}

// SimilarTheses ranks past theses against a candidate trade by symbolic
// similarity.
func (s *AdvisorService) SimilarTheses(ctx context.Context, ticker string, strategyType *string) ([]analysis.ThesisMatch, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	limit := s.Config.ReminderHistoryLimit
	if limit <= 0 {
		limit = 20
	}
	history, err := s.Repo.ListThesesByTickerOrStrategy(ctx, strings.ToUpper(strings.TrimSpace(ticker)), strategyType, limit)
	if err != nil {
		return nil, err
	}
	return analysis.ScoreTheses(history, ticker, strategyType), nil
}

// Bias tags that make a past entry a draft-check candidate.
var draftCandidateBiases = []string{
	models.BiasFOMO,
	models.BiasConfirmation,
	models.BiasOverconfidence,
}

// CheckDraft compares an in-progress draft against past negative or
// bias-flagged entries. A nil alert means no match, never an error surfaced
// to the caller's UI.
func (s *AdvisorService) CheckDraft(ctx context.Context, draft string) (*analysis.DraftAlert, error) {
	if s == nil || s.Repo == nil || s.Matcher == nil {
		return nil, nil
	}
	limit := s.Config.DraftCandidateLimit
	if limit <= 0 {
		limit = 50
	}
	candidates, err := s.Repo.ListDraftMatchCandidates(ctx, limit, draftCandidateBiases)
	if err != nil {
		return nil, err
	}
	alert := s.Matcher.Match(ctx, draft, candidates)
	if alert == nil && s.Logger != nil {
		s.Logger.Debug("draft check: no match", zap.Int("candidates", len(candidates)))
	}
	return alert, nil
}
