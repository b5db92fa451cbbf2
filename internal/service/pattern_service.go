package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"traderjournal/internal/analysis"
	"traderjournal/internal/config"
	"traderjournal/internal/models"
	"traderjournal/internal/repository"
)

// PatternService runs mining passes and maintains the pattern store. The
// statistical pass covers the full closed-thesis history; the qualitative
// pass reads a rolling journal window.
type PatternService struct {
	Repo      repository.Repository
	Extractor *analysis.Extractor
	Logger    *zap.Logger
	Config    config.AnalysisConfig
}

type AnalyzeResult struct {
	Statistical int                     `json:"statistical"`
	Qualitative int                     `json:"qualitative"`
	Saved       []models.PatternInsight `json:"saved"`
}

// Analyze runs both mining passes and merges the candidates into the store.
// Re-detected patterns refresh the existing active row in place, keeping its
// id and dismissal flag. A qualitative failure degrades to a
// statistical-only run.
func (s *PatternService) Analyze(ctx context.Context) (*AnalyzeResult, error) {
	if s == nil || s.Repo == nil {
		return &AnalyzeResult{}, nil
	}

	closed, err := s.Repo.ListClosedTheses(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	candidates := analysis.MineStatisticalPatterns(closed)
	result := &AnalyzeResult{Statistical: len(candidates)}

	windowDays := s.Config.QualitativeWindowDays
	if windowDays <= 0 {
		windowDays = 90
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -windowDays)
	agg := &analysis.Aggregator{Repo: s.Repo}
	corpus, err := agg.Load(ctx, start, end)
	if err != nil {
		return nil, err
	}
	qualitative := s.Extractor.Extract(ctx, corpus)
	result.Qualitative = len(qualitative)
	candidates = append(candidates, qualitative...)

	now := time.Now().UTC()
	for _, candidate := range candidates {
		saved, err := s.mergeCandidate(ctx, candidate, now)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("pattern save failed", zap.String("pattern", candidate.Name), zap.Error(err))
			}
			continue
		}
		result.Saved = append(result.Saved, *saved)
	}
	return result, nil
}

// mergeCandidate applies the refresh-in-place rule. Trend on re-detection is
// derived from the occurrence delta against the stored row; dismissal is
// never reset.
func (s *PatternService) mergeCandidate(ctx context.Context, candidate analysis.CandidatePattern, now time.Time) (*models.PatternInsight, error) {
	existing, err := s.Repo.GetActivePatternByName(ctx, candidate.Name)
	if err != nil {
		return nil, err
	}

	item := &models.PatternInsight{
		PatternType: candidate.Type,
		PatternName: candidate.Name,
		Description: candidate.Description,
		Occurrences: candidate.Occurrences,
		Trend:       candidate.Trend,
		Confidence:  candidate.Confidence,
		RelatedIDs:  mustJSON(candidate.RelatedIDs),
		Evidence:    mustJSON(candidate.Evidence),
		IsActive:    true,
		LastUpdated: now,
	}
	if candidate.Outcome != nil {
		item.OutcomeData = mustJSON(candidate.Outcome)
	}
	if existing != nil {
		item.ID = existing.ID
		item.IsDismissed = existing.IsDismissed
		item.CreatedAt = existing.CreatedAt
		switch {
		case candidate.Occurrences > existing.Occurrences:
			item.Trend = models.TrendIncreasing
		case candidate.Occurrences < existing.Occurrences:
			item.Trend = models.TrendDecreasing
		default:
			item.Trend = models.TrendStable
		}
	}

	if err := s.Repo.SavePatternInsight(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ActivePatterns lists non-dismissed active patterns unless the params say
// otherwise.
func (s *PatternService) ActivePatterns(ctx context.Context, params repository.ListPatternsParams) ([]models.PatternInsight, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if params.Active == nil {
		active := true
		params.Active = &active
	}
	if params.Dismissed == nil {
		dismissed := false
		params.Dismissed = &dismissed
	}
	return s.Repo.ListPatternInsights(ctx, params)
}

// Dismiss marks a pattern dismissed. Dismissal survives future re-detections
// of the same pattern name.
func (s *PatternService) Dismiss(ctx context.Context, id uint64) error {
	if s == nil || s.Repo == nil {
		return ErrNotFound
	}
	affected, err := s.Repo.DismissPatternInsight(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func mustJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}
