package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"traderjournal/internal/analysis"
	"traderjournal/internal/llm"
	"traderjournal/internal/models"
	"traderjournal/internal/repository"
)

const entryAnalysisSystemPrompt = `You analyze a single trading journal entry. Respond with JSON only:
{"mood": one word, "sentiment": "positive"|"neutral"|"negative", "conviction": 1-10 or null, "biasTags": subset of ["fomo","confirmation_bias","overconfidence","loss_aversion","recency_bias","revenge_trading"], "keywords": up to 5 lowercase keywords}`

// EntryAnalysisService re-runs AI analysis on an edited entry. A cheap
// symbolic gate skips the completion when the edit barely changed the text.
type EntryAnalysisService struct {
	Repo      repository.Repository
	Completer llm.CompletionService
	Logger    *zap.Logger
}

type ReanalysisResult struct {
	EntryID    uint64   `json:"entry_id"`
	Reanalyzed bool     `json:"reanalyzed"`
	Mood       string   `json:"mood,omitempty"`
	Sentiment  string   `json:"sentiment,omitempty"`
	Conviction *int     `json:"conviction,omitempty"`
	BiasTags   []string `json:"bias_tags,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

type entryAnalysisResponse struct {
	Mood       string   `json:"mood"`
	Sentiment  string   `json:"sentiment"`
	Conviction *int     `json:"conviction"`
	BiasTags   []string `json:"biasTags"`
	Keywords   []string `json:"keywords"`
}

// Reanalyze stores the edited content and, when the edit is substantial,
// refreshes the AI-derived columns. A failed completion keeps the previous
// analysis; the content update still lands.
func (s *EntryAnalysisService) Reanalyze(ctx context.Context, id uint64, newContent string) (*ReanalysisResult, error) {
	if s == nil || s.Repo == nil {
		return nil, ErrNotFound
	}
	entry, err := s.Repo.GetEntryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}

	result := &ReanalysisResult{EntryID: id}
	updates := map[string]any{"content": newContent}

	if analysis.ShouldReanalyze(entry.Content, newContent) && s.Completer != nil {
		if parsed := s.analyze(ctx, newContent); parsed != nil {
			result.Reanalyzed = true
			result.Mood = parsed.Mood
			result.Sentiment = normalizeSentiment(parsed.Sentiment)
			result.Conviction = parsed.Conviction
			result.BiasTags = filterBiasTags(parsed.BiasTags)
			result.Keywords = parsed.Keywords

			updates["mood"] = result.Mood
			updates["sentiment"] = result.Sentiment
			if result.Conviction != nil {
				updates["conviction"] = *result.Conviction
			}
			updates["bias_tags"] = mustJSON(result.BiasTags)
			updates["keywords"] = mustJSON(result.Keywords)
		}
	}

	affected, err := s.Repo.UpdateEntryAnalysis(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

func (s *EntryAnalysisService) analyze(ctx context.Context, content string) *entryAnalysisResponse {
	raw, err := s.Completer.Complete(ctx, llm.Request{
		SystemPrompt: entryAnalysisSystemPrompt,
		UserPrompt:   fmt.Sprintf("Entry:\n%s", content),
		Tier:         llm.TierFast,
	})
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("entry analysis completion failed", zap.Error(err))
		}
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	if i := strings.Index(trimmed, "{"); i >= 0 {
		if j := strings.LastIndex(trimmed, "}"); j > i {
			trimmed = trimmed[i : j+1]
		}
	}
	var parsed entryAnalysisResponse
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("entry analysis response unparseable", zap.Error(err))
		}
		return nil
	}
	return &parsed
}

func normalizeSentiment(s string) string {
	switch s {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
		return s
	}
	return models.SentimentNeutral
}

func filterBiasTags(tags []string) []string {
	known := map[string]struct{}{
		models.BiasFOMO:           {},
		models.BiasConfirmation:   {},
		models.BiasOverconfidence: {},
		models.BiasLossAversion:   {},
		models.BiasRecency:        {},
		models.BiasRevengeTrading: {},
	}
	var out []string
	for _, tag := range tags {
		if _, ok := known[tag]; ok {
			out = append(out, tag)
		}
	}
	return out
}
