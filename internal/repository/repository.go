package repository

import (
	"context"
	"time"

	"traderjournal/internal/models"
)

// Repository is the persistence boundary for the analytics service. The
// mining and scoring logic depends only on this interface; the gorm
// implementation lives in repository/gorm.
type Repository interface {
	// Journal entries (read-only except AI-derived columns).
	ListEntries(ctx context.Context, params ListEntriesParams) ([]models.JournalEntry, error)
	CountEntries(ctx context.Context, params ListEntriesParams) (int64, error)
	GetEntryByID(ctx context.Context, id uint64) (*models.JournalEntry, error)
	ListDraftMatchCandidates(ctx context.Context, limit int, biasTags []string) ([]models.JournalEntry, error)
	UpdateEntryAnalysis(ctx context.Context, id uint64, updates map[string]any) (int64, error)

	// Theses and trade legs.
	GetThesisByID(ctx context.Context, id uint64) (*models.Thesis, error)
	ListTheses(ctx context.Context, params ListThesesParams) ([]models.Thesis, error)
	ListClosedTheses(ctx context.Context, since, until *time.Time) ([]models.Thesis, error)
	ListThesesByTickerOrStrategy(ctx context.Context, ticker string, strategyType *string, limit int) ([]models.Thesis, error)
	ListClosedThesesByStrategy(ctx context.Context, strategyType string, limit int) ([]models.Thesis, error)
	ListUpdatesByThesisIDs(ctx context.Context, thesisIDs []uint64) ([]models.ThesisUpdate, error)

	// Market conditions.
	UpsertMarketCondition(ctx context.Context, item *models.MarketCondition) error
	ListMarketConditions(ctx context.Context, since, until *time.Time) ([]models.MarketCondition, error)
	GetMarketConditionByDate(ctx context.Context, date time.Time) (*models.MarketCondition, error)

	// Pattern insights.
	GetActivePatternByName(ctx context.Context, name string) (*models.PatternInsight, error)
	SavePatternInsight(ctx context.Context, item *models.PatternInsight) error
	GetPatternInsightByID(ctx context.Context, id uint64) (*models.PatternInsight, error)
	ListPatternInsights(ctx context.Context, params ListPatternsParams) ([]models.PatternInsight, error)
	DismissPatternInsight(ctx context.Context, id uint64) (int64, error)
}

type ListEntriesParams struct {
	Limit   int
	Offset  int
	Kind    *string
	Ticker  *string
	Since   *time.Time
	Until   *time.Time
	OrderBy string
	Asc     *bool
}

type ListThesesParams struct {
	Limit      int
	Offset     int
	Ticker     *string
	Status     *string
	Outcome    *string
	Since      *time.Time
	Until      *time.Time
	WithTrades bool
	OrderBy    string
	Asc        *bool
}

type ListPatternsParams struct {
	Limit     int
	Offset    int
	Type      *string
	Active    *bool
	Dismissed *bool
	OrderBy   string
	Asc       *bool
}
