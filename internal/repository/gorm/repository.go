package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"traderjournal/internal/models"
	"traderjournal/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Journal entries --------------------------------------------------------

func (s *Store) ListEntries(ctx context.Context, params repository.ListEntriesParams) ([]models.JournalEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyEntryFilters(s.db.WithContext(ctx).Model(&models.JournalEntry{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.JournalEntry
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountEntries(ctx context.Context, params repository.ListEntriesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	query := applyEntryFilters(s.db.WithContext(ctx).Model(&models.JournalEntry{}), params)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyEntryFilters(query *gorm.DB, params repository.ListEntriesParams) *gorm.DB {
	if params.Kind != nil && strings.TrimSpace(*params.Kind) != "" {
		query = query.Where("entry_kind = ?", strings.TrimSpace(*params.Kind))
	}
	if params.Ticker != nil && strings.TrimSpace(*params.Ticker) != "" {
		query = query.Where("ticker = ?", strings.ToUpper(strings.TrimSpace(*params.Ticker)))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("created_at < ?", *params.Until)
	}
	return query
}

func (s *Store) GetEntryByID(ctx context.Context, id uint64) (*models.JournalEntry, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.JournalEntry
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListDraftMatchCandidates returns the newest entries flagged with negative
// sentiment or carrying one of the given bias tags.
func (s *Store) ListDraftMatchCandidates(ctx context.Context, limit int, biasTags []string) ([]models.JournalEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	query := s.db.WithContext(ctx).Model(&models.JournalEntry{})
	cond := s.db.Where("sentiment = ?", models.SentimentNegative)
	for _, tag := range biasTags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		cond = cond.Or("bias_tags @> ?", `["`+tag+`"]`)
	}
	var items []models.JournalEntry
	if err := query.Where(cond).Order("created_at desc").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateEntryAnalysis(ctx context.Context, id uint64, updates map[string]any) (int64, error) {
	if s == nil || s.db == nil || id == 0 || len(updates) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// --- Theses -----------------------------------------------------------------

func (s *Store) GetThesisByID(ctx context.Context, id uint64) (*models.Thesis, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Thesis
	err := s.db.WithContext(ctx).
		Preload("Trades").
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTheses(ctx context.Context, params repository.ListThesesParams) ([]models.Thesis, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Thesis{})
	if params.Ticker != nil && strings.TrimSpace(*params.Ticker) != "" {
		query = query.Where("ticker = ?", strings.ToUpper(strings.TrimSpace(*params.Ticker)))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Outcome != nil && strings.TrimSpace(*params.Outcome) != "" {
		query = query.Where("outcome = ?", strings.TrimSpace(*params.Outcome))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("created_at < ?", *params.Until)
	}
	if params.WithTrades {
		query = query.Preload("Trades")
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Thesis
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListClosedTheses(ctx context.Context, since, until *time.Time) ([]models.Thesis, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.Thesis{}).
		Preload("Trades").
		Where("status = ?", models.ThesisStatusClosed).
		Where("outcome <> ''")
	if since != nil && !since.IsZero() {
		query = query.Where("closed_at >= ?", *since)
	}
	if until != nil && !until.IsZero() {
		query = query.Where("closed_at < ?", *until)
	}
	var items []models.Thesis
	if err := query.Order("closed_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListThesesByTickerOrStrategy returns the newest theses that either trade
// the ticker or contain a leg with the given strategy type.
func (s *Store) ListThesesByTickerOrStrategy(ctx context.Context, ticker string, strategyType *string, limit int) ([]models.Thesis, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	limit = normalizeLimit(limit, 20)
	query := s.db.WithContext(ctx).Model(&models.Thesis{}).Preload("Trades")
	if strategyType != nil && strings.TrimSpace(*strategyType) != "" {
		query = query.Where(
			"ticker = ? OR id IN (?)",
			ticker,
			s.db.Model(&models.ThesisTrade{}).
				Select("thesis_id").
				Where("thesis_id IS NOT NULL").
				Where("strategy_type = ?", strings.TrimSpace(*strategyType)),
		)
	} else {
		query = query.Where("ticker = ?", ticker)
	}
	var items []models.Thesis
	if err := query.Order("created_at desc").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListClosedThesesByStrategy(ctx context.Context, strategyType string, limit int) ([]models.Thesis, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	strategyType = strings.TrimSpace(strategyType)
	if strategyType == "" {
		return nil, nil
	}
	limit = normalizeLimit(limit, 100)
	var items []models.Thesis
	err := s.db.WithContext(ctx).
		Model(&models.Thesis{}).
		Preload("Trades").
		Where("status = ?", models.ThesisStatusClosed).
		Where("id IN (?)",
			s.db.Model(&models.ThesisTrade{}).
				Select("thesis_id").
				Where("thesis_id IS NOT NULL").
				Where("strategy_type = ?", strategyType),
		).
		Order("closed_at desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListUpdatesByThesisIDs(ctx context.Context, thesisIDs []uint64) ([]models.ThesisUpdate, error) {
	if s == nil || s.db == nil || len(thesisIDs) == 0 {
		return nil, nil
	}
	var items []models.ThesisUpdate
	if err := s.db.WithContext(ctx).
		Where("thesis_id IN ?", thesisIDs).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Market conditions ------------------------------------------------------

func (s *Store) UpsertMarketCondition(ctx context.Context, item *models.MarketCondition) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"index_move_pct",
			"volatility_index",
			"market_state",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListMarketConditions(ctx context.Context, since, until *time.Time) ([]models.MarketCondition, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.MarketCondition{})
	if since != nil && !since.IsZero() {
		query = query.Where("date >= ?", since.Format("2006-01-02"))
	}
	if until != nil && !until.IsZero() {
		query = query.Where("date < ?", until.Format("2006-01-02"))
	}
	var items []models.MarketCondition
	if err := query.Order("date asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetMarketConditionByDate(ctx context.Context, date time.Time) (*models.MarketCondition, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.MarketCondition
	err := s.db.WithContext(ctx).
		First(&item, "date = ?", date.Format("2006-01-02")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Pattern insights -------------------------------------------------------

func (s *Store) GetActivePatternByName(ctx context.Context, name string) (*models.PatternInsight, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var item models.PatternInsight
	err := s.db.WithContext(ctx).
		Where("pattern_name = ?", name).
		Where("is_active = ?", true).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SavePatternInsight creates or fully saves an insight row. The merge rule
// (select by name+active, preserve id and flags) lives in the pattern
// service; concurrent mining runs are last-write-wins by design.
func (s *Store) SavePatternInsight(ctx context.Context, item *models.PatternInsight) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetPatternInsightByID(ctx context.Context, id uint64) (*models.PatternInsight, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.PatternInsight
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListPatternInsights(ctx context.Context, params repository.ListPatternsParams) ([]models.PatternInsight, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.PatternInsight{})
	if params.Type != nil && strings.TrimSpace(*params.Type) != "" {
		query = query.Where("pattern_type = ?", strings.TrimSpace(*params.Type))
	}
	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	if params.Dismissed != nil {
		query = query.Where("is_dismissed = ?", *params.Dismissed)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "confidence")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.PatternInsight
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DismissPatternInsight(ctx context.Context, id uint64) (int64, error) {
	if s == nil || s.db == nil || id == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.PatternInsight{}).
		Where("id = ?", id).
		Update("is_dismissed", true)
	return res.RowsAffected, res.Error
}

// --- helpers ----------------------------------------------------------------

var orderColumns = map[string]bool{
	"created_at":   true,
	"closed_at":    true,
	"last_updated": true,
	"confidence":   true,
	"occurrences":  true,
	"date":         true,
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	col := strings.TrimSpace(orderBy)
	if col == "" || !orderColumns[col] {
		col = fallback
	}
	dir := "desc"
	if asc != nil && *asc {
		dir = "asc"
	}
	return query.Order(col + " " + dir)
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
