package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"traderjournal/internal/config"
	"traderjournal/internal/marketdata"
	"traderjournal/internal/models"
	"traderjournal/internal/repository"
)

// flatBandPct: index moves within this band count as a flat day.
const flatBandPct = 0.25

// MarketSyncService records one MarketCondition row per trading day from the
// market-data service. Runs after the close on weekdays; re-runs upsert the
// same row.
type MarketSyncService struct {
	Repo   repository.Repository
	Client *marketdata.Client
	Logger *zap.Logger
	Config config.MarketDataConfig
}

func (s *MarketSyncService) SyncOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil || s.Client == nil {
		return nil
	}
	indexTicker := s.Config.IndexTicker
	if indexTicker == "" {
		indexTicker = "SPY"
	}
	index, err := s.Client.GetQuote(ctx, indexTicker)
	if err != nil {
		return err
	}

	var volIndex float64
	if s.Config.VolTicker != "" {
		if vol, err := s.Client.GetQuote(ctx, s.Config.VolTicker); err == nil {
			volIndex = vol.CurrentPrice
		} else if s.Logger != nil {
			s.Logger.Warn("volatility index fetch failed", zap.String("ticker", s.Config.VolTicker), zap.Error(err))
		}
	}

	now := time.Now().UTC()
	item := &models.MarketCondition{
		Date:            time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		IndexMovePct:    index.DayChangePercent,
		VolatilityIndex: volIndex,
		MarketState:     classifyMove(index.DayChangePercent),
	}
	if err := s.Repo.UpsertMarketCondition(ctx, item); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("market condition synced",
			zap.String("date", item.Date.Format("2006-01-02")),
			zap.Float64("index_move_pct", item.IndexMovePct),
			zap.String("state", item.MarketState))
	}
	return nil
}

func classifyMove(pct float64) string {
	switch {
	case pct > flatBandPct:
		return models.MarketStateUp
	case pct < -flatBandPct:
		return models.MarketStateDown
	default:
		return models.MarketStateFlat
	}
}
