package models

import "time"

// MarketCondition is one row per trading day, synced from the market-data
// service. Read-only reference data for the miners.
type MarketCondition struct {
	ID   uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Date time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`

	IndexMovePct    float64 `gorm:"not null;default:0" json:"index_move_pct"`
	VolatilityIndex float64 `gorm:"not null;default:0" json:"volatility_index"`
	MarketState     string  `gorm:"type:varchar(10);not null" json:"market_state"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (MarketCondition) TableName() string {
	return "market_conditions"
}

const (
	MarketStateUp   = "up"
	MarketStateDown = "down"
	MarketStateFlat = "flat"
)
