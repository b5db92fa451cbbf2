package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Thesis is a named trading idea spanning one or more trade legs on a ticker.
// Outcome and lessons are written once by the close flow and never change
// afterwards; there is no reopen operation.
type Thesis struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Name      string `gorm:"type:varchar(200);not null" json:"name"`
	Ticker    string `gorm:"type:varchar(20);not null;index" json:"ticker"`
	Direction string `gorm:"type:varchar(10);not null;index" json:"direction"`
	Status    string `gorm:"type:varchar(10);not null;index" json:"status"`

	RealizedPL      decimal.Decimal `gorm:"column:realized_pl;type:numeric(30,10);not null;default:0" json:"realized_pl"`
	UnrealizedPL    decimal.Decimal `gorm:"column:unrealized_pl;type:numeric(30,10);not null;default:0" json:"unrealized_pl"`
	CapitalDeployed decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0" json:"capital_deployed"`

	Outcome        string     `gorm:"type:varchar(10);index" json:"outcome"`
	LessonsLearned string     `gorm:"type:text" json:"lessons_learned"`
	ClosedAt       *time.Time `gorm:"type:timestamptz;index" json:"closed_at,omitempty"`

	Trades  []ThesisTrade  `gorm:"foreignKey:ThesisID" json:"trades,omitempty"`
	Updates []ThesisUpdate `gorm:"foreignKey:ThesisID" json:"updates,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Thesis) TableName() string {
	return "theses"
}

const (
	DirectionBullish  = "bullish"
	DirectionBearish  = "bearish"
	DirectionNeutral  = "neutral"
	DirectionVolatile = "volatile"
)

const (
	ThesisStatusActive  = "active"
	ThesisStatusClosed  = "closed"
	ThesisStatusExpired = "expired"
)

const (
	OutcomeWin       = "win"
	OutcomeLoss      = "loss"
	OutcomeBreakeven = "breakeven"
)
