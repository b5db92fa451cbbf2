package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ThesisTrade is one executed action within a thesis. ThesisID is nil for
// standalone legs logged outside any thesis.
type ThesisTrade struct {
	ID       uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ThesisID *uint64 `gorm:"index" json:"thesis_id,omitempty"`

	Action       string `gorm:"type:varchar(20);not null;index" json:"action"`
	StrategyType string `gorm:"type:varchar(40);not null;index" json:"strategy_type"`

	OpenedAt time.Time  `gorm:"type:timestamptz;not null;index" json:"opened_at"`
	ClosedAt *time.Time `gorm:"type:timestamptz" json:"closed_at,omitempty"`

	Debit      decimal.Decimal  `gorm:"type:numeric(30,10);not null;default:0" json:"debit"`
	Credit     decimal.Decimal  `gorm:"type:numeric(30,10);not null;default:0" json:"credit"`
	RealizedPL *decimal.Decimal `gorm:"column:realized_pl;type:numeric(30,10)" json:"realized_pl,omitempty"`

	// ExtractedData holds the vision-extraction blob (ticker, IV, HV,
	// premium); absent for manually logged legs.
	ExtractedData datatypes.JSON `gorm:"type:jsonb" json:"extracted_data,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (ThesisTrade) TableName() string {
	return "thesis_trades"
}

const (
	TradeActionInitial = "initial"
	TradeActionAdd     = "add"
	TradeActionReduce  = "reduce"
	TradeActionRoll    = "roll"
	TradeActionClose   = "close"
)

// ExtractedTradeData is the structured form of ThesisTrade.ExtractedData.
// IV and HV are percentages (e.g. 32.5 for 32.5%).
type ExtractedTradeData struct {
	Ticker  string   `json:"ticker,omitempty"`
	IV      *float64 `json:"iv,omitempty"`
	HV      *float64 `json:"hv,omitempty"`
	Premium *float64 `json:"premium,omitempty"`
}

// Extracted decodes the jsonb blob; returns nil when absent or malformed.
func (t ThesisTrade) Extracted() *ExtractedTradeData {
	if len(t.ExtractedData) == 0 {
		return nil
	}
	var out ExtractedTradeData
	if err := json.Unmarshal(t.ExtractedData, &out); err != nil {
		return nil
	}
	return &out
}

// IVHVRatio returns IV/HV when both are present and HV is non-zero.
func (d *ExtractedTradeData) IVHVRatio() (float64, bool) {
	if d == nil || d.IV == nil || d.HV == nil || *d.HV == 0 {
		return 0, false
	}
	return *d.IV / *d.HV, true
}
