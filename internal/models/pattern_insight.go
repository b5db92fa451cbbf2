package models

import (
	"time"

	"gorm.io/datatypes"
)

// PatternInsight is the durable output of a mining run. At most one active
// row may exist per pattern name; re-detection refreshes the row in place.
// Dismissal is one-way and sticky across mining runs.
type PatternInsight struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	PatternType string `gorm:"type:varchar(30);not null;index" json:"pattern_type"`
	PatternName string `gorm:"type:varchar(120);not null;uniqueIndex:idx_pattern_name_active" json:"pattern_name"`
	Description string `gorm:"type:text" json:"description"`

	Occurrences int     `gorm:"not null;default:0" json:"occurrences"`
	Trend       string  `gorm:"type:varchar(15)" json:"trend"`
	Confidence  float64 `gorm:"not null;default:0" json:"confidence"`

	RelatedIDs  datatypes.JSON `gorm:"type:jsonb" json:"related_ids"`
	Evidence    datatypes.JSON `gorm:"type:jsonb" json:"evidence"`
	OutcomeData datatypes.JSON `gorm:"type:jsonb" json:"outcome_data,omitempty"`

	IsActive    bool `gorm:"not null;default:true;uniqueIndex:idx_pattern_name_active" json:"is_active"`
	IsDismissed bool `gorm:"not null;default:false;index" json:"is_dismissed"`

	LastUpdated time.Time `gorm:"type:timestamptz;not null" json:"last_updated"`
	CreatedAt   time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (PatternInsight) TableName() string {
	return "pattern_insights"
}

const (
	PatternTypeTiming          = "timing"
	PatternTypeConviction      = "conviction"
	PatternTypeEmotional       = "emotional"
	PatternTypeMarketCondition = "market_condition"
	PatternTypeBiasFrequency   = "bias_frequency"
	PatternTypeTicker          = "ticker"
	PatternTypeStrategy        = "strategy"
	PatternTypeDirection       = "direction"
)

const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
	TrendDecreasing = "decreasing"
)
