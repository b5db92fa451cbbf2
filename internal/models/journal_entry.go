package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JournalEntry is written by the capture flow; this service only reads it,
// except for the AI-derived columns (mood, sentiment, bias/keyword tags)
// which re-analysis may overwrite.
type JournalEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Content   string  `gorm:"type:text;not null" json:"content"`
	EntryKind string  `gorm:"type:varchar(30);not null;index" json:"entry_kind"`
	Ticker    *string `gorm:"type:varchar(20);index" json:"ticker,omitempty"`

	Mood       string         `gorm:"type:varchar(30)" json:"mood"`
	Conviction *int           `gorm:"type:smallint" json:"conviction,omitempty"`
	Sentiment  string         `gorm:"type:varchar(20);index" json:"sentiment"`
	BiasTags   datatypes.JSON `gorm:"type:jsonb" json:"bias_tags"`
	Keywords   datatypes.JSON `gorm:"type:jsonb" json:"keywords"`

	CreatedAt time.Time      `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}

// Entry sentiment labels produced by AI analysis.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Bias tags the analyzer emits and the draft matcher filters on.
const (
	BiasFOMO           = "fomo"
	BiasConfirmation   = "confirmation_bias"
	BiasOverconfidence = "overconfidence"
	BiasLossAversion   = "loss_aversion"
	BiasRecency        = "recency_bias"
	BiasRevengeTrading = "revenge_trading"
)
