package models

import "time"

// ThesisUpdate is a dated free-text note attached to a thesis.
type ThesisUpdate struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ThesisID uint64 `gorm:"not null;index" json:"thesis_id"`

	Note string `gorm:"type:text;not null" json:"note"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (ThesisUpdate) TableName() string {
	return "thesis_updates"
}
