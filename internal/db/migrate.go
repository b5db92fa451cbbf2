package db

import (
	"traderjournal/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.JournalEntry{},
		&models.Thesis{},
		&models.ThesisTrade{},
		&models.ThesisUpdate{},
		&models.MarketCondition{},
		&models.PatternInsight{},
	)
}
