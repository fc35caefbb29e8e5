package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"starchart/models"
)

// LoadRoster liest das Roster in Anzeige-Reihenfolge.
func LoadRoster(db *gorm.DB) ([]models.Account, error) {
	var accounts []models.Account
	err := db.Order("position asc").Order("id asc").Find(&accounts).Error
	return accounts, err
}

// SeedDefaultAccounts legt das Standard-Roster an, wenn die Tabelle leer ist.
func SeedDefaultAccounts(db *gorm.DB, logger *zap.Logger) {
	var count int64
	db.Model(&models.Account{}).Count(&count)
	if count > 0 {
		return
	}
	accounts := models.DefaultAccounts()
	for i := range accounts {
		accounts[i].Position = i + 1
	}
	if err := db.Create(&accounts).Error; err != nil {
		logger.Warn("Failed to seed default accounts", zap.Error(err))
	} else {
		logger.Info("Default accounts seeded.", zap.Int("count", len(accounts)))
	}
}

// RecordRun speichert das Ergebnis eines Laufs.
func RecordRun(db *gorm.DB, run *models.ChartRun) error {
	return db.Create(run).Error
}

// RecentRuns liefert die letzten Läufe, neueste zuerst.
func RecentRuns(db *gorm.DB, limit int) ([]models.ChartRun, error) {
	var runs []models.ChartRun
	query := db.Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, err
}
