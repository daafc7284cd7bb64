package database

import (
	"fmt"
	"log"

	"referral-engine/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	engineModels := []interface{}{
		&models.Account{},
		&models.ReferralEdge{},
		&models.LinkIssuanceEvent{},
		&models.LedgerEntry{},
		&models.Reward{},
		&models.Redemption{},
	}

	for _, model := range engineModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultReward inserts the original flat-cost reward when the catalog
// is empty so a fresh deployment has something redeemable.
func SeedDefaultReward(cost int64) error {
	var count int64
	if err := DB.Model(&models.Reward{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	reward := models.Reward{
		Name:        "Mystery Reward",
		Description: "Redeemable referral program reward",
		Cost:        cost,
		Stock:       models.UnlimitedStock,
		Status:      models.RewardStatusActive,
	}
	if err := DB.Create(&reward).Error; err != nil {
		return fmt.Errorf("failed to seed default reward: %w", err)
	}

	log.Printf("Seeded default reward %q at %d points", reward.Name, cost)
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
