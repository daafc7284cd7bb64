package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"referral-engine/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// A single connection keeps the in-memory database visible to every
	// session and serializes sqlite writes under concurrent test load.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Account{},
		&models.ReferralEdge{},
		&models.LinkIssuanceEvent{},
		&models.LedgerEntry{},
		&models.Reward{},
		&models.Redemption{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func newTestEngine(t *testing.T, db *gorm.DB) (*AccountService, *ReferralService, *LedgerService, *RewardService) {
	t.Helper()

	locks := NewKeyLock()
	referrals := NewReferralService(db, locks, 10)
	accounts := NewAccountService(db, locks, referrals, 8, 5)
	ledger := NewLedgerService(db)
	rewards := NewRewardService(db, locks)
	return accounts, referrals, ledger, rewards
}

// creditAccount funds an account through the ledger primitive so tests start
// from a consistent balance.
func creditAccount(t *testing.T, db *gorm.DB, accountID uint, amount int64) {
	t.Helper()

	err := db.Transaction(func(tx *gorm.DB) error {
		return applyLedgerDelta(tx, accountID, amount, models.LedgerReasonReferralCredit)
	})
	if err != nil {
		t.Fatalf("failed to credit account %d: %v", accountID, err)
	}
}

func reloadAccount(t *testing.T, db *gorm.DB, accountID uint) *models.Account {
	t.Helper()

	var account models.Account
	if err := db.First(&account, accountID).Error; err != nil {
		t.Fatalf("failed to reload account %d: %v", accountID, err)
	}
	return &account
}
