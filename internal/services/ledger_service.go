package services

import (
	"fmt"

	"gorm.io/gorm"

	"referral-engine/internal/models"
)

// LedgerService reads the append-only points ledger. All writes go through
// applyLedgerDelta inside the transaction of whichever operation caused them.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// applyLedgerDelta is the sole balance mutation primitive: it appends a
// ledger entry and moves the cached Account.Points by the same delta in the
// caller's transaction. A debit that would take the balance negative leaves
// both untouched and returns ErrInsufficientPoints.
func applyLedgerDelta(tx *gorm.DB, accountID uint, delta int64, reason string) error {
	entry := models.LedgerEntry{
		AccountID: accountID,
		Delta:     delta,
		Reason:    reason,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	q := tx.Model(&models.Account{}).Where("id = ?", accountID)
	if delta < 0 {
		q = q.Where("points >= ?", -delta)
	}
	result := q.Update("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

// CurrentBalance returns the cached balance for an account.
func (s *LedgerService) CurrentBalance(accountID uint) (int64, error) {
	var account models.Account
	if err := s.db.Select("points").First(&account, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return account.Points, nil
}

// ReplayBalance recomputes the balance from the ledger entries. The result
// must always equal CurrentBalance; it exists for audits and tests.
func (s *LedgerService) ReplayBalance(accountID uint) (int64, error) {
	var sum int64
	row := s.db.Model(&models.LedgerEntry{}).
		Where("account_id = ?", accountID).
		Select("COALESCE(SUM(delta), 0)").Row()
	if err := row.Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// GetEntries returns the ledger entries for an account, oldest first.
func (s *LedgerService) GetEntries(accountID uint) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := s.db.Where("account_id = ?", accountID).
		Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
