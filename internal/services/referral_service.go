package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"referral-engine/internal/models"
)

// ReferralService owns the referral graph: who referred whom, edge
// confirmation and the referrer's credit.
type ReferralService struct {
	db           *gorm.DB
	locks        *KeyLock
	rewardPoints int64
}

// NewReferralService creates a new ReferralService. rewardPoints is credited
// to the referrer per confirmed referral.
func NewReferralService(db *gorm.DB, locks *KeyLock, rewardPoints int64) *ReferralService {
	return &ReferralService{
		db:           db,
		locks:        locks,
		rewardPoints: rewardPoints,
	}
}

// LinkReferrer records the owner of code as the referrer of the given
// account and creates the pending edge. Idempotent: an account that already
// has a recorded referrer is left unchanged.
func (s *ReferralService) LinkReferrer(accountID uint, code string) error {
	var account models.Account
	if err := s.db.First(&account, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	key := fmt.Sprintf("account:%d", accountID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	return s.db.Transaction(func(tx *gorm.DB) error {
		return linkReferrer(tx, &account, code)
	})
}

// linkReferrer runs inside the caller's transaction. account must be the
// freshly loaded referred account.
func linkReferrer(tx *gorm.DB, account *models.Account, code string) error {
	if account.ReferrerID != nil {
		return nil
	}

	var referrer models.Account
	err := tx.Where("referral_code = ? AND status = ?", code, models.AccountStatusActive).
		First(&referrer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrUnknownReferralCode
		}
		return err
	}

	if referrer.ID == account.ID {
		return ErrSelfReferral
	}

	if err := tx.Model(&models.Account{}).Where("id = ? AND referrer_id IS NULL", account.ID).
		Update("referrer_id", referrer.ID).Error; err != nil {
		return err
	}

	edge := models.ReferralEdge{
		ReferrerID: referrer.ID,
		ReferredID: account.ID,
		Status:     models.EdgeStatusPending,
	}
	if err := tx.Create(&edge).Error; err != nil {
		return fmt.Errorf("failed to create referral edge: %w", err)
	}

	account.ReferrerID = &referrer.ID
	return nil
}

// ConfirmReferral confirms the referred account's edge and credits the
// referrer: edge status flip, ledger credit and the referrer's cached
// balance/referral count all commit together or not at all. Re-invocation
// for an already-confirmed edge is a no-op so callers may retry on ambiguous
// failures.
func (s *ReferralService) ConfirmReferral(referredID uint) error {
	var edge models.ReferralEdge
	err := s.db.Where("referred_id = ?", referredID).First(&edge).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	if edge.Status == models.EdgeStatusConfirmed {
		return nil
	}

	key := fmt.Sprintf("account:%d", edge.ReferrerID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	return s.db.Transaction(func(tx *gorm.DB) error {
		return confirmReferral(tx, referredID, s.rewardPoints)
	})
}

// confirmReferral runs inside the caller's transaction.
func confirmReferral(tx *gorm.DB, referredID uint, rewardPoints int64) error {
	var edge models.ReferralEdge
	err := tx.Where("referred_id = ?", referredID).First(&edge).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	switch edge.Status {
	case models.EdgeStatusConfirmed:
		return nil
	case models.EdgeStatusRejected:
		return ErrConflict
	}

	now := time.Now()
	result := tx.Model(&models.ReferralEdge{}).
		Where("id = ? AND status = ?", edge.ID, models.EdgeStatusPending).
		Updates(map[string]interface{}{
			"status":         models.EdgeStatusConfirmed,
			"points_awarded": rewardPoints,
			"confirmed_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil
	}

	if err := applyLedgerDelta(tx, edge.ReferrerID, rewardPoints, models.LedgerReasonReferralCredit); err != nil {
		return err
	}

	return tx.Model(&models.Account{}).Where("id = ?", edge.ReferrerID).
		Update("referrals", gorm.Expr("referrals + 1")).Error
}

// GetReferrals returns all edges where the account is the referrer.
func (s *ReferralService) GetReferrals(referrerID uint) ([]models.ReferralEdge, error) {
	var edges []models.ReferralEdge
	if err := s.db.Where("referrer_id = ?", referrerID).
		Preload("Referred").Order("created_at DESC").Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// GetReferrerEdge returns the edge where the account is the referred party,
// or ErrNotFound if the account was not referred.
func (s *ReferralService) GetReferrerEdge(referredID uint) (*models.ReferralEdge, error) {
	var edge models.ReferralEdge
	err := s.db.Where("referred_id = ?", referredID).Preload("Referrer").First(&edge).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &edge, nil
}
