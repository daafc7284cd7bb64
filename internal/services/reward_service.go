package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"referral-engine/internal/models"
)

// RewardService owns the rewards catalog and the atomic redemption path.
type RewardService struct {
	db    *gorm.DB
	locks *KeyLock
}

// NewRewardService creates a new RewardService
func NewRewardService(db *gorm.DB, locks *KeyLock) *RewardService {
	return &RewardService{db: db, locks: locks}
}

// CreateReward adds a catalog entry. stock -1 means unlimited.
func (s *RewardService) CreateReward(name, description string, cost int64, stock int) (*models.Reward, error) {
	if cost <= 0 {
		return nil, fmt.Errorf("reward cost must be positive")
	}
	if stock < models.UnlimitedStock {
		return nil, fmt.Errorf("reward stock must be -1 or greater")
	}

	reward := models.Reward{
		Name:        name,
		Description: description,
		Cost:        cost,
		Stock:       stock,
		Status:      models.RewardStatusActive,
	}
	if err := s.db.Create(&reward).Error; err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}
	return &reward, nil
}

// GetReward retrieves a reward by id
func (s *RewardService) GetReward(rewardID uint) (*models.Reward, error) {
	var reward models.Reward
	if err := s.db.First(&reward, rewardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reward, nil
}

// ListRewards returns catalog entries, optionally only active ones.
func (s *RewardService) ListRewards(activeOnly bool) ([]models.Reward, error) {
	query := s.db.Order("cost ASC")
	if activeOnly {
		query = query.Where("status = ?", models.RewardStatusActive)
	}
	var rewards []models.Reward
	if err := query.Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

// SetRewardStatus updates a reward's catalog status.
func (s *RewardService) SetRewardStatus(rewardID uint, status string) error {
	switch status {
	case models.RewardStatusActive, models.RewardStatusInactive, models.RewardStatusDiscontinued:
	default:
		return fmt.Errorf("invalid reward status: %s", status)
	}

	result := s.db.Model(&models.Reward{}).Where("id = ?", rewardID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RedeemReward spends points for a reward. The ledger debit, the stock
// decrement and the redemption record commit together or not at all.
// Redemptions serialize per account and per reward, so two requests that
// individually fit the balance but not jointly resolve to one success and
// one ErrInsufficientPoints, and finite stock never goes negative.
func (s *RewardService) RedeemReward(accountID, rewardID uint) (*models.Redemption, error) {
	// Lock order account then reward, everywhere, to stay deadlock-free.
	accountKey := fmt.Sprintf("account:%d", accountID)
	rewardKey := fmt.Sprintf("reward:%d", rewardID)
	s.locks.Lock(accountKey)
	defer s.locks.Unlock(accountKey)
	s.locks.Lock(rewardKey)
	defer s.locks.Unlock(rewardKey)

	var redemption models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.First(&reward, rewardID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		if reward.Status != models.RewardStatusActive || reward.Stock == 0 {
			return ErrRewardUnavailable
		}

		var account models.Account
		if err := tx.First(&account, accountID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		if account.Points < reward.Cost {
			return ErrInsufficientPoints
		}

		if err := applyLedgerDelta(tx, accountID, -reward.Cost, models.LedgerReasonRedemptionDebit); err != nil {
			return err
		}

		if reward.Stock != models.UnlimitedStock {
			result := tx.Model(&models.Reward{}).
				Where("id = ? AND stock > 0", rewardID).
				Update("stock", gorm.Expr("stock - 1"))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrRewardUnavailable
			}
		}

		redemption = models.Redemption{
			Reference: uuid.NewString(),
			AccountID: accountID,
			RewardID:  rewardID,
			Cost:      reward.Cost,
			Status:    models.RedemptionStatusPending,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return fmt.Errorf("failed to create redemption: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Redemption %s: account %d spent %d points on reward %d", redemption.Reference, accountID, redemption.Cost, rewardID)
	return &redemption, nil
}

// ListRedemptions returns an account's redemptions, newest first.
func (s *RewardService) ListRedemptions(accountID uint) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	if err := s.db.Where("account_id = ?", accountID).
		Preload("Reward").Order("created_at DESC").Find(&redemptions).Error; err != nil {
		return nil, err
	}
	return redemptions, nil
}

// UpdateRedemptionStatus moves a redemption through its lifecycle. Points
// are never re-credited, cancellation included; the debit is terminal.
func (s *RewardService) UpdateRedemptionStatus(reference, status string) error {
	var allowed []string
	switch status {
	case models.RedemptionStatusProcessed:
		allowed = []string{models.RedemptionStatusPending}
	case models.RedemptionStatusDelivered:
		allowed = []string{models.RedemptionStatusProcessed}
	case models.RedemptionStatusCancelled:
		allowed = []string{models.RedemptionStatusPending, models.RedemptionStatusProcessed}
	default:
		return fmt.Errorf("invalid redemption status: %s", status)
	}

	result := s.db.Model(&models.Redemption{}).
		Where("reference = ? AND status IN ?", reference, allowed).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&models.Redemption{}).
			Where("reference = ?", reference).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
