package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"referral-engine/internal/models"
	"referral-engine/internal/utils"
)

// errCodeCollision signals one failed generation attempt inside RegisterUser.
var errCodeCollision = errors.New("referral code collision")

// AccountService handles account registration and lookups.
type AccountService struct {
	db              *gorm.DB
	locks           *KeyLock
	referrals       *ReferralService
	codeLength      int
	codeMaxAttempts int

	// generateCode is swapped out in tests to force collisions.
	generateCode func(length int) (string, error)
}

// NewAccountService creates a new AccountService
func NewAccountService(db *gorm.DB, locks *KeyLock, referrals *ReferralService, codeLength, codeMaxAttempts int) *AccountService {
	return &AccountService{
		db:              db,
		locks:           locks,
		referrals:       referrals,
		codeLength:      codeLength,
		codeMaxAttempts: codeMaxAttempts,
		generateCode:    utils.GenerateReferralCode,
	}
}

// RegisterUser registers an account on first contact. Idempotent by Telegram
// id: re-registration returns the existing account unchanged. When
// referrerCode is supplied the referrer link and its credit commit in the
// same transaction as the account row, so no state exists where the account
// was created but the referrer went uncredited.
func (s *AccountService) RegisterUser(telegramID int64, username, firstName, referrerCode string) (*models.Account, error) {
	var existing models.Account
	err := s.db.Where("telegram_id = ?", telegramID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	// Resolve the referrer up front so its balance section can be entered
	// before the transaction opens.
	if referrerCode != "" {
		var referrer models.Account
		err := s.db.Where("referral_code = ? AND status = ?", referrerCode, models.AccountStatusActive).
			First(&referrer).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrUnknownReferralCode
			}
			return nil, err
		}
		referrerKey := fmt.Sprintf("account:%d", referrer.ID)
		s.locks.Lock(referrerKey)
		defer s.locks.Unlock(referrerKey)
	}

	registerKey := fmt.Sprintf("register:%d", telegramID)
	s.locks.Lock(registerKey)
	defer s.locks.Unlock(registerKey)

	// Re-check under the registration lock: a concurrent call may have won.
	err = s.db.Where("telegram_id = ?", telegramID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	for attempt := 0; attempt < s.codeMaxAttempts; attempt++ {
		code, err := s.generateCode(s.codeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate referral code: %w", err)
		}

		account := models.Account{
			TelegramID:   telegramID,
			Username:     username,
			FirstName:    firstName,
			ReferralCode: code,
			Status:       models.AccountStatusActive,
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Account{}).
				Where("referral_code = ?", code).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errCodeCollision
			}

			if err := tx.Create(&account).Error; err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			if referrerCode != "" {
				if err := linkReferrer(tx, &account, referrerCode); err != nil {
					return err
				}
				if err := confirmReferral(tx, account.ID, s.referrals.rewardPoints); err != nil {
					return err
				}
			}
			return nil
		})
		if errors.Is(err, errCodeCollision) {
			log.Printf("Referral code collision on attempt %d for telegram id %d", attempt+1, telegramID)
			continue
		}
		if err != nil {
			return nil, err
		}

		return &account, nil
	}

	return nil, ErrCodeGenerationExhausted
}

// GetByTelegramID retrieves an account by its Telegram chat id
func (s *AccountService) GetByTelegramID(telegramID int64) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("telegram_id = ?", telegramID).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by its primary key
func (s *AccountService) GetByID(accountID uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}
