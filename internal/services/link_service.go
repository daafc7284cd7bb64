package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"referral-engine/internal/models"
)

// LinkService enforces the one-link-issuance-per-day rule and tracks
// click/conversion counters. The day boundary is midnight in the configured
// timezone (UTC unless overridden), matching the original bot's behavior.
type LinkService struct {
	db    *gorm.DB
	locks *KeyLock
	tz    *time.Location

	// now is swapped out in tests to cross day boundaries.
	now func() time.Time
}

// NewLinkService creates a new LinkService
func NewLinkService(db *gorm.DB, locks *KeyLock, tz *time.Location) *LinkService {
	return &LinkService{
		db:    db,
		locks: locks,
		tz:    tz,
		now:   time.Now,
	}
}

// IssueReferralLink records one link-generation event for the current
// calendar day. The per-(account, day) exclusive section plus the unique
// index guarantee two concurrent calls yield exactly one event and one
// ErrDailyLimitExceeded.
func (s *LinkService) IssueReferralLink(accountID uint, link string) (*models.LinkIssuanceEvent, error) {
	var account models.Account
	if err := s.db.First(&account, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	day := s.now().In(s.tz).Format("2006-01-02")
	key := fmt.Sprintf("link:%d:%s", accountID, day)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var event models.LinkIssuanceEvent
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.LinkIssuanceEvent{}).
			Where("account_id = ? AND issued_on = ?", accountID, day).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDailyLimitExceeded
		}

		event = models.LinkIssuanceEvent{
			AccountID: accountID,
			IssuedOn:  day,
			Link:      link,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create issuance event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

// RecordClick increments the click counter for an issuance event. The
// increment happens in SQL so concurrent clicks never lose updates.
func (s *LinkService) RecordClick(eventID uint) error {
	result := s.db.Model(&models.LinkIssuanceEvent{}).
		Where("id = ?", eventID).
		UpdateColumn("clicks", gorm.Expr("clicks + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordConversion increments the conversion counter for an issuance event.
func (s *LinkService) RecordConversion(eventID uint) error {
	result := s.db.Model(&models.LinkIssuanceEvent{}).
		Where("id = ?", eventID).
		UpdateColumn("conversions", gorm.Expr("conversions + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEvents returns all issuance events for an account, newest first.
func (s *LinkService) GetEvents(accountID uint) ([]models.LinkIssuanceEvent, error) {
	var events []models.LinkIssuanceEvent
	if err := s.db.Where("account_id = ?", accountID).
		Order("issued_on DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
