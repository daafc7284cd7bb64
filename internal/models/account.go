package models

import (
	"time"
)

// Account statuses
const (
	AccountStatusActive    = "ACTIVE"
	AccountStatusSuspended = "SUSPENDED"
	AccountStatusBanned    = "BANNED"
)

// Account represents a participant in the referral program.
// Points and Referrals are cached projections: Points always equals the sum
// of the account's ledger deltas, Referrals the number of confirmed edges
// where this account is the referrer.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TelegramID   int64     `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username     string    `gorm:"size:100" json:"username"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	ReferralCode string    `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferrerID   *uint     `gorm:"index" json:"referrer_id,omitempty"`
	Referrer     *Account  `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	Points       int64     `gorm:"not null;default:0" json:"points"`
	Referrals    int       `gorm:"not null;default:0" json:"referrals"`
	Status       string    `gorm:"size:20;default:ACTIVE;index" json:"status"` // ACTIVE, SUSPENDED, BANNED
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Account model
func (Account) TableName() string {
	return "accounts"
}
