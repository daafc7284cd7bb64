package models

import (
	"time"
)

// Ledger entry reasons
const (
	LedgerReasonReferralCredit  = "REFERRAL_CREDIT"
	LedgerReasonRedemptionDebit = "REDEMPTION_DEBIT"
)

// LedgerEntry is an immutable record of a balance-affecting event. Rows are
// only ever inserted; an account's balance is the sum of its deltas.
type LedgerEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;index" json:"account_id"`
	Account   *Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Delta     int64     `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"size:50;not null;index" json:"reason"` // REFERRAL_CREDIT, REDEMPTION_DEBIT
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for LedgerEntry model
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
