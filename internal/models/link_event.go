package models

import (
	"time"
)

// LinkIssuanceEvent records one successful referral-link generation. The
// composite unique index on (account_id, issued_on) is the storage half of
// the one-link-per-day rule; IssuedOn is the calendar day in the engine's
// configured timezone, formatted 2006-01-02.
type LinkIssuanceEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AccountID   uint       `gorm:"not null;uniqueIndex:idx_link_events_account_day" json:"account_id"`
	Account     *Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	IssuedOn    string     `gorm:"size:10;not null;uniqueIndex:idx_link_events_account_day" json:"issued_on"`
	Link        string     `gorm:"size:500" json:"link"`
	Clicks      int64      `gorm:"not null;default:0" json:"clicks"`
	Conversions int64      `gorm:"not null;default:0" json:"conversions"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName specifies the table name for LinkIssuanceEvent model
func (LinkIssuanceEvent) TableName() string {
	return "link_issuance_events"
}
