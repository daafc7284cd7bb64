package models

import (
	"time"
)

// ReferralEdge statuses
const (
	EdgeStatusPending   = "PENDING"
	EdgeStatusConfirmed = "CONFIRMED"
	EdgeStatusRejected  = "REJECTED"
)

// ReferralEdge represents a referrer -> referred relationship. The unique
// index on ReferredID guarantees an account is referred at most once.
type ReferralEdge struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ReferrerID    uint       `gorm:"not null;index" json:"referrer_id"`
	Referrer      *Account   `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	ReferredID    uint       `gorm:"uniqueIndex;not null" json:"referred_id"`
	Referred      *Account   `gorm:"foreignKey:ReferredID" json:"referred,omitempty"`
	PointsAwarded int64      `gorm:"not null;default:0" json:"points_awarded"`
	Status        string     `gorm:"size:20;default:PENDING;index" json:"status"` // PENDING, CONFIRMED, REJECTED
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TableName specifies the table name for ReferralEdge model
func (ReferralEdge) TableName() string {
	return "referral_edges"
}
