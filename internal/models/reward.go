package models

import (
	"time"
)

// Reward statuses
const (
	RewardStatusActive       = "ACTIVE"
	RewardStatusInactive     = "INACTIVE"
	RewardStatusDiscontinued = "DISCONTINUED"
)

// UnlimitedStock marks a reward whose stock is never decremented.
const UnlimitedStock = -1

// Reward is a catalog entry users can spend points on.
type Reward struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Cost        int64     `gorm:"not null" json:"cost"`
	Stock       int       `gorm:"not null;default:-1" json:"stock"` // -1 = unlimited
	Status      string    `gorm:"size:20;default:ACTIVE;index" json:"status"` // ACTIVE, INACTIVE, DISCONTINUED
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Reward model
func (Reward) TableName() string {
	return "rewards"
}

// Redemption statuses
const (
	RedemptionStatusPending   = "PENDING"
	RedemptionStatusProcessed = "PROCESSED"
	RedemptionStatusDelivered = "DELIVERED"
	RedemptionStatusCancelled = "CANCELLED"
)

// Redemption records one spend of points for a reward. Cost is the price at
// redemption time; cancelling never re-credits points.
type Redemption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Reference string    `gorm:"uniqueIndex;size:36;not null" json:"reference"`
	AccountID uint      `gorm:"not null;index" json:"account_id"`
	Account   *Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	RewardID  uint      `gorm:"not null;index" json:"reward_id"`
	Reward    *Reward   `gorm:"foreignKey:RewardID" json:"reward,omitempty"`
	Cost      int64     `gorm:"not null" json:"cost"`
	Status    string    `gorm:"size:20;default:PENDING;index" json:"status"` // PENDING, PROCESSED, DELIVERED, CANCELLED
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Redemption model
func (Redemption) TableName() string {
	return "redemptions"
}
