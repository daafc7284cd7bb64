package services

import (
	"gorm.io/gorm"

	"referral-engine/internal/models"
)

// DefaultLeaderboardLimit matches the original bot's top 10.
const DefaultLeaderboardLimit = 10

// LeaderboardService is a read-only ranking over accounts.
type LeaderboardService struct {
	db *gorm.DB
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// GetLeaderboard ranks accounts by referrals desc, then points desc, with
// account creation order breaking ties so the output is deterministic.
// Because every referral credit commits atomically, a row never shows a
// confirmed edge without its points or vice versa.
func (s *LeaderboardService) GetLeaderboard(limit int, status string) ([]models.Account, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if status == "" {
		status = models.AccountStatusActive
	}

	var accounts []models.Account
	err := s.db.Where("status = ?", status).
		Order("referrals DESC, points DESC, created_at ASC, id ASC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
