package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-engine/internal/metrics"
	"referral-engine/internal/services"
)

// RewardHandler exposes the catalog and the redemption operation.
type RewardHandler struct {
	accountService *services.AccountService
	rewardService  *services.RewardService
}

// NewRewardHandler creates a new RewardHandler
func NewRewardHandler(accountService *services.AccountService, rewardService *services.RewardService) *RewardHandler {
	return &RewardHandler{
		accountService: accountService,
		rewardService:  rewardService,
	}
}

// ListRewards returns catalog entries. ?all=true includes inactive ones.
func (h *RewardHandler) ListRewards(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	rewards, err := h.rewardService.ListRewards(activeOnly)
	if err != nil {
		respondError(c, "list_rewards", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rewards,
		"count":   len(rewards),
	})
}

// CreateReward adds a catalog entry (admin only)
func (h *RewardHandler) CreateReward(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Cost        int64  `json:"cost" binding:"required,min=1"`
		Stock       *int   `json:"stock"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stock := -1
	if req.Stock != nil {
		stock = *req.Stock
	}

	reward, err := h.rewardService.CreateReward(req.Name, req.Description, req.Cost, stock)
	if err != nil {
		respondError(c, "create_reward", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    reward,
	})
}

// SetRewardStatus updates a reward's catalog status (admin only)
func (h *RewardHandler) SetRewardStatus(c *gin.Context) {
	rewardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rewardService.SetRewardStatus(uint(rewardID), req.Status); err != nil {
		respondError(c, "set_reward_status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RedeemReward spends an account's points on a reward
func (h *RewardHandler) RedeemReward(c *gin.Context) {
	metrics.OperationsTotal.WithLabelValues("redeem_reward").Inc()

	rewardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward id"})
		return
	}

	var req struct {
		TelegramID int64 `json:"telegram_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accountService.GetByTelegramID(req.TelegramID)
	if err != nil {
		respondError(c, "redeem_reward", err)
		return
	}

	redemption, err := h.rewardService.RedeemReward(account.ID, uint(rewardID))
	if err != nil {
		respondError(c, "redeem_reward", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    redemption,
	})
}

// ListRedemptions returns an account's redemptions
func (h *RewardHandler) ListRedemptions(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telegram_id"})
		return
	}

	account, err := h.accountService.GetByTelegramID(telegramID)
	if err != nil {
		respondError(c, "list_redemptions", err)
		return
	}

	redemptions, err := h.rewardService.ListRedemptions(account.ID)
	if err != nil {
		respondError(c, "list_redemptions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    redemptions,
		"count":   len(redemptions),
	})
}

// UpdateRedemptionStatus moves a redemption through its lifecycle (admin only)
func (h *RewardHandler) UpdateRedemptionStatus(c *gin.Context) {
	reference := c.Param("reference")

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rewardService.UpdateRedemptionStatus(reference, req.Status); err != nil {
		respondError(c, "update_redemption_status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
