package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-engine/internal/metrics"
	"referral-engine/internal/services"
)

// AccountHandler exposes registration, account lookups and ledger reads.
type AccountHandler struct {
	accountService  *services.AccountService
	referralService *services.ReferralService
	ledgerService   *services.LedgerService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *services.AccountService, referralService *services.ReferralService, ledgerService *services.LedgerService) *AccountHandler {
	return &AccountHandler{
		accountService:  accountService,
		referralService: referralService,
		ledgerService:   ledgerService,
	}
}

// RegisterUser handles first contact from the bot. Idempotent: repeated
// registration returns the existing account.
func (h *AccountHandler) RegisterUser(c *gin.Context) {
	metrics.OperationsTotal.WithLabelValues("register_user").Inc()

	var req struct {
		TelegramID   int64  `json:"telegram_id" binding:"required"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		ReferrerCode string `json:"referrer_code"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accountService.RegisterUser(req.TelegramID, req.Username, req.FirstName, req.ReferrerCode)
	if err != nil {
		respondError(c, "register_user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    account,
	})
}

// GetAccount returns an account by Telegram id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telegram_id"})
		return
	}

	account, err := h.accountService.GetByTelegramID(telegramID)
	if err != nil {
		respondError(c, "get_account", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    account,
	})
}

// GetReferrals returns all referral edges where the account is the referrer
func (h *AccountHandler) GetReferrals(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telegram_id"})
		return
	}

	account, err := h.accountService.GetByTelegramID(telegramID)
	if err != nil {
		respondError(c, "get_referrals", err)
		return
	}

	edges, err := h.referralService.GetReferrals(account.ID)
	if err != nil {
		respondError(c, "get_referrals", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    edges,
		"count":   len(edges),
	})
}

// GetLedger returns an account's ledger entries with the cached and
// replayed balances, which must agree.
func (h *AccountHandler) GetLedger(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telegram_id"})
		return
	}

	account, err := h.accountService.GetByTelegramID(telegramID)
	if err != nil {
		respondError(c, "get_ledger", err)
		return
	}

	entries, err := h.ledgerService.GetEntries(account.ID)
	if err != nil {
		respondError(c, "get_ledger", err)
		return
	}

	replayed, err := h.ledgerService.ReplayBalance(account.ID)
	if err != nil {
		respondError(c, "get_ledger", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"entries":          entries,
			"balance":          account.Points,
			"replayed_balance": replayed,
		},
	})
}
