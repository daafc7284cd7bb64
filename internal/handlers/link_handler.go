package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-engine/internal/metrics"
	"referral-engine/internal/services"
)

// LinkHandler exposes link issuance and its counters.
type LinkHandler struct {
	accountService *services.AccountService
	linkService    *services.LinkService
}

// NewLinkHandler creates a new LinkHandler
func NewLinkHandler(accountService *services.AccountService, linkService *services.LinkService) *LinkHandler {
	return &LinkHandler{
		accountService: accountService,
		linkService:    linkService,
	}
}

// IssueLink records one link-generation event, at most once per account per
// calendar day.
func (h *LinkHandler) IssueLink(c *gin.Context) {
	metrics.OperationsTotal.WithLabelValues("issue_link").Inc()

	var req struct {
		TelegramID int64  `json:"telegram_id" binding:"required"`
		Link       string `json:"link" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accountService.GetByTelegramID(req.TelegramID)
	if err != nil {
		respondError(c, "issue_link", err)
		return
	}

	event, err := h.linkService.IssueReferralLink(account.ID, req.Link)
	if err != nil {
		respondError(c, "issue_link", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    event,
	})
}

// RecordClick increments an event's click counter
func (h *LinkHandler) RecordClick(c *gin.Context) {
	metrics.OperationsTotal.WithLabelValues("record_click").Inc()

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	if err := h.linkService.RecordClick(uint(eventID)); err != nil {
		respondError(c, "record_click", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RecordConversion increments an event's conversion counter
func (h *LinkHandler) RecordConversion(c *gin.Context) {
	metrics.OperationsTotal.WithLabelValues("record_conversion").Inc()

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	if err := h.linkService.RecordConversion(uint(eventID)); err != nil {
		respondError(c, "record_conversion", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetEvents returns all issuance events for an account
func (h *LinkHandler) GetEvents(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telegram_id"})
		return
	}

	account, err := h.accountService.GetByTelegramID(telegramID)
	if err != nil {
		respondError(c, "get_link_events", err)
		return
	}

	events, err := h.linkService.GetEvents(account.ID)
	if err != nil {
		respondError(c, "get_link_events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    events,
		"count":   len(events),
	})
}
