package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-engine/internal/metrics"
	"referral-engine/internal/services"
)

// failureKind names an engine error for metrics labels.
func failureKind(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "not_found"
	case errors.Is(err, services.ErrConflict):
		return "conflict"
	case errors.Is(err, services.ErrUnknownReferralCode):
		return "unknown_referral_code"
	case errors.Is(err, services.ErrSelfReferral):
		return "self_referral"
	case errors.Is(err, services.ErrDailyLimitExceeded):
		return "daily_limit_exceeded"
	case errors.Is(err, services.ErrInsufficientPoints):
		return "insufficient_points"
	case errors.Is(err, services.ErrRewardUnavailable):
		return "reward_unavailable"
	case errors.Is(err, services.ErrCodeGenerationExhausted):
		return "code_generation_exhausted"
	default:
		return "storage_unavailable"
	}
}

// respondError maps an engine error onto an HTTP status. Anything outside
// the engine taxonomy is a storage failure: already rolled back, reported as
// retryable.
func respondError(c *gin.Context, operation string, err error) {
	metrics.FailuresTotal.WithLabelValues(operation, failureKind(err)).Inc()

	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUnknownReferralCode):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSelfReferral):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDailyLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInsufficientPoints),
		errors.Is(err, services.ErrRewardUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrCodeGenerationExhausted):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		log.Printf("Operation %s failed: %v", operation, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "storage unavailable, retry later",
			"retryable": true,
		})
	}
}
