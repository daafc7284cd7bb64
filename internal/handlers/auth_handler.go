package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-engine/internal/auth"
)

// AuthHandler exchanges the shared service secret for a bearer token.
type AuthHandler struct {
	serviceSecret string
	adminSecret   string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(serviceSecret, adminSecret string) *AuthHandler {
	return &AuthHandler{
		serviceSecret: serviceSecret,
		adminSecret:   adminSecret,
	}
}

// IssueToken returns a JWT for the calling service. The admin secret yields
// an admin-scoped token for catalog management.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req struct {
		Service string `json:"service" binding:"required"`
		Secret  string `json:"secret" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin := false
	switch {
	case h.adminSecret != "" && subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.adminSecret)) == 1:
		admin = true
	case subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.serviceSecret)) == 1:
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid service secret"})
		return
	}

	token, err := auth.GenerateToken(req.Service, admin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"token": token, "admin": admin},
	})
}
