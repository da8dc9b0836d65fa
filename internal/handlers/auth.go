package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"arcade-pot-backend/internal/models"
	"arcade-pot-backend/internal/services"
)

type AuthHandler struct {
	jwtService *services.JWTService
	adminKey   string
}

func NewAuthHandler(jwtService *services.JWTService, adminKey string) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		adminKey:   adminKey,
	}
}

// Token exchanges the operator API key for a short-lived admin bearer token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req models.AdminTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.APIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apiKey is required"})
		return
	}

	if h.adminKey == "" || subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.adminKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		return
	}

	token, err := h.jwtService.GenerateAdminToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
