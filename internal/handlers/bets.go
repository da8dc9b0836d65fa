package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arcade-pot-backend/internal/models"
	"arcade-pot-backend/internal/services"
)

type BetHandler struct {
	bets *services.BetService
}

func NewBetHandler(bets *services.BetService) *BetHandler {
	return &BetHandler{bets: bets}
}

// PlaceBet returns an unsigned wager transfer for the client's wallet to
// sign. No state changes until the signature is confirmed.
func (h *BetHandler) PlaceBet(c *gin.Context) {
	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	blob, err := h.bets.PrepareBet(c.Request.Context(), req.PublicKey, req.AmountNative, req.GameID)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": blob})
}

func (h *BetHandler) ConfirmBet(c *gin.Context) {
	var req models.ConfirmBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.bets.ConfirmBet(c.Request.Context(), req.PublicKey, req.AmountNative, req.GameID, req.Signature)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
