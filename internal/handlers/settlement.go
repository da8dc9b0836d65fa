package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arcade-pot-backend/internal/models"
	"arcade-pot-backend/internal/services"
)

type SettlementHandler struct {
	engine *services.SettlementEngine
}

func NewSettlementHandler(engine *services.SettlementEngine) *SettlementHandler {
	return &SettlementHandler{engine: engine}
}

// Distribute triggers settlement for one game. A game with nothing to
// settle is a successful no-op, so the call is idempotent.
func (h *SettlementHandler) Distribute(c *gin.Context) {
	var req models.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameId is required"})
		return
	}

	settled, err := h.engine.Settle(c.Request.Context(), req.GameID)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "settled": settled})
}

// Sweep drains a game's escrow to the operator wallet.
func (h *SettlementHandler) Sweep(c *gin.Context) {
	var req models.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameId is required"})
		return
	}

	if err := h.engine.SweepToOperator(c.Request.Context(), req.GameID); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
