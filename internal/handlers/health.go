package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arcade-pot-backend/internal/services"
)

type HealthHandler struct {
	mongo  *services.MongoService
	solana *services.SolanaService
}

func NewHealthHandler(mongo *services.MongoService, solana *services.SolanaService) *HealthHandler {
	return &HealthHandler{
		mongo:  mongo,
		solana: solana,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	mongoStatus := "ok"
	ledgerStatus := "ok"

	if err := h.mongo.Ping(c.Request.Context()); err != nil {
		mongoStatus = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.solana.Health(c.Request.Context()); err != nil {
		ledgerStatus = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"mongo":  mongoStatus,
		"ledger": ledgerStatus,
	})
}
