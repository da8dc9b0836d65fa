package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arcade-pot-backend/internal/models"
	"arcade-pot-backend/internal/services"
)

type ScoreHandler struct {
	mongo *services.MongoService
}

func NewScoreHandler(mongo *services.MongoService) *ScoreHandler {
	return &ScoreHandler{mongo: mongo}
}

// UpdateScore records a score for the current cycle, or with fetchOnly
// returns the cycle's live score list.
func (h *ScoreHandler) UpdateScore(c *gin.Context) {
	var req models.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.FetchOnly {
		scores, err := h.mongo.ListLiveScores(c.Request.Context(), req.GameID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, scores)
		return
	}

	result, err := h.mongo.RecordScore(c.Request.Context(), req.GameID, req.UserID, *req.Score)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
