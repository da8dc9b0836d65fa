package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"arcade-pot-backend/internal/config"
	"arcade-pot-backend/internal/models"
	"arcade-pot-backend/internal/services"
)

type GameHandler struct {
	mongo *services.MongoService
	cfg   *config.Config
	log   *logrus.Logger
}

func NewGameHandler(mongo *services.MongoService, cfg *config.Config, log *logrus.Logger) *GameHandler {
	return &GameHandler{
		mongo: mongo,
		cfg:   cfg,
		log:   log,
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrGameLocked):
		return http.StatusConflict
	case services.IsPrecondition(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *GameHandler) ListGames(c *gin.Context) {
	if gameID := c.Query("id"); gameID != "" {
		game, err := h.mongo.GetGame(c.Request.Context(), gameID)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, game)
		return
	}

	games, err := h.mongo.ListGames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req models.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gameID := req.GameID
	if gameID == "" {
		gameID = models.GenerateGameID()
	}
	tax := models.DefaultTaxPercentage
	if req.TaxPercentage != nil {
		tax = *req.TaxPercentage
	}
	cycleSeconds := req.CycleDurationSeconds
	if cycleSeconds == 0 {
		cycleSeconds = int64(h.cfg.CycleDuration / time.Second)
	}

	secret, pubkey := services.GenerateEscrowKeypair()
	now := time.Now()
	game := &models.Game{
		GameID:           gameID,
		GameName:         req.GameName,
		GamePotPublicKey: pubkey,
		GamePotSecretKey: secret,
		TaxPercentage:    tax,
		ActivePlayers:    []models.ActivePlayer{},
		LastDistribution: now,
		CycleEndTime:     now.Add(time.Duration(cycleSeconds) * time.Second),
		CycleSeconds:     cycleSeconds,
		CreatedAt:        now,
	}

	if err := h.mongo.CreateGame(c.Request.Context(), game); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.log.WithFields(logrus.Fields{
		"gameId": gameID,
		"escrow": pubkey,
	}).Info("game created")

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) UpdateGame(c *gin.Context) {
	var req models.UpdateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.mongo.UpdateGame(c.Request.Context(), &req)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	var req models.DeleteGameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameId is required"})
		return
	}

	if err := h.mongo.DeleteGame(c.Request.Context(), req.GameID); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) GameStatus(c *gin.Context) {
	now := time.Now()

	if gameID := c.Query("gameId"); gameID != "" {
		game, err := h.mongo.GetGame(c.Request.Context(), gameID)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, game.Status(now))
		return
	}

	games, err := h.mongo.ListGames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	statuses := make([]models.GameStatus, 0, len(games))
	for i := range games {
		statuses = append(statuses, games[i].Status(now))
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *GameHandler) GetPot(c *gin.Context) {
	gameID := c.Query("gameId")
	if gameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameId is required"})
		return
	}

	game, err := h.mongo.GetGame(c.Request.Context(), gameID)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gameId": gameID, "potAmount": game.CurrentPot})
}

// Cleanup deduplicates a game's active player set and repairs playerCount,
// for records written before the set-add path existed.
func (h *GameHandler) Cleanup(c *gin.Context) {
	var req models.CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameId is required"})
		return
	}

	game, err := h.mongo.GetGame(c.Request.Context(), req.GameID)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	seen := make(map[string]bool, len(game.ActivePlayers))
	unique := make([]models.ActivePlayer, 0, len(game.ActivePlayers))
	for _, p := range game.ActivePlayers {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			unique = append(unique, p)
		}
	}

	if err := h.mongo.ReplaceActivePlayers(c.Request.Context(), req.GameID, unique); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	h.log.WithFields(logrus.Fields{
		"gameId": req.GameID,
		"before": len(game.ActivePlayers),
		"after":  len(unique),
	}).Info("active players deduplicated")

	c.JSON(http.StatusOK, gin.H{"success": true, "playerCount": len(unique)})
}

// PlayerStats returns a player's lifetime bet and winnings totals. Unknown
// players read as zeroes.
func (h *GameHandler) PlayerStats(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	player, err := h.mongo.GetPlayer(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, player)
}

func (h *GameHandler) ListDistributions(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	rows, err := h.mongo.ListDistributions(c.Request.Context(), c.Query("gameId"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
