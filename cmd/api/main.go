package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"arcade-pot-backend/internal/config"
	"arcade-pot-backend/internal/handlers"
	"arcade-pot-backend/internal/middleware"
	"arcade-pot-backend/internal/services"
)

func main() {
	log := logrus.New()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongo, err := services.NewMongoService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongo.Close()

	locks, err := services.NewLockService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer locks.Close()

	solana := services.NewSolanaService(cfg, log)
	jwtService := services.NewJWTService(cfg)

	bets := services.NewBetService(mongo, solana, locks, log)
	engine := services.NewSettlementEngine(mongo, solana, locks, cfg.OperatorWallet, log)

	wsHandler := handlers.NewWebSocketHandler(ctx, mongo, log)
	engine.SetBroadcaster(wsHandler)

	monitor := services.NewCycleMonitor(mongo, engine, cfg.MonitorInterval, cfg.CycleDuration, log)
	go monitor.Start(ctx)

	authHandler := handlers.NewAuthHandler(jwtService, cfg.AdminAPIKey)
	gameHandler := handlers.NewGameHandler(mongo, cfg, log)
	betHandler := handlers.NewBetHandler(bets)
	scoreHandler := handlers.NewScoreHandler(mongo)
	settlementHandler := handlers.NewSettlementHandler(engine)
	healthHandler := handlers.NewHealthHandler(mongo, solana)

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", healthHandler.Health)
	router.POST("/auth/token", authHandler.Token)

	router.GET("/games", gameHandler.ListGames)
	router.GET("/game-status", gameHandler.GameStatus)
	router.GET("/pot", gameHandler.GetPot)
	router.GET("/distributions", gameHandler.ListDistributions)
	router.GET("/player", gameHandler.PlayerStats)

	router.POST("/place-bet", betHandler.PlaceBet)
	router.POST("/place-bet-confirm", betHandler.ConfirmBet)
	router.POST("/update-score", scoreHandler.UpdateScore)
	router.POST("/distribute-winnings", settlementHandler.Distribute)

	router.GET("/ws/status", wsHandler.HandleWebSocket)

	admin := router.Group("/")
	admin.Use(middleware.AdminAuth(jwtService))
	{
		admin.POST("/games", gameHandler.CreateGame)
		admin.PUT("/games", gameHandler.UpdateGame)
		admin.DELETE("/games", gameHandler.DeleteGame)
		admin.POST("/games/cleanup", gameHandler.Cleanup)
		admin.POST("/sweep-to-operator", settlementHandler.Sweep)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Infof("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
