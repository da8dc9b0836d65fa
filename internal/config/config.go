package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env  string
	Port string

	MongoURI string
	MongoDB  string

	RedisURL  string
	RedisPass string
	RedisDB   int

	SolanaRPCURL   string
	OperatorWallet string

	AdminAPIKey string
	JWTSecret   string

	CycleDuration   time.Duration
	MonitorInterval time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "arcadepot"),

		RedisURL:  getEnv("REDIS_URL", "localhost:6379"),
		RedisPass: os.Getenv("REDIS_PASS"),

		SolanaRPCURL:   getEnv("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		OperatorWallet: os.Getenv("OPERATOR_WALLET"),

		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}

	if cfg.OperatorWallet == "" {
		return nil, fmt.Errorf("OPERATOR_WALLET is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
	}
	cfg.RedisDB = db

	cfg.CycleDuration, err = getDuration("CYCLE_DURATION", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.MonitorInterval, err = getDuration("MONITOR_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}
