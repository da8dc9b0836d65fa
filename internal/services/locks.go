package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"arcade-pot-backend/internal/config"
)

const (
	keySettlementLock = "settlement:lock:%s"

	// SettlementLockTTL bounds how long a crashed settlement can hold a
	// game before the lease expires on its own.
	SettlementLockTTL = 2 * time.Minute
)

// GameLocker hands out short-lived per-game advisory locks so a monitor
// sweep and an operator-triggered settlement cannot run the same game
// concurrently.
type GameLocker interface {
	Acquire(ctx context.Context, gameID string, ttl time.Duration) (release func(), err error)
}

// LockService implements GameLocker on Redis with a SetNX lease. Release is
// token-checked so an expired holder cannot free a lock someone else has
// since taken.
type LockService struct {
	client *redis.Client
}

func NewLockService(cfg *config.Config) (*LockService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &LockService{client: client}, nil
}

var releaseLockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

func (s *LockService) Acquire(ctx context.Context, gameID string, ttl time.Duration) (func(), error) {
	key := fmt.Sprintf(keySettlementLock, gameID)
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire settlement lock: %v", err)
	}
	if !ok {
		return nil, ErrGameLocked
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		releaseLockScript.Run(ctx, s.client, []string{key}, token)
	}
	return release, nil
}

func (s *LockService) Close() error {
	return s.client.Close()
}
