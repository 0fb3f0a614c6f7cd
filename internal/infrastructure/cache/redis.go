package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

const (
	runLockKeyPrefix = "pipeline:lock:"
	rosterKeyPrefix  = "pipeline:roster:"
)

// RedisClient backs the per-meeting run lock and the roster cache.
type RedisClient struct {
	client    *redis.Client
	lockTTL   time.Duration
	rosterTTL time.Duration
	logger    *zap.Logger
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg *config.Config, logger *zap.Logger) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{
		client:    client,
		lockTTL:   cfg.Pipeline.LockTTL,
		rosterTTL: cfg.Pipeline.RosterCacheTTL,
		logger:    logger,
	}, nil
}

// Close closes the underlying connection.
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// AcquireRunLock takes the per-meeting lock. Returns false when another run
// already holds it.
func (r *RedisClient) AcquireRunLock(ctx context.Context, meetingID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, runLockKeyPrefix+meetingID, "1", r.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return ok, nil
}

// ReleaseRunLock frees the per-meeting lock.
func (r *RedisClient) ReleaseRunLock(ctx context.Context, meetingID string) error {
	if err := r.client.Del(ctx, runLockKeyPrefix+meetingID).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

// GetRoster returns a cached roster lookup, if present.
func (r *RedisClient) GetRoster(ctx context.Context, key string) ([]entities.ParticipantRecord, bool) {
	data, err := r.client.Get(ctx, rosterKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var roster []entities.ParticipantRecord
	if err := json.Unmarshal(data, &roster); err != nil {
		if r.logger != nil {
			r.logger.Warn("⚠️ Corrupt roster cache entry, dropping", zap.String("key", key))
		}
		r.client.Del(ctx, rosterKeyPrefix+key)
		return nil, false
	}
	return roster, true
}

// SetRoster caches a roster lookup with the configured TTL.
func (r *RedisClient) SetRoster(ctx context.Context, key string, roster []entities.ParticipantRecord) {
	data, err := json.Marshal(roster)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, rosterKeyPrefix+key, data, r.rosterTTL).Err(); err != nil && r.logger != nil {
		r.logger.Warn("⚠️ Failed to cache roster", zap.String("key", key), zap.Error(err))
	}
}
