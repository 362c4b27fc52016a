package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/apnadera/backend-go/internal/config"
	"github.com/apnadera/backend-go/internal/database/models"
)

// RedisClient wraps the redis client with helper methods for caching
// owner statistics
type RedisClient struct {
	client *redis.Client
	logger *slog.Logger
	cfg    *config.Config
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config, logger *slog.Logger) (*RedisClient, error) {
	logger.Info("🔌 [Redis] Connecting to Redis...",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
		"db", cfg.RedisDB,
	)

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDB),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [Redis] Redis connection established")

	return &RedisClient{
		client: client,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// NewRedisClientForTesting creates a Redis client with a provided redis.Client (for testing)
func NewRedisClientForTesting(client *redis.Client, cfg *config.Config, logger *slog.Logger) *RedisClient {
	return &RedisClient{
		client: client,
		logger: logger,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// statsKey generates the Redis key for a user's owner statistics
func statsKey(userID uint) string {
	return fmt.Sprintf("stats:owner:%d", userID)
}

// GetOwnerStats retrieves cached owner statistics for a user.
// Returns nil without error on a cache miss.
func (r *RedisClient) GetOwnerStats(ctx context.Context, userID uint) (*models.OwnerStats, error) {
	data, err := r.client.Get(ctx, statsKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("❌ [Redis] Failed to get owner stats",
			"user_id", userID,
			"error", err,
		)
		return nil, err
	}

	var stats models.OwnerStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		r.logger.Warn("⚠️ [Redis] Failed to unmarshal cached stats, discarding",
			"user_id", userID,
			"error", err,
		)
		return nil, nil
	}

	r.logger.Debug("📖 [Redis] Owner stats cache hit", "user_id", userID)
	return &stats, nil
}

// SetOwnerStats caches owner statistics for a user with the configured TTL
func (r *RedisClient) SetOwnerStats(ctx context.Context, userID uint, stats *models.OwnerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	ttl := time.Duration(r.cfg.StatsCacheTTL) * time.Second
	if err := r.client.Set(ctx, statsKey(userID), data, ttl).Err(); err != nil {
		r.logger.Error("❌ [Redis] Failed to cache owner stats",
			"user_id", userID,
			"error", err,
		)
		return err
	}

	r.logger.Debug("💾 [Redis] Cached owner stats", "user_id", userID, "ttl", ttl)
	return nil
}

// InvalidateOwnerStats drops the cached statistics for a user. Called
// after writes that change the aggregates.
func (r *RedisClient) InvalidateOwnerStats(ctx context.Context, userID uint) error {
	if err := r.client.Del(ctx, statsKey(userID)).Err(); err != nil {
		r.logger.Error("❌ [Redis] Failed to invalidate owner stats",
			"user_id", userID,
			"error", err,
		)
		return err
	}

	r.logger.Debug("🗑️ [Redis] Invalidated owner stats", "user_id", userID)
	return nil
}

// GetClient returns the underlying Redis client (for advanced use cases)
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}
