package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/apnadera/backend-go/internal/config"
)

// RateLimiter throttles requests per client using Redis
type RateLimiter interface {
	// Allow reports whether the client identified by key may proceed,
	// along with the number of requests used in the current window.
	Allow(ctx context.Context, key string) (bool, int64, error)

	// Middleware returns a gin handler enforcing the limit per client IP.
	Middleware() gin.HandlerFunc

	// Close closes the Redis connection
	Close() error
}

type redisRateLimiter struct {
	client *redis.Client
	window time.Duration
	max    int64
	logger *slog.Logger
}

// NewRateLimiter creates a new Redis-based rate limiter
func NewRateLimiter(cfg *config.Config, logger *slog.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDB),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("❌ [RateLimiter] Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [RateLimiter] Connected to Redis",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
		"window", time.Duration(cfg.RateLimitWindow)*time.Second,
		"max", cfg.RateLimitMax,
	)

	return &redisRateLimiter{
		client: client,
		window: time.Duration(cfg.RateLimitWindow) * time.Second,
		max:    cfg.RateLimitMax,
		logger: logger,
	}, nil
}

// NewRateLimiterWithClient creates a rate limiter around an existing
// Redis client (for testing).
func NewRateLimiterWithClient(client *redis.Client, cfg *config.Config, logger *slog.Logger) RateLimiter {
	return &redisRateLimiter{
		client: client,
		window: time.Duration(cfg.RateLimitWindow) * time.Second,
		max:    cfg.RateLimitMax,
		logger: logger,
	}
}

// rateKey generates the Redis key for a client's current window count.
// Format: rate:ip:{clientKey}
func rateKey(clientKey string) string {
	return fmt.Sprintf("rate:ip:%s", clientKey)
}

// Allow implements a fixed window: the first request in a window creates
// the counter with a TTL, later requests increment it.
func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	redisKey := rateKey(key)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			r.logger.Warn("⚠️ [RateLimiter] Failed to set window expiry", "key", key, "error", err)
		}
	}

	return count <= r.max, count, nil
}

func (r *redisRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, count, err := r.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Fail open: a Redis hiccup should not take the API down.
			r.logger.Warn("⚠️ [RateLimiter] Check failed, allowing request", "error", err)
			c.Next()
			return
		}

		if !allowed {
			r.logger.Warn("⚠️ [RateLimiter] Rate limit exceeded", "ip", c.ClientIP(), "count", count)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// noOpRateLimiter allows everything. Used when Redis is unavailable so
// the API still serves traffic.
type noOpRateLimiter struct {
	logger *slog.Logger
}

// NewNoOpRateLimiter creates a rate limiter that never throttles
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter (Redis unavailable)")
	return &noOpRateLimiter{logger: logger}
}

func (n *noOpRateLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	return true, 0, nil
}

func (n *noOpRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

func (n *noOpRateLimiter) Close() error {
	return nil
}
