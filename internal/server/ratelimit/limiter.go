// Package ratelimit throttles request bursts per client IP using a
// sliding window kept in Redis, shared across server instances.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/synscript/synscript/internal/logging"
)

// Limiter decides whether a request from key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

const keyPrefix = "synscript/ratelimit:"

// DefaultOpTimeout caps a limiter round trip so a slow Redis cannot
// stall request handling.
const DefaultOpTimeout = 250 * time.Millisecond

// RedisLimiter is a sliding-window counter over a sorted set per key:
// each request is a member scored by its timestamp, members older than
// the window are trimmed before counting. Fails open: if Redis is
// unreachable, requests pass.
type RedisLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	opTimeout time.Duration
	logger    logging.Logger
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, opTimeout time.Duration, logger logging.Logger) *RedisLimiter {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		opTimeout: opTimeout,
		logger:    logger.With("module", "ratelimit"),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	now := time.Now()
	redisKey := keyPrefix + key
	windowStart := now.Add(-l.window).UnixNano()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart))
	count := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, redisKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error(ctx, "limiter check failed", "key", key, "error", err)
		return true
	}

	return count.Val() < int64(l.limit)
}

// NoopLimiter is used when no Redis is configured: every request passes.
type NoopLimiter struct{}

func NewNoopLimiter() *NoopLimiter { return &NoopLimiter{} }

func (*NoopLimiter) Allow(context.Context, string) bool { return true }
