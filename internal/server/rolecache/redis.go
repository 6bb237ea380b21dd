package rolecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synscript/synscript/internal/logging"
	"github.com/synscript/synscript/internal/server/models"
)

// keyPrefix namespaces role entries away from unrelated cached data.
const keyPrefix = "synscript/cache/vault-role:"

// DefaultOpTimeout caps every cache round trip. It is deliberately shorter
// than a typical store read so a degraded cache cannot become slower than
// the fallback path.
const DefaultOpTimeout = 250 * time.Millisecond

// RedisCache implements Cache over go-redis. All failures are logged and
// swallowed; callers observe them only as misses.
type RedisCache struct {
	client    *redis.Client
	logger    logging.Logger
	opTimeout time.Duration
}

func NewRedisCache(client *redis.Client, logger logging.Logger, opTimeout time.Duration) *RedisCache {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	return &RedisCache{
		client:    client,
		logger:    logger.With("module", "rolecache"),
		opTimeout: opTimeout,
	}
}

func key(vaultID, userID string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, vaultID, userID)
}

func (c *RedisCache) Get(ctx context.Context, vaultID, userID string) (models.Role, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, key(vaultID, userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(ctx, "cache get failed", "error", err)
		}
		return models.RoleNone, false
	}

	role := models.Role(val)
	if !role.Valid() {
		// Stale or foreign value under our key; treat as a miss.
		return models.RoleNone, false
	}
	return role, true
}

func (c *RedisCache) Set(ctx context.Context, vaultID, userID string, role models.Role, ttl time.Duration) {
	if !role.Valid() {
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key(vaultID, userID), string(role), ttl).Err(); err != nil {
		c.logger.Warn(ctx, "cache set failed", "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, vaultID, userID string) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if userID != "" {
		if err := c.client.Del(ctx, key(vaultID, userID)).Err(); err != nil {
			c.logger.Warn(ctx, "cache invalidate failed", "error", err)
		}
		return
	}

	// Whole-vault invalidation: walk the vault's key range. SCAN keeps the
	// operation incremental; the op timeout still bounds the total cost.
	pattern := fmt.Sprintf("%s%s:*", keyPrefix, vaultID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn(ctx, "cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn(ctx, "cache invalidate failed", "error", err)
	}
}
