package profile

import (
	"context"
	"errors"
	"time"

	"meetmydesigners/utils"

	"github.com/go-redis/redis/v8"
)

// TokenCache remembers the hash of each profile's current token.
type TokenCache interface {
	Set(ctx context.Context, userID, tokenHash string, ttl time.Duration) error
	// Get returns "" without error on a miss.
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

// RedisTokenCache stores hashes in the auth Redis database under auth:<user>.
type RedisTokenCache struct {
	Client *redis.Client
}

func (c *RedisTokenCache) Set(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	return c.Client.Set(ctx, utils.AuthCachePrefix+userID, tokenHash, ttl).Err()
}

func (c *RedisTokenCache) Get(ctx context.Context, userID string) (string, error) {
	hash, err := c.Client.Get(ctx, utils.AuthCachePrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return hash, err
}

func (c *RedisTokenCache) Delete(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, utils.AuthCachePrefix+userID).Err()
}
