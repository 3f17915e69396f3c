package wallet

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	balanceCachePrefix = "wallet_balance:"
	balanceCacheTTL    = 30 * time.Second
)

// BalanceCache memoises computed balances between ledger writes.
type BalanceCache interface {
	Get(ctx context.Context, userID string) (float64, bool, error)
	Set(ctx context.Context, userID string, balance float64) error
	Invalidate(ctx context.Context, userID string) error
}

// RedisBalanceCache keeps balances under wallet_balance:<user>.
type RedisBalanceCache struct {
	Client *redis.Client
}

func (c *RedisBalanceCache) Get(ctx context.Context, userID string) (float64, bool, error) {
	val, err := c.Client.Get(ctx, balanceCachePrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	balance, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

func (c *RedisBalanceCache) Set(ctx context.Context, userID string, balance float64) error {
	return c.Client.Set(ctx, balanceCachePrefix+userID, strconv.FormatFloat(balance, 'f', 2, 64), balanceCacheTTL).Err()
}

func (c *RedisBalanceCache) Invalidate(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, balanceCachePrefix+userID).Err()
}
