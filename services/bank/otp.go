package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// OTPStore keeps verification codes until they expire. Saving a code resets
// its failure count and deleting it removes the count too.
type OTPStore interface {
	Save(ctx context.Context, key, code string, ttl time.Duration) error
	// Get returns "" without error when the key is missing or expired.
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// RecordFailure counts a wrong guess and returns the total so far.
	RecordFailure(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisOTPStore stores codes in the OTP Redis database.
type RedisOTPStore struct {
	Client *redis.Client
}

func (s *RedisOTPStore) Save(ctx context.Context, key, code string, ttl time.Duration) error {
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, code, ttl)
		pipe.Del(ctx, attemptsKey(key))
		return nil
	})
	return err
}

func (s *RedisOTPStore) Get(ctx context.Context, key string) (string, error) {
	code, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return code, err
}

func (s *RedisOTPStore) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key, attemptsKey(key)).Err()
}

func (s *RedisOTPStore) RecordFailure(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, attemptsKey(key))
		pipe.Expire(ctx, attemptsKey(key), ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func attemptsKey(key string) string {
	return key + ":attempts"
}

func otpKey(userID, accountID string) string {
	return fmt.Sprintf("bank_otp:%s:%s", userID, accountID)
}
