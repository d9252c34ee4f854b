package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis sorted set per key, scored by
// request time in nanoseconds. Sliding window shared across replicas.
type RedisStore struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := s.now()
	cutoff := now.Add(-window)
	redisKey := "ratelimit:" + key

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit window read: %w", err)
	}

	count := int(countCmd.Val())
	if count >= limit {
		oldest, err := s.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		resetAt := now.Add(window)
		if err == nil && len(oldest) > 0 {
			resetAt = time.Unix(0, int64(oldest[0].Score)).Add(window)
		}
		return &Result{Allowed: false, Remaining: 0, Limit: limit, ResetAt: resetAt}, nil
	}

	pipe = s.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.PExpire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit window write: %w", err)
	}

	return &Result{
		Allowed:   true,
		Remaining: limit - count - 1,
		Limit:     limit,
		ResetAt:   now.Add(window),
	}, nil
}
