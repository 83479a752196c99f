package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a sliding-window request counter backed by a Redis
// sorted set per (user, route class) key.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a new RateLimiter.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow records one request for the key and reports whether it fits in
// the window. When denied, retryAfter says how long until the oldest
// counted request leaves the window.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)
	redisKey := "ratelimit:" + key

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if countCmd.Val() >= int64(l.limit) {
		oldest, err := l.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		retryAfter := l.window
		if err == nil && len(oldest) > 0 {
			oldestAt := time.Unix(0, int64(oldest[0].Score))
			retryAfter = oldestAt.Add(l.window).Sub(now)
		}
		return false, retryAfter, nil
	}

	pipe = l.client.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	return true, 0, nil
}
