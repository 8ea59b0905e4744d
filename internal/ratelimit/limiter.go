// Package ratelimit provides the fixed-window request limiter guarding the
// expensive AI and guardrail endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter counts requests per key in fixed one-minute windows backed
// by Redis, so limits hold across replicas.
type RedisLimiter struct {
	client rueidis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter connects to Redis and returns a limiter allowing `limit`
// requests per key per minute.
func NewRedisLimiter(addr string, limit int) (*RedisLimiter, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: time.Minute,
	}, nil
}

// Allow increments the counter for the key's current window and reports
// whether the caller is within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := windowKey(key, time.Now(), l.window)

	count, err := l.client.Do(ctx, l.client.B().Incr().Key(redisKey).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("increment rate counter: %w", err)
	}

	if count == 1 {
		expire := l.client.B().Expire().Key(redisKey).Seconds(int64(l.window.Seconds())).Build()
		if err := l.client.Do(ctx, expire).Error(); err != nil {
			return false, fmt.Errorf("set rate counter expiry: %w", err)
		}
	}

	return count <= int64(l.limit), nil
}

// Close shuts down the Redis client.
func (l *RedisLimiter) Close() {
	l.client.Close()
}

// windowKey buckets a key into its fixed window.
func windowKey(key string, now time.Time, window time.Duration) string {
	bucket := now.Unix() / int64(window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%d", key, bucket)
}

// NoopLimiter allows everything. Used when Redis is not configured.
type NoopLimiter struct{}

// Allow always permits the request.
func (NoopLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
