// Package ratelimit throttles repeated login attempts per identifier with a
// sliding window kept in Redis, so limits hold across dev server restarts.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Window struct {
	Length      time.Duration // e.g. 1 minute
	MaxAttempts int           // max attempts per window
}

type SlidingWindow struct {
	redis  *redis.Client
	name   string
	window Window
	now    func() time.Time
}

func NewSlidingWindow(client *redis.Client, name string, window Window) *SlidingWindow {
	return &SlidingWindow{
		redis:  client,
		name:   name,
		window: window,
		now:    time.Now,
	}
}

// Allow records an attempt for identifier and reports whether it is within the limit.
func (l *SlidingWindow) Allow(ctx context.Context, identifier string) (bool, error) {
	key := fmt.Sprintf("rate_limit:%s:%s", l.name, identifier)

	now := l.now()
	windowStart := now.Add(-l.window.Length).UnixMilli()

	pipe := l.redis.TxPipeline()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))

	// Count current window
	count := pipe.ZCard(ctx, key)

	// Add new entry; members must be unique or same-millisecond attempts collapse
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})

	// Set expiration
	pipe.Expire(ctx, key, l.window.Length*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}

	return count.Val() < int64(l.window.MaxAttempts), nil
}

// Reset forgets every attempt of identifier, e.g. after a successful login.
func (l *SlidingWindow) Reset(ctx context.Context, identifier string) error {
	return l.redis.Del(ctx, fmt.Sprintf("rate_limit:%s:%s", l.name, identifier)).Err()
}
