package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	EnableRotationThrottle bool
	MaxRotations           int
	RotationWindow         time.Duration
}

// Limiter enforces a per-session rotation budget using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckRotation counts one rotation attempt for the session and returns
// [ErrRateLimited] once the window budget is exhausted.
func (l *Limiter) CheckRotation(ctx context.Context, scene, sessionID string) error {
	if l == nil || !l.config.EnableRotationThrottle {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, rotationKey(scene, sessionID), l.config.RotationWindow)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxRotations) {
		return ErrRateLimited
	}

	return nil
}

// RotationCount returns the attempts recorded in the current window.
// Missing keys return zero.
func (l *Limiter) RotationCount(ctx context.Context, scene, sessionID string) (int, error) {
	count, err := l.redis.Get(ctx, rotationKey(scene, sessionID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Reset drops the rotation counter for the session, typically at logout.
func (l *Limiter) Reset(ctx context.Context, scene, sessionID string) error {
	if l == nil || !l.config.EnableRotationThrottle {
		return nil
	}
	if err := l.redis.Del(ctx, rotationKey(scene, sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func rotationKey(scene, sessionID string) string {
	return "ar:" + scene + ":" + sessionID
}
