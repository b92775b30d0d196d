package redisx

// Package redisx provides Redis-based adapters for the innoventum system.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syaquiii/innoventum-sub001/internal/ports"
)

// LoginThrottle counts failed sign-in attempts per account key in Redis.
// Counters expire on their own; a successful sign-in resets the budget early.
// Session state itself stays in the client-held token — this counter is the
// only Redis state the auth core keeps.
type LoginThrottle struct {
	client      redis.UniversalClient
	prefix      string
	maxFailures int
	window      time.Duration
}

var _ ports.LoginThrottle = (*LoginThrottle)(nil)

// ThrottleConfig controls the failure budget.
type ThrottleConfig struct {
	// MaxFailures before attempts are rejected. Defaults to 10.
	MaxFailures int
	// Window is the counter TTL. Defaults to 15m.
	Window time.Duration
}

// NewLoginThrottle creates a Redis-backed login throttle.
func NewLoginThrottle(client redis.UniversalClient, cfg ThrottleConfig) *LoginThrottle {
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 10
	}
	window := cfg.Window
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{
		client:      client,
		prefix:      "login_fail:",
		maxFailures: maxFailures,
		window:      window,
	}
}

// Allow reports whether another attempt is permitted for the key.
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("throttle key cannot be empty")
	}

	n, err := t.client.Get(ctx, t.key(key)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("redis get: %w", err)
	}
	return n < t.maxFailures, nil
}

// RecordFailure increments the failure counter and refreshes its TTL.
func (t *LoginThrottle) RecordFailure(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("throttle key cannot be empty")
	}

	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, t.key(key))
	pipe.Expire(ctx, t.key(key), t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	return nil
}

// Reset clears the failure budget for the key.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("throttle key cannot be empty")
	}
	if err := t.client.Del(ctx, t.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(key string) string {
	return t.prefix + strings.ToLower(strings.TrimSpace(key))
}
