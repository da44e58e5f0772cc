package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// rateLimitPrefix is the Redis key prefix for fixed-window counters.
const rateLimitPrefix = "ratelimit:window:"

// fixedWindowScript increments a counter and sets its expiry on the first hit.
// It returns the new count.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return count
`)

// BreakerConfig controls the circuit breaker guarding Redis calls.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears closed-state counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns the settings used in production.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            30 * time.Second,
		Timeout:             15 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// RateLimitStore keeps fixed-window counters in Redis so every instance
// shares one budget per client IP.
type RateLimitStore struct {
	cache   *Cache
	breaker *gobreaker.CircuitBreaker
}

// NewRateLimitStore creates a counter store on top of c.
func NewRateLimitStore(c *Cache, cfg BreakerConfig, logger *slog.Logger) *RateLimitStore {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "redis-ratelimit",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// Cancellation by the client is not a Redis failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &RateLimitStore{
		cache:   c,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Increment implements ratelimit.CounterStore.
func (s *RateLimitStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	ttlMs := ttl.Milliseconds()
	if ttlMs < 1 {
		ttlMs = 1
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return fixedWindowScript.Run(ctx, s.cache.client, []string{rateLimitPrefix + hashKey(key)}, ttlMs).Int64()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	return result.(int64), nil
}

// ErrBreakerOpen is reported by Ping while the circuit breaker is open.
var ErrBreakerOpen = errors.New("rate limit circuit breaker is open")

// BreakerState reports the breaker state.
func (s *RateLimitStore) BreakerState() gobreaker.State {
	return s.breaker.State()
}

// Ping reports the store unhealthy while the breaker is open, and otherwise
// pings Redis. It satisfies handler.HealthChecker.
func (s *RateLimitStore) Ping(ctx context.Context) error {
	if s.BreakerState() == gobreaker.StateOpen {
		return ErrBreakerOpen
	}
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// hashKey creates a truncated SHA256 hash of a counter key.
// Keys embed client IPs, which are not stored in clear text.
func hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
