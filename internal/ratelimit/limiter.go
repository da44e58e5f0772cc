// Package ratelimit implements the fixed-window request throttle applied to
// the company list, update and delete endpoints.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Defaults observed in production.
const (
	DefaultLimit  = 3
	DefaultPeriod = 10 * time.Second
)

// keyPrefix names the throttle in store keys.
const keyPrefix = "api/ip"

// Request describes an inbound request for classification.
type Request struct {
	IP     string
	Method string
	Path   string
}

// State is the per (IP, window) position of a counter.
type State int

const (
	// StateNoCounter means no request was counted in the window.
	StateNoCounter State = iota
	// StateCounting means count < limit.
	StateCounting
	// StateLimitReached means count == limit; the request is still allowed.
	StateLimitReached
	// StateBlocked means count > limit.
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateCounting:
		return "counting"
	case StateLimitReached:
		return "limit-reached"
	case StateBlocked:
		return "blocked"
	default:
		return "no-counter"
	}
}

// Decision is the outcome of Limiter.Decide.
type Decision struct {
	Allowed bool
	Match   Match
	// Count is the counter value after this request. Zero when not counted.
	Count     int64
	Limit     int
	Remaining int
	// ResetAt is when the current window closes.
	ResetAt time.Time
	// RetryAfter is the whole-second wait until the window closes. Only set
	// when the request is blocked.
	RetryAfter time.Duration
}

// State derives the counter state from the decision.
func (d Decision) State() State {
	switch {
	case !d.Match.Counted() || d.Count == 0:
		return StateNoCounter
	case d.Count < int64(d.Limit):
		return StateCounting
	case d.Count == int64(d.Limit):
		return StateLimitReached
	default:
		return StateBlocked
	}
}

// Config configures a Limiter.
type Config struct {
	Store  CounterStore
	Limit  int
	Period time.Duration
	// Clock defaults to time.Now.
	Clock Clock
}

// Limiter decides allow or block per client IP using fixed windows.
type Limiter struct {
	store  CounterStore
	limit  int
	period time.Duration
	now    Clock
}

// ErrInvalidConfig is returned by New for unusable settings.
var ErrInvalidConfig = errors.New("invalid rate limit config")

// New creates a Limiter.
func New(cfg Config) (*Limiter, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if cfg.Limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", ErrInvalidConfig)
	}
	if cfg.Period < time.Second {
		return nil, fmt.Errorf("%w: period must be at least 1s", ErrInvalidConfig)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Limiter{
		store:  cfg.Store,
		limit:  cfg.Limit,
		period: cfg.Period,
		now:    cfg.Clock,
	}, nil
}

// Decide classifies req and, for counted classes, increments the IP's
// counter for the current window.
//
// On a store error the returned decision allows the request and the error is
// returned alongside it so the caller can log it and fail open.
func (l *Limiter) Decide(ctx context.Context, req Request) (Decision, error) {
	match := Classify(req.Method, req.Path)
	if !match.Counted() {
		return Decision{Allowed: true, Match: NoMatch, Limit: l.limit, Remaining: l.limit}, nil
	}

	now := l.now()
	window := now.UnixNano() / l.period.Nanoseconds()
	resetAt := time.Unix(0, (window+1)*l.period.Nanoseconds())

	decision := Decision{
		Allowed:   true,
		Match:     match,
		Limit:     l.limit,
		Remaining: l.limit,
		ResetAt:   resetAt,
	}

	count, err := l.store.Increment(ctx, windowKey(window, req.IP), resetAt.Sub(now))
	if err != nil {
		return decision, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	decision.Count = count
	decision.Remaining = max(0, l.limit-int(count))
	if count > int64(l.limit) {
		decision.Allowed = false
		decision.RetryAfter = retryAfter(resetAt.Sub(now))
	}

	return decision, nil
}

func windowKey(window int64, ip string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, window, ip)
}

// retryAfter rounds up to whole seconds, never below one.
func retryAfter(d time.Duration) time.Duration {
	secs := (d + time.Second - 1) / time.Second
	if secs < 1 {
		secs = 1
	}
	return secs * time.Second
}
