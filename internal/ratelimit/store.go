package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CounterStore holds fixed-window counters.
//
// Increment adds one to the counter at key and returns the new value in a
// single atomic step. A counter that does not exist starts at zero and
// expires ttl after its first increment.
type CounterStore interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Clock returns the current time.
type Clock func() time.Time

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is a process-local CounterStore.
// Counters are not shared between instances, so a horizontally scaled
// deployment under-counts unless it uses a shared store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     Clock
}

// NewMemoryStore creates an empty store. A nil clock means time.Now.
func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     clock,
	}
}

// Increment implements CounterStore.
func (s *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = &memoryEntry{expiresAt: now.Add(ttl)}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// Len returns the number of counters held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops expired counters and returns how many were removed.
func (s *MemoryStore) Cleanup() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// DefaultJanitorInterval is used when StartJanitor gets a non-positive interval.
const DefaultJanitorInterval = time.Minute

// StartJanitor runs Cleanup every interval until ctx is cancelled.
// The returned channel is closed once the janitor has stopped.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(); n > 0 {
					logger.Debug("rate limit counters expired", slog.Int("removed", n))
				}
			}
		}
	}()

	return done
}
