package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IncrementAndExpire(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(windowStart)
	s := NewMemoryStore(clock.Now)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := s.Increment(ctx, "k", 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	clock.Advance(5 * time.Second)

	got, err := s.Increment(ctx, "k", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "expired counter restarts")
}

func TestMemoryStore_Cleanup(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(windowStart)
	s := NewMemoryStore(clock.Now)
	ctx := context.Background()

	_, _ = s.Increment(ctx, "short", time.Second)
	_, _ = s.Increment(ctx, "long", time.Minute)
	require.Equal(t, 2, s.Len())

	clock.Advance(2 * time.Second)

	assert.Equal(t, 1, s.Cleanup())
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_JanitorStopsOnCancel(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(nil)
	_, _ = s.Increment(context.Background(), "gone", time.Nanosecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := s.StartJanitor(ctx, 5*time.Millisecond, nil)

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestMemoryStore_JanitorNonPositiveInterval(t *testing.T) {
	t.Parallel()

	for _, interval := range []time.Duration{0, -time.Second} {
		s := NewMemoryStore(nil)
		ctx, cancel := context.WithCancel(context.Background())

		var done <-chan struct{}
		require.NotPanics(t, func() { done = s.StartJanitor(ctx, interval, nil) })

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("janitor with interval %s did not stop", interval)
		}
	}
}
