package cache

import (
	"testing"
	"time"
)

func TestHashKey_Deterministic(t *testing.T) {
	t.Parallel()

	key := "api/ip:170000000:192.168.1.100"

	hash1 := hashKey(key)
	hash2 := hashKey(key)

	if hash1 != hash2 {
		t.Error("Same key should produce same hash")
	}
}

func TestHashKey_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{"IPv4", "api/ip:1:192.168.1.1"},
		{"IPv6 localhost", "api/ip:1:::1"},
		{"IPv6 full", "api/ip:1:2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashKey(tt.key)
			// hashKey uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashKey(%q) length = %d, want 16", tt.key, len(hash))
			}
		})
	}
}

func TestHashKey_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key1 string
		key2 string
	}{
		{"different IP", "api/ip:1:10.0.0.1", "api/ip:1:10.0.0.2"},
		{"different window", "api/ip:1:10.0.0.1", "api/ip:2:10.0.0.1"},
		{"IPv4 vs IPv6", "api/ip:1:127.0.0.1", "api/ip:1:::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if hashKey(tt.key1) == hashKey(tt.key2) {
				t.Errorf("hashKey(%q) == hashKey(%q)", tt.key1, tt.key2)
			}
		})
	}
}

func TestDefaultBreakerConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultBreakerConfig()
	if cfg.ConsecutiveFailures == 0 {
		t.Error("breaker must trip after a bounded number of failures")
	}
	if cfg.Timeout <= 0 {
		t.Error("breaker timeout must be positive")
	}
}

func TestClientOptions(t *testing.T) {
	t.Parallel()

	opt, err := clientOptions("redis://:secret@localhost:6379/2", Options{})
	if err != nil {
		t.Fatalf("clientOptions() error = %v", err)
	}
	if opt.PoolSize != 10 || opt.ReadTimeout != 500*time.Millisecond || opt.WriteTimeout != 500*time.Millisecond {
		t.Errorf("defaults not applied: pool=%d read=%s write=%s", opt.PoolSize, opt.ReadTimeout, opt.WriteTimeout)
	}
	if opt.DB != 2 || opt.Password != "secret" {
		t.Errorf("url settings lost: db=%d password=%q", opt.DB, opt.Password)
	}

	opt, err = clientOptions("redis://localhost:6379", Options{PoolSize: 1, OpTimeout: time.Second})
	if err != nil {
		t.Fatalf("clientOptions() error = %v", err)
	}
	if opt.PoolSize != 1 || opt.MinIdleConns != 1 || opt.ReadTimeout != time.Second {
		t.Errorf("explicit options not applied: pool=%d idle=%d read=%s", opt.PoolSize, opt.MinIdleConns, opt.ReadTimeout)
	}

	if _, err := clientOptions("http://localhost", Options{}); err == nil {
		t.Error("expected error for non-redis scheme")
	}
}
