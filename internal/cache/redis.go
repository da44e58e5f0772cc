// Package cache provides the Redis access layer used for shared rate limit
// counters.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options sizes the client. Zero fields keep the defaults.
type Options struct {
	PoolSize int
	// OpTimeout bounds each read and write. Counter calls sit on the request
	// path, so this stays well under a second.
	OpTimeout time.Duration
}

// DefaultOptions returns the client settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		PoolSize:  10,
		OpTimeout: 500 * time.Millisecond,
	}
}

// clientOptions parses redisURL and applies opts on top of the defaults.
func clientOptions(redisURL string, opts Options) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	def := DefaultOptions()
	if opts.PoolSize <= 0 {
		opts.PoolSize = def.PoolSize
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = def.OpTimeout
	}

	opt.PoolSize = opts.PoolSize
	opt.MinIdleConns = min(2, opts.PoolSize)
	opt.PoolTimeout = 4 * opts.OpTimeout
	opt.ConnMaxIdleTime = 5 * time.Minute
	opt.ReadTimeout = opts.OpTimeout
	opt.WriteTimeout = opts.OpTimeout
	return opt, nil
}

// Cache wraps the Redis client.
type Cache struct {
	client *redis.Client
}

// New connects to redisURL and checks the connection with a ping.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := clientOptions(redisURL, opts)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the client to integration tests.
func (c *Cache) Client() *redis.Client {
	return c.client
}
