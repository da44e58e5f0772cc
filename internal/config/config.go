// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Rate limit counter backends.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// minJWTSecretLength is the shortest HS256 secret accepted (256 bits).
const minJWTSecretLength = 32

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	DatabaseMinConns int32  `env:"DATABASE_MIN_CONNS" envDefault:"2"`
	MigrateOnStart   bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	// Cache (Redis). Only needed when rate limit counters are shared.
	RedisURL      string `env:"REDIS_URL" envDefault:""`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Sessions
	JWTSecret         string        `env:"JWT_SECRET,required"`
	JWTIssuer         string        `env:"JWT_ISSUER" envDefault:"companyhub"`
	JWTTTL            time.Duration `env:"JWT_TTL" envDefault:"30m"`
	PasswordMinLength int           `env:"PASSWORD_MIN_LENGTH" envDefault:"6"`

	// Rate limiting (fixed window per client IP)
	RateLimitEnabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitLimit           int           `env:"RATE_LIMIT_LIMIT" envDefault:"3"`
	RateLimitPeriod          time.Duration `env:"RATE_LIMIT_PERIOD" envDefault:"10s"`
	RateLimitStore           string        `env:"RATE_LIMIT_STORE" envDefault:"memory"`
	RateLimitCleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"1m"`

	// Comma-separated proxy addresses or CIDR ranges whose X-Forwarded-For
	// and X-Real-IP headers are believed. Empty trusts no one.
	TrustedProxies string `env:"TRUSTED_PROXIES" envDefault:""`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.RateLimitEnabled && c.RateLimitStore == RateLimitStoreRedis
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// GetTrustedProxies parses TRUSTED_PROXIES. A bare address becomes a
// single-host prefix.
func (c *Config) GetTrustedProxies() ([]netip.Prefix, error) {
	if strings.TrimSpace(c.TrustedProxies) == "" {
		return nil, nil
	}

	var prefixes []netip.Prefix
	for _, item := range strings.Split(c.TrustedProxies, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(item); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address or CIDR %q", item)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Validate checks rules that span more than one variable.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.PasswordMinLength < 1 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must be at least 1"))
	}
	if c.DatabaseMaxConns < 1 {
		errs = append(errs, errors.New("DATABASE_MAX_CONNS must be at least 1"))
	}
	if c.DatabaseMinConns < 1 || c.DatabaseMinConns > c.DatabaseMaxConns {
		errs = append(errs, errors.New("DATABASE_MIN_CONNS must be between 1 and DATABASE_MAX_CONNS"))
	}
	if _, err := c.GetTrustedProxies(); err != nil {
		errs = append(errs, err)
	}

	if c.RateLimitEnabled {
		if c.RateLimitLimit < 1 {
			errs = append(errs, errors.New("RATE_LIMIT_LIMIT must be at least 1"))
		}
		if c.RateLimitPeriod < time.Second {
			errs = append(errs, errors.New("RATE_LIMIT_PERIOD must be at least 1s"))
		}
		switch c.RateLimitStore {
		case RateLimitStoreMemory:
			if c.RateLimitCleanupInterval <= 0 {
				errs = append(errs, errors.New("RATE_LIMIT_CLEANUP_INTERVAL must be positive"))
			}
		case RateLimitStoreRedis:
			if c.RedisURL == "" {
				errs = append(errs, errors.New("REDIS_URL is required when RATE_LIMIT_STORE=redis"))
			}
			if c.RedisPoolSize < 1 {
				errs = append(errs, errors.New("REDIS_POOL_SIZE must be at least 1"))
			}
		default:
			errs = append(errs, fmt.Errorf("RATE_LIMIT_STORE must be %q or %q, got %q",
				RateLimitStoreMemory, RateLimitStoreRedis, c.RateLimitStore))
		}
	}

	return errors.Join(errs...)
}

// LoadDotEnv loads variables from the given files into the process
// environment. Missing files are skipped and variables that are already set
// win over the file.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
