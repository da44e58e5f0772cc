package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/companyhub/companyhub/internal/auth"
	"github.com/companyhub/companyhub/internal/authz"
	"github.com/companyhub/companyhub/internal/cache"
	"github.com/companyhub/companyhub/internal/config"
	"github.com/companyhub/companyhub/internal/handler"
	"github.com/companyhub/companyhub/internal/metrics"
	"github.com/companyhub/companyhub/internal/ratelimit"
	"github.com/companyhub/companyhub/internal/repository"
	"github.com/companyhub/companyhub/internal/server"
	"github.com/companyhub/companyhub/internal/service"
)

// denylistPruneInterval is how often expired revoked tokens are deleted.
const denylistPruneInterval = time.Hour

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MigrateOnStart {
		if err := repository.Migrate(ctx, cfg.DatabaseURL, repository.MigrateUp); err != nil {
			msg := sanitizeError(err, cfg.DatabaseURL)
			logger.Error("failed to run migrations", slog.String("error", msg))
			return errors.New(msg)
		}
		logger.Info("migrations applied")
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	})
	if err != nil {
		msg := sanitizeError(err, cfg.DatabaseURL)
		logger.Error(
			"failed to connect to database",
			slog.String("error", msg),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New(msg)
	}
	defer repo.Close()
	logger.Info("connected to database")

	healthCheckers := map[string]handler.HealthChecker{"postgres": repo}

	// Metrics
	var (
		recorder       metrics.Recorder = metrics.NewNoop()
		metricsHandler                  = promhttp.Handler()
	)
	if cfg.MetricsEnabled {
		recorder = metrics.NewPrometheus(prometheus.DefaultRegisterer)
	} else {
		metricsHandler = nil
	}

	// Rate limiter
	var limiter *ratelimit.Limiter
	var janitorDone <-chan struct{}
	var cacheClient *cache.Cache
	if cfg.RateLimitEnabled {
		var store ratelimit.CounterStore
		switch cfg.RateLimitStore {
		case config.RateLimitStoreRedis:
			cacheClient, err = cache.New(ctx, cfg.RedisURL, cache.Options{PoolSize: cfg.RedisPoolSize})
			if err != nil {
				msg := sanitizeError(err, cfg.RedisURL)
				logger.Error(
					"failed to connect to Redis",
					slog.String("error", msg),
					slog.String("redis_url", redactURL(cfg.RedisURL)),
				)
				return errors.New(msg)
			}
			logger.Info("connected to Redis")
			redisStore := cache.NewRateLimitStore(cacheClient, cache.DefaultBreakerConfig(), logger)
			healthCheckers["redis"] = redisStore
			store = redisStore
		default:
			mem := ratelimit.NewMemoryStore(time.Now)
			janitorDone = mem.StartJanitor(ctx, cfg.RateLimitCleanupInterval, logger)
			store = mem
		}

		limiter, err = ratelimit.New(ratelimit.Config{
			Store:  store,
			Limit:  cfg.RateLimitLimit,
			Period: cfg.RateLimitPeriod,
		})
		if err != nil {
			return fmt.Errorf("failed to create rate limiter: %w", err)
		}
		logger.Info("rate limiter enabled",
			slog.String("store", cfg.RateLimitStore),
			slog.Int("limit", cfg.RateLimitLimit),
			slog.Duration("period", cfg.RateLimitPeriod),
		)
	}

	// Initialize services
	hasher, err := auth.NewHasher(auth.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to create password hasher: %w", err)
	}
	authService := service.NewAuthService(service.AuthServiceConfig{
		Users:             repo,
		Denylist:          repo,
		Hasher:            hasher,
		Tokens:            auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, nil),
		PasswordMinLength: cfg.PasswordMinLength,
		Metrics:           recorder,
	})
	companyService := service.NewCompanyService(repo, repo, authz.NewGuard(), recorder)

	trustedProxies, err := cfg.GetTrustedProxies()
	if err != nil {
		return err
	}

	routerCfg := server.RouterConfig{
		Logger:             logger,
		IsDevelopment:      cfg.IsDevelopment(),
		AllowedOrigins:     cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		TrustedProxies:     trustedProxies,
		Auth:               authService,
		Companies:          companyService,
		RateLimitEnabled:   limiter != nil,
		Metrics:            recorder,
		MetricsHandler:     metricsHandler,
		HealthCheckers:     healthCheckers,
	}
	if limiter != nil {
		routerCfg.RateLimiter = limiter
	}

	srv := server.New(server.NewRouter(routerCfg), server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, closed last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	prunerDone := startDenylistPruner(ctx, repo, logger)
	srv.OnShutdown("background workers", func(shutdownCtx context.Context) error {
		cancel()
		for _, done := range []<-chan struct{}{prunerDone, janitorDone} {
			if done == nil {
				continue
			}
			select {
			case <-done:
			case <-shutdownCtx.Done():
				return shutdownCtx.Err()
			}
		}
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"rate_limit_enabled", cfg.RateLimitEnabled,
		"metrics_enabled", cfg.MetricsEnabled,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

// startDenylistPruner deletes expired revoked tokens until ctx is done.
func startDenylistPruner(ctx context.Context, repo *repository.Repository, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(denylistPruneInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := repo.PruneDenylist(ctx, time.Now())
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						logger.Warn("denylist prune failed", slog.String("error", err.Error()))
					}
					continue
				}
				if n > 0 {
					logger.Debug("denylist pruned", slog.Int64("removed", n))
				}
			}
		}
	}()

	return done
}
