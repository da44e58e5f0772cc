package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/companyhub/companyhub/internal/config"
	"github.com/companyhub/companyhub/internal/repository"
)

func runMigrate(ctx context.Context, direction string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := initLogger(cfg)

	logger.Info("running migrations",
		slog.String("direction", direction),
		slog.String("database_url", redactURL(cfg.DatabaseURL)),
	)
	if err := repository.Migrate(ctx, cfg.DatabaseURL, direction); err != nil {
		msg := sanitizeError(err, cfg.DatabaseURL)
		logger.Error("migration failed", slog.String("error", msg))
		return errors.New(msg)
	}
	logger.Info("migrations complete", slog.String("direction", direction))
	return nil
}
