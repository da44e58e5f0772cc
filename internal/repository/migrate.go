package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	// Registers the "postgres" database/sql driver used by goose.
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// migrationsFS contains the embedded SQL migration files.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Migration directions.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// ErrUnknownDirection is returned for an unsupported migrate command.
var ErrUnknownDirection = errors.New("unknown migration direction")

// Migrate runs goose against databaseURL. direction is one of MigrateUp,
// MigrateDown (one step) or MigrateStatus.
func Migrate(ctx context.Context, databaseURL, direction string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return MigrateDB(ctx, db, direction)
}

// MigrateDB runs goose on an open database handle.
func MigrateDB(ctx context.Context, db *sql.DB, direction string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	switch direction {
	case MigrateUp:
		if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
	case MigrateDown:
		if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
	case MigrateStatus:
		if err := goose.StatusContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}
	return nil
}
