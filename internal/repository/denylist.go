package repository

import (
	"context"
	"fmt"
	"time"
)

// DenyToken records a revoked token id until its expiry.
// Revoking the same token twice is not an error.
func (r *Repository) DenyToken(ctx context.Context, jti string, exp time.Time) error {
	query := `
		INSERT INTO jwt_denylist (jti, exp)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, jti, exp); err != nil {
		return fmt.Errorf("failed to deny token: %w", err)
	}
	return nil
}

// IsTokenDenied reports whether the token id has been revoked.
func (r *Repository) IsTokenDenied(ctx context.Context, jti string) (bool, error) {
	var denied bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jwt_denylist WHERE jti = $1)`, jti).Scan(&denied)
	if err != nil {
		return false, fmt.Errorf("failed to check token denylist: %w", err)
	}
	return denied, nil
}

// PruneDenylist deletes entries that expired before now and returns how
// many were removed.
func (r *Repository) PruneDenylist(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jwt_denylist WHERE exp < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to prune token denylist: %w", err)
	}
	return tag.RowsAffected(), nil
}
