package auth

import (
	"context"

	"github.com/companyhub/companyhub/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// principalKey is the context key for storing the Principal.
	principalKey contextKey = "principal"
)

// ContextWithPrincipal adds the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil if not present.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, ok := ctx.Value(principalKey).(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

// MustPrincipalFromContext retrieves the principal from the context.
// Panics if not present (use only when auth middleware has run).
func MustPrincipalFromContext(ctx context.Context) *model.Principal {
	p := PrincipalFromContext(ctx)
	if p == nil {
		panic("principal not found - ensure auth middleware is applied")
	}
	return p
}

// UserIDFromContext returns the authenticated user id, or 0.
func UserIDFromContext(ctx context.Context) int64 {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return 0
	}
	return p.UserID
}
