package auth

import (
	"context"

	"github.com/keja/keja/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// principalContextKey is the context key for the authenticated principal.
	principalContextKey contextKey = "principal"

	sessionTokenContextKey contextKey = "session_token"
)

// ContextWithPrincipal adds the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, ok := ctx.Value(principalContextKey).(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

// MustPrincipalFromContext retrieves the principal from the context.
// Panics if not present (use only behind RequireAuth).
func MustPrincipalFromContext(ctx context.Context) *model.Principal {
	p := PrincipalFromContext(ctx)
	if p == nil {
		panic("principal not found - ensure session middleware is applied")
	}
	return p
}

// UserIDFromContext returns the authenticated user ID, or 0 when anonymous.
func UserIDFromContext(ctx context.Context) int64 {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return 0
	}
	return p.UserID
}

// IsAuthenticated reports whether the context carries a principal.
func IsAuthenticated(ctx context.Context) bool {
	return PrincipalFromContext(ctx) != nil
}

// ContextWithSessionToken records the token the principal was resolved from.
func ContextWithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenContextKey, token)
}

// SessionTokenFromContext returns the resolved session token, or "".
func SessionTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenContextKey).(string)
	return token
}
