package auth

import (
	"context"
)

type contextKey int

const securityContextKey contextKey = iota

// WithSecurityContext returns a new context with sc attached.
func WithSecurityContext(ctx context.Context, sc *SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey, sc)
}

// SecurityContextFromContext retrieves the security context from ctx.
// Returns nil if none is present.
func SecurityContextFromContext(ctx context.Context) *SecurityContext {
	sc, _ := ctx.Value(securityContextKey).(*SecurityContext)
	return sc
}

// UserIDFromContext returns the user claim of the attached security context,
// or empty string if none is present.
func UserIDFromContext(ctx context.Context) string {
	return SecurityContextFromContext(ctx).UserID()
}
