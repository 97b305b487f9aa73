package common

import (
	"context"
)

// AdminClaims identifies the caller of a request that presented a valid
// bearer token. Requests without a token carry no claims.
type AdminClaims struct {
	Subject string
	Role    string
	TokenID string
}

// IsAdmin reports whether the claims grant moderation rights.
func (c *AdminClaims) IsAdmin() bool {
	return c != nil && c.Role == "admin"
}

type contextKey int

const adminClaimsKey contextKey = iota

// WithAdminClaims stores the verified token claims in the request context.
func WithAdminClaims(ctx context.Context, claims *AdminClaims) context.Context {
	return context.WithValue(ctx, adminClaimsKey, claims)
}

// AdminClaimsFromContext retrieves the claims from context, or nil if absent.
func AdminClaimsFromContext(ctx context.Context) *AdminClaims {
	c, _ := ctx.Value(adminClaimsKey).(*AdminClaims)
	return c
}

// IsAdminRequest returns true when the context carries admin claims.
func IsAdminRequest(ctx context.Context) bool {
	return AdminClaimsFromContext(ctx).IsAdmin()
}
