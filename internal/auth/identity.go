package auth

import (
	"context"

	"cquiz-service/internal/domain"
)

type ctxKey struct{}

var ctxKeyIdentity = ctxKey{}

// WithIdentity attaches the authenticated caller to ctx.
func WithIdentity(ctx context.Context, who domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, who)
}

// IdentityFromContext returns the caller attached by WithIdentity.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	who, ok := ctx.Value(ctxKeyIdentity).(domain.Identity)
	return who, ok
}

// Policy decides administrative access.
type Policy struct {
	AdminEmail string
}

// IsAdmin is an exact match of the identity's email against the admin address.
func (p Policy) IsAdmin(who domain.Identity) bool {
	return p.AdminEmail != "" && who.Email == p.AdminEmail
}
