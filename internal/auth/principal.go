// Package auth issues and verifies the signed tokens PawBook relies on:
// bearer access tokens for API callers and vaccine QR tokens that owners hand
// to vets. It also hashes passwords and carries the authenticated Principal
// through request contexts.
package auth

import (
	"context"
	"strings"

	"github.com/apisada-prim/pawbook/internal/domain"
)

// Principal is the authenticated caller of a service operation.
type Principal struct {
	UserID string
	Email  string
	Role   domain.Role
}

// Anonymous reports whether p carries no identity.
func (p Principal) Anonymous() bool { return strings.TrimSpace(p.UserID) == "" }

type ctxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	if !ok || p.Anonymous() {
		return Principal{}, false
	}
	return p, true
}
