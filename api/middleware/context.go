package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/breezepoint/breezepoint-backend/pkg/enums"
)

// Principal is the authenticated caller as read from a verified access token.
type Principal struct {
	UserID     uuid.UUID
	Role       enums.MemberRole
	SupplierID *uuid.UUID
}

type principalKey struct{}

// WithPrincipal stores p on ctx. Handlers below Auth read it back with
// PrincipalFromContext.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// scopeKey is the caller part of idempotency and audit keys. Anonymous
// callers share the empty scope.
func (p Principal) scopeKey() string {
	if p.UserID == uuid.Nil {
		return ""
	}
	if p.SupplierID == nil {
		return p.UserID.String()
	}
	return p.UserID.String() + "/" + p.SupplierID.String()
}
