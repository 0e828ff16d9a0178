package httpx

import (
	"context"

	"github.com/klu-crt/portal/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRole   ctxKey = "role"
	CtxKeyClaims ctxKey = "claims"
)

// UserIDFromCtx returns the authenticated subject, or "" when the request
// did not pass through AuthnMiddleware.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// RoleFromCtx returns the authenticated role, or "" when unauthenticated.
func RoleFromCtx(ctx context.Context) jwtx.Role {
	if v, ok := ctx.Value(CtxKeyRole).(jwtx.Role); ok {
		return v
	}
	return ""
}

// ClaimsFromCtx returns the full verified claims for handlers that need more
// than the subject and role.
func ClaimsFromCtx(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}
