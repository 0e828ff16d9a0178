package httpx

import (
	"net/http"

	"github.com/klu-crt/portal/pkg/jwtx"
)

// RequireRole lets the request through only when the authenticated role is
// one of those listed. Must run after AuthnMiddleware.
func RequireRole(allowed ...jwtx.Role) Middleware {
	want := make(map[jwtx.Role]struct{}, len(allowed))
	for _, role := range allowed {
		want[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromCtx(r.Context())
			if _, ok := want[role]; !ok {
				WriteError(w, r, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for the admin-only surface.
func RequireAdmin() Middleware {
	return RequireRole(jwtx.RoleAdmin)
}
