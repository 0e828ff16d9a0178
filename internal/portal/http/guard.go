package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/klu-crt/portal/pkg/httpx"
	"github.com/klu-crt/portal/pkg/jwtx"
	"github.com/klu-crt/portal/pkg/slogx"
)

// pageRoles maps guarded path prefixes to the roles allowed under them. The
// longest matching prefix wins, so /dashboard/admin is checked against
// {ADMIN} even though /dashboard also matches.
var pageRoles = map[string][]jwtx.Role{
	"/dashboard":         {jwtx.RoleAdmin, jwtx.RoleFaculty},
	"/dashboard/admin":   {jwtx.RoleAdmin},
	"/dashboard/faculty": {jwtx.RoleFaculty},
}

// publicPages are reachable without a session: the login page, the reset
// page, and the page the guard itself redirects to. Everything not covered
// by pageRoles (static assets included) also passes through.
var publicPages = map[string]struct{}{
	"/":                {},
	"/forgot-password": {},
	"/unauthorized":    {},
}

// RouteGuard gates the page surface on the auth-token cookie. It runs at the
// edge, before any page renders: no valid cookie on a guarded path sends the
// browser to the login page with the original path in ?from=, and a valid
// cookie with the wrong role sends it to /unauthorized.
//
// The API surface is NOT guarded here; it authenticates per-request via the
// Authorization header.
type RouteGuard struct {
	Verifier jwtx.Verifier
}

// Middleware wraps a page handler with the guard.
func (g *RouteGuard) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, guarded := g.rolesFor(r.URL.Path)
			if !guarded {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := g.claimsFromCookie(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}

			if !roleAllowed(claims.Role, allowed) {
				slogx.FromContext(r.Context()).Info("page access denied",
					"path", r.URL.Path, "role", string(claims.Role))
				http.Redirect(w, r, "/unauthorized", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithIdentity(r.Context(), claims)))
		})
	}
}

// rolesFor returns the role set for the longest guarded prefix covering the
// path, or guarded=false for public pages and assets.
func (g *RouteGuard) rolesFor(path string) (allowed []jwtx.Role, guarded bool) {
	if _, public := publicPages[path]; public {
		return nil, false
	}

	best := ""
	for prefix, roles := range pageRoles {
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			continue
		}
		if len(prefix) > len(best) {
			best = prefix
			allowed = roles
		}
	}
	return allowed, best != ""
}

// claimsFromCookie verifies the auth-token cookie. An expired, malformed, or
// absent cookie all read as "not logged in".
func (g *RouteGuard) claimsFromCookie(r *http.Request) (jwtx.Claims, bool) {
	cookie, err := r.Cookie(authCookieName)
	if err != nil || cookie.Value == "" {
		return jwtx.Claims{}, false
	}
	claims, err := g.Verifier.Verify(cookie.Value)
	if err != nil {
		return jwtx.Claims{}, false
	}
	return claims, true
}

func roleAllowed(role jwtx.Role, allowed []jwtx.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// redirectToLogin sends the browser to the login page, carrying the original
// path so it can bounce back after authentication.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/?from=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// contextWithIdentity exposes the verified cookie identity to the page
// handler the same way the API authn middleware does.
func contextWithIdentity(ctx context.Context, claims jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, httpx.CtxKeyUserID, claims.Subject)
	ctx = context.WithValue(ctx, httpx.CtxKeyRole, claims.Role)
	return context.WithValue(ctx, httpx.CtxKeyClaims, claims)
}
