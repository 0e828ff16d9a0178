package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klu-crt/portal/pkg/jwtx"
)

// newGuardedPages wires a recording page handler behind the route guard so
// tests can tell a rendered page from a redirect.
func newGuardedPages(t *testing.T) (http.Handler, *jwtx.KeyManager) {
	t.Helper()

	km, err := jwtx.NewKeyManager()
	require.NoError(t, err)

	verifier := jwtx.NewVerifierEdDSA(km.KeySet(), jwtx.VerifyOptions{
		Issuer:   "portal-test",
		Audience: "portal-api",
	})

	pages := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("page " + r.URL.Path))
	})

	guard := &RouteGuard{Verifier: verifier}
	return guard.Middleware()(pages), km
}

func mintPageToken(t *testing.T, km *jwtx.KeyManager, role jwtx.Role, ttl time.Duration) string {
	t.Helper()

	claims := jwtx.NewAccessClaims(
		"user-1",
		"session-1",
		jwtx.Identity{UserID: "EMP-1", Name: "Test User", Email: "user@klu.edu", Role: role},
		ttl,
		"portal-test",
		[]string{"portal-api"},
		time.Now(),
	)
	token, err := km.Signer().Sign(claims)
	require.NoError(t, err)
	return token
}

func getPage(handler http.Handler, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "auth-token", Value: cookie})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGuardRedirectsAnonymousToLogin(t *testing.T) {
	handler, _ := newGuardedPages(t)

	rec := getPage(handler, "/dashboard", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?from=%2Fdashboard", rec.Header().Get("Location"))
}

func TestGuardPreservesQueryInFrom(t *testing.T) {
	handler, _ := newGuardedPages(t)

	rec := getPage(handler, "/dashboard/admin/users?page=2", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?from=%2Fdashboard%2Fadmin%2Fusers%3Fpage%3D2", rec.Header().Get("Location"))
}

func TestGuardExpiredCookieReadsAsLoggedOut(t *testing.T) {
	handler, km := newGuardedPages(t)
	token := mintPageToken(t, km, jwtx.RoleAdmin, -time.Minute)

	rec := getPage(handler, "/dashboard", token)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?from=%2Fdashboard", rec.Header().Get("Location"))
}

func TestGuardGarbageCookieReadsAsLoggedOut(t *testing.T) {
	handler, _ := newGuardedPages(t)

	rec := getPage(handler, "/dashboard", "not-a-jwt")
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestGuardWrongRoleGoesToUnauthorized(t *testing.T) {
	handler, km := newGuardedPages(t)
	token := mintPageToken(t, km, jwtx.RoleFaculty, time.Minute)

	// Logged in but not allowed: unauthorized, not the login page.
	rec := getPage(handler, "/dashboard/admin", token)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))

	rec = getPage(handler, "/dashboard/faculty", mintPageToken(t, km, jwtx.RoleAdmin, time.Minute))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
}

func TestGuardLongestPrefixWins(t *testing.T) {
	handler, km := newGuardedPages(t)
	faculty := mintPageToken(t, km, jwtx.RoleFaculty, time.Minute)

	// /dashboard admits FACULTY, /dashboard/admin does not; the nested rule
	// must win even though both prefixes match.
	rec := getPage(handler, "/dashboard", faculty)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = getPage(handler, "/dashboard/admin/reports", faculty)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
}

func TestGuardAllowsMatchingRole(t *testing.T) {
	handler, km := newGuardedPages(t)

	rec := getPage(handler, "/dashboard/admin", mintPageToken(t, km, jwtx.RoleAdmin, time.Minute))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page /dashboard/admin", rec.Body.String())

	rec = getPage(handler, "/dashboard/faculty", mintPageToken(t, km, jwtx.RoleFaculty, time.Minute))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardPublicPagesPassWithoutCookie(t *testing.T) {
	handler, _ := newGuardedPages(t)

	for _, path := range []string{"/", "/forgot-password", "/unauthorized"} {
		rec := getPage(handler, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGuardUnmatchedPathsPassThrough(t *testing.T) {
	handler, _ := newGuardedPages(t)

	// Static assets and pages outside the rule table are not gated here.
	for _, path := range []string{"/assets/app.css", "/favicon.ico", "/about"} {
		rec := getPage(handler, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	// Similar-looking prefixes are not the guarded prefix.
	rec := getPage(handler, "/dashboards", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
