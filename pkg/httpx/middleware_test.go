package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/klu-crt/portal/pkg/httpx"
	"github.com/klu-crt/portal/pkg/jwtx"
)

func newTestKeyManager(t *testing.T) *jwtx.KeyManager {
	t.Helper()
	km, err := jwtx.NewKeyManager()
	require.NoError(t, err)
	return km
}

func mintToken(t *testing.T, km *jwtx.KeyManager, role jwtx.Role, ttl time.Duration) string {
	t.Helper()
	claims := jwtx.NewAccessClaims("user-1", "sid-1", jwtx.Identity{
		UserID: "EMP-1",
		Name:   "Test User",
		Email:  "test@klu.edu",
		Role:   role,
	}, ttl, "portal", nil, time.Now().UTC())

	token, err := km.Signer().Sign(claims)
	require.NoError(t, err)
	return token
}

func echoSubject() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(httpx.UserIDFromCtx(r.Context())))
	})
}

func TestAuthnMiddleware(t *testing.T) {
	km := newTestKeyManager(t)
	verifier := jwtx.NewVerifierEdDSA(km.KeySet(), jwtx.VerifyOptions{Issuer: "portal"})
	handler := httpx.Chain(echoSubject(), httpx.AuthnMiddleware(verifier))

	t.Run("valid token passes claims through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/userinfo", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, km, jwtx.RoleFaculty, time.Minute))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("missing header is 401 with envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/userinfo", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")

		var body httpx.ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, http.StatusUnauthorized, body.Status)
		require.Equal(t, "/api/userinfo", body.Path)
		require.False(t, body.Timestamp.IsZero())
	})

	t.Run("expired token is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/userinfo", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, km, jwtx.RoleFaculty, -time.Minute))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/userinfo", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	km := newTestKeyManager(t)
	verifier := jwtx.NewVerifierEdDSA(km.KeySet(), jwtx.VerifyOptions{})

	adminOnly := httpx.Chain(echoSubject(),
		httpx.AuthnMiddleware(verifier),
		httpx.RequireAdmin(),
	)
	staff := httpx.Chain(echoSubject(),
		httpx.AuthnMiddleware(verifier),
		httpx.RequireRole(jwtx.RoleAdmin, jwtx.RoleFaculty),
	)

	t.Run("admin reaches admin-only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, km, jwtx.RoleAdmin, time.Minute))
		rec := httptest.NewRecorder()

		adminOnly.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("faculty blocked from admin-only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, km, jwtx.RoleFaculty, time.Minute))
		rec := httptest.NewRecorder()

		adminOnly.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("faculty allowed on shared surface", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/shared", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, km, jwtx.RoleFaculty, time.Minute))
		rec := httptest.NewRecorder()

		staff.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mark("first"), mark("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"first", "second"}, order)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := httpx.BearerToken(req)
	require.False(t, ok)

	req.Header.Set("Authorization", "Basic abc")
	_, ok = httpx.BearerToken(req)
	require.False(t, ok)

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, ok := httpx.BearerToken(req)
	require.True(t, ok)
	require.Equal(t, "abc.def.ghi", token)
}
