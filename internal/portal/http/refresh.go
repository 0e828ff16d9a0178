package http

import (
	"errors"
	"net/http"

	"github.com/klu-crt/portal/internal/portal/service"
	"github.com/klu-crt/portal/pkg/httpx"
	"github.com/klu-crt/portal/pkg/jwtx"
	"github.com/klu-crt/portal/pkg/portalsdk"
	"github.com/klu-crt/portal/pkg/slogx"
)

// RefreshHandler serves POST /api/auth/refresh-token. The bearer credential
// is the refresh token, not an access token; the body is empty.
type RefreshHandler struct {
	AuthService   *service.AuthService
	SecureCookies bool
}

// ServeHTTP godoc
//
//	@Summary		Refresh tokens
//	@Description	Rotates the token pair. The presented refresh token is single-use: it is revoked whether or not a new pair is issued, and a 401 here is terminal: the client must log in again.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	portalsdk.TokenResponse	"message, token, refreshToken, user"
//	@Failure		401	{object}	httpx.ErrorBody			"invalid refresh token"
//	@Failure		500	{object}	httpx.ErrorBody
//	@Header			200	{string}	Cache-Control			"no-store"
//	@Router			/api/auth/refresh-token [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	refresh, ok := httpx.BearerToken(r)
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "missing refresh token")
		return
	}

	pair, u, err := h.AuthService.Refresh(ctx, refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			clearAuthCookies(w, h.SecureCookies)
			httpx.WriteError(w, r, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		log.Error("token refresh failed", "err", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	setAuthCookies(w, pair, h.AuthService.RefreshTTL, h.SecureCookies)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, portalsdk.TokenResponse{
		Message:      "token refreshed",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         sdkUser(u),
	})
}

// LogoutHandler serves POST /api/auth/logout. The bearer credential is the
// access token; revocation is keyed by its session claim.
type LogoutHandler struct {
	AuthService   *service.AuthService
	Verifier      jwtx.Verifier
	SecureCookies bool
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Revokes every refresh token in the caller's session and expires the auth cookies. Best-effort: an expired access token still logs out, and the cookies are expired no matter what.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	portalsdk.MessageResponse
//	@Router			/api/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if token, ok := httpx.BearerToken(r); ok {
		if sid := h.sessionID(token); sid != "" {
			if err := h.AuthService.Logout(ctx, sid); err != nil {
				log.Error("logout revocation failed", "err", err)
			}
		}
	}

	// The cookies expire regardless of what the token looked like.
	clearAuthCookies(w, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, portalsdk.MessageResponse{Message: "logged out"})
}

// sessionID extracts a trustworthy session claim from the token. An expired
// token is still good for logging out, but the signature must check out so a
// forged token can't revoke someone else's session.
func (h *LogoutHandler) sessionID(token string) string {
	claims, err := h.Verifier.Verify(token)
	if err == nil {
		return claims.SID
	}
	if errors.Is(err, jwtx.ErrExpired) {
		if claims, derr := jwtx.DecodeUnverified(token); derr == nil {
			return claims.SID
		}
	}
	return ""
}

// ForgotPasswordHandler serves POST /api/auth/forgot-password?email=...
type ForgotPasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Forgot password
//	@Description	Emails a temporary password and revokes every session the account holds. Always answers 200, whether or not the address is registered.
//	@Tags			Auth
//	@Produce		json
//	@Param			email	query		string	true	"Account email address"
//	@Success		200		{object}	portalsdk.MessageResponse
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/api/auth/forgot-password [post].
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	email := r.URL.Query().Get("email")

	if err := h.AuthService.ForgotPassword(ctx, email); err != nil {
		log.Error("forgot password failed", "err", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, portalsdk.MessageResponse{
		Message: "if the address is registered, a temporary password has been emailed",
	})
}
