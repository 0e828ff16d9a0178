package http

import (
	"errors"
	"net/http"

	"github.com/klu-crt/portal/internal/portal/service"
	"github.com/klu-crt/portal/pkg/httpx"
	"github.com/klu-crt/portal/pkg/portalsdk"
	"github.com/klu-crt/portal/pkg/slogx"
)

// DevLoginHandler serves POST /api/auth/dev-login, which mints a session for
// any existing user without the password or OTP steps. The route only exists
// when the dev bypass is enabled AND the environment is not production; the
// production login flow never branches on it.
type DevLoginHandler struct {
	AuthService   *service.AuthService
	SecureCookies bool
}

func (h *DevLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req portalsdk.ResendOTPRequest // just {usernameOrEmail}
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, u, err := h.AuthService.DevLogin(ctx, req.UsernameOrEmail)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, r, http.StatusUnauthorized, "unknown user")
			return
		}
		log.Error("dev login failed", "err", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	setAuthCookies(w, pair, h.AuthService.RefreshTTL, h.SecureCookies)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, portalsdk.TokenResponse{
		Message:      "dev login successful",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         sdkUser(u),
	})
}
