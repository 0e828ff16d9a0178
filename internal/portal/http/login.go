package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/klu-crt/portal/internal/portal/service"
	"github.com/klu-crt/portal/pkg/httpx"
	"github.com/klu-crt/portal/pkg/portalsdk"
	"github.com/klu-crt/portal/pkg/slogx"
)

// LoginHandler serves POST /api/auth/login, the password step of the
// two-step login.
type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Login (password step)
//	@Description	Verifies the username/email and password. On success a 6-digit verification code is emailed; no token is issued until the code is redeemed at /api/auth/verify-otp.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalsdk.LoginRequest	true	"Login credentials"
//	@Success		200		{object}	portalsdk.LoginResponse	"message, user"
//	@Failure		400		{object}	httpx.ErrorBody			"malformed body"
//	@Failure		401		{object}	httpx.ErrorBody			"invalid username or password"
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req portalsdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	challenge, err := h.AuthService.Login(ctx, req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Uniform message whether the account exists or not.
			httpx.WriteError(w, r, http.StatusUnauthorized, "invalid username or password")
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, portalsdk.LoginResponse{
		Message: "verification code sent to " + challenge.Email,
		User:    sdkUser(challenge.User),
	})
}

// VerifyOTPHandler serves POST /api/auth/verify-otp, the code step of the
// two-step login. Success issues the token pair and mirrors it into cookies.
type VerifyOTPHandler struct {
	AuthService   *service.AuthService
	SecureCookies bool
}

// ServeHTTP godoc
//
//	@Summary		Verify OTP (code step)
//	@Description	Redeems the emailed 6-digit code. On success returns the access token, the single-use refresh token, and the user profile, and sets the auth-token and refresh-token cookies. Five failed attempts burn the challenge.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalsdk.VerifyOTPRequest	true	"Identifier and code"
//	@Success		200		{object}	portalsdk.TokenResponse		"message, token, refreshToken, user"
//	@Failure		400		{object}	httpx.ErrorBody				"malformed body"
//	@Failure		401		{object}	httpx.ErrorBody				"invalid or exhausted challenge"
//	@Failure		500		{object}	httpx.ErrorBody
//	@Header			200		{string}	Cache-Control				"no-store"
//	@Router			/api/auth/verify-otp [post].
func (h *VerifyOTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req portalsdk.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, u, err := h.AuthService.VerifyOTP(ctx, req.UsernameOrEmail, strings.TrimSpace(req.OTP))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOTP):
			httpx.WriteError(w, r, http.StatusUnauthorized, "invalid verification code")
		case errors.Is(err, service.ErrTooManyAttempts):
			httpx.WriteError(w, r, http.StatusUnauthorized, "too many failed attempts, log in again")
		case errors.Is(err, service.ErrInvalidChallenge):
			httpx.WriteError(w, r, http.StatusUnauthorized, "no active verification challenge, log in again")
		default:
			log.Error("otp verification failed", "err", err)
			httpx.WriteError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	setAuthCookies(w, pair, h.AuthService.RefreshTTL, h.SecureCookies)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, portalsdk.TokenResponse{
		Message:      "login successful",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         sdkUser(u),
	})
}

// ResendOTPHandler serves POST /api/auth/resend-otp. A resend advances the
// code, so the previously emailed one stops working.
type ResendOTPHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Resend OTP
//	@Description	Emails a fresh verification code for the open challenge. Throttled to one resend per minute; the previous code is invalidated.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalsdk.ResendOTPRequest	true	"Identifier"
//	@Success		200		{object}	portalsdk.MessageResponse
//	@Failure		400		{object}	httpx.ErrorBody	"malformed body"
//	@Failure		401		{object}	httpx.ErrorBody	"no open challenge"
//	@Failure		429		{object}	httpx.ErrorBody	"inside the resend cooldown"
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/api/auth/resend-otp [post].
func (h *ResendOTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req portalsdk.ResendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	challenge, err := h.AuthService.ResendOTP(ctx, req.UsernameOrEmail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResendCooldown):
			httpx.WriteError(w, r, http.StatusTooManyRequests, "please wait before requesting another code")
		case errors.Is(err, service.ErrInvalidChallenge):
			httpx.WriteError(w, r, http.StatusUnauthorized, "no active verification challenge, log in again")
		default:
			log.Error("otp resend failed", "err", err)
			httpx.WriteError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, portalsdk.MessageResponse{
		Message: "verification code resent to " + challenge.Email,
	})
}
