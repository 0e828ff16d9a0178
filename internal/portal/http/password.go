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

// ChangePasswordHandler serves PUT /api/users/password. Requires a verified
// access token; the email in the body must match the authenticated user.
type ChangePasswordHandler struct {
	AuthService   *service.AuthService
	SecureCookies bool
}

// ServeHTTP godoc
//
//	@Summary		Change password
//	@Description	Replaces the caller's password after re-verifying the current one. Clears the first-login flag and revokes every refresh token the user holds, so all sessions (this one included) must log in again.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		portalsdk.ChangePasswordRequest	true	"email, currentPassword, newPassword"
//	@Success		200		{object}	portalsdk.MessageResponse
//	@Failure		400		{object}	httpx.ErrorBody	"malformed body or weak password"
//	@Failure		401		{object}	httpx.ErrorBody	"wrong current password or mismatched email"
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/api/users/password [put].
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromCtx(ctx)
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req portalsdk.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !strings.EqualFold(strings.TrimSpace(req.Email), claims.Email) {
		httpx.WriteError(w, r, http.StatusUnauthorized, "email does not match the authenticated user")
		return
	}

	err := h.AuthService.ChangePassword(ctx, claims.Subject, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, r, http.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, r, http.StatusBadRequest, "new password is too short")
		default:
			log.Error("password change failed", "err", err)
			httpx.WriteError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	// Every session was revoked, including this one.
	clearAuthCookies(w, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, portalsdk.MessageResponse{
		Message: "password updated, log in again",
	})
}
