package http

import (
	"errors"
	"net/http"

	"github.com/klu-crt/portal/internal/portal/service"
	"github.com/klu-crt/portal/internal/portal/store"
	"github.com/klu-crt/portal/pkg/httpx"
	"github.com/klu-crt/portal/pkg/portalsdk"
	"github.com/klu-crt/portal/pkg/slogx"
)

// UserInfoHandler serves GET /api/userinfo. The profile is read from the
// database, not echoed from the token, so a password reset or role change
// shows up without waiting for the token to expire.
type UserInfoHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Current user profile
//	@Description	Returns the authenticated user's profile.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	portalsdk.UserInfoResponse	"user"
//	@Failure		401	{object}	httpx.ErrorBody
//	@Failure		500	{object}	httpx.ErrorBody
//	@Router			/api/userinfo [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		httpx.WriteError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	u, err := h.UserService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Token outlived the account.
			httpx.WriteError(w, r, http.StatusUnauthorized, "account no longer exists")
			return
		}
		log.Error("userinfo lookup failed", "err", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, portalsdk.UserInfoResponse{User: sdkUser(u)})
}
