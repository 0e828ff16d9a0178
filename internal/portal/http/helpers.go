package http

import (
	"encoding/json"
	"net/http"

	"github.com/klu-crt/portal/internal/portal/domain"
	"github.com/klu-crt/portal/pkg/httpx"
	"github.com/klu-crt/portal/pkg/portalsdk"
)

const maxBodyBytes = 1 << 20

// decodeJSON parses the request body into dst. On failure the 400 has
// already been written and the handler should just return.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

// sdkUser converts a domain user to the wire representation. The password
// hash never leaves this package.
func sdkUser(u domain.User) portalsdk.User {
	return portalsdk.User{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		FirstLogin: u.FirstLogin,
	}
}
