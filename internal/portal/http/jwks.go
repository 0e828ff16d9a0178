package http

import (
	"net/http"

	"github.com/klu-crt/portal/pkg/httpx"
	"github.com/klu-crt/portal/pkg/jwtx"
)

// JWKSHandler exposes the verification keys for public key discovery, so
// other services can check portal-issued tokens without calling back.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify portal-issued JWTs. Rotated-out keys remain until tokens signed under them have expired.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(km *jwtx.KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, km.JWKS())
	}
}
