package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// DecodeUnverified parses a token's claims WITHOUT checking the signature.
//
// This is the client-side codec: the dashboard and SDK only need the embedded
// role/identity/expiry to render and route, and every protected API call is
// re-verified server-side. Do not use this anywhere a forged token could
// grant access.
//
// Returns ErrMalformed for anything that is not structurally a signed token.
func DecodeUnverified(token string) (Claims, error) {
	parser := jwt.NewParser()

	var claims Claims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, ErrMalformed
	}
	return claims, nil
}
