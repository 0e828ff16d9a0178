package jwtx

import "errors"

// Verification errors. Handlers map all of these to 401; the distinction is
// for logs and tests.
var (
	ErrMalformed      = errors.New("jwtx: malformed token")
	ErrSignature      = errors.New("jwtx: signature verification failed")
	ErrExpired        = errors.New("jwtx: token expired")
	ErrNotYetValid    = errors.New("jwtx: token not yet valid")
	ErrIssuer         = errors.New("jwtx: unexpected issuer")
	ErrAudience       = errors.New("jwtx: unexpected audience")
	ErrUnknownKID     = errors.New("jwtx: unknown key id")
	ErrUnsupportedAlg = errors.New("jwtx: unsupported signing algorithm")
)

// Verifier checks token signatures and registered claims server-side.
type Verifier interface {
	// Verify parses and validates a compact JWT and returns its claims.
	Verify(token string) (Claims, error)
}

// VerifyOptions tune registered-claim validation.
type VerifyOptions struct {
	// Issuer, when non-empty, must match the token's iss claim.
	Issuer string

	// Audience, when non-empty, must appear in the token's aud claim.
	Audience string
}
