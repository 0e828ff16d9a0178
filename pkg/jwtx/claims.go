// Package jwtx signs, verifies, and decodes the portal's access tokens. The
// server signs with ephemeral Ed25519 keys; clients decode the embedded
// claims without verifying the signature (the server re-verifies on every
// protected call, so client-side verification would add nothing without also
// distributing keys).
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token TTL defaults for the portal.
const (
	// DefaultAccessTokenTTL keeps access tokens short-lived; the refresh flow
	// papers over the churn.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is how long a session can stay idle before the
	// user has to log in again.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Role is the closed set of portal roles carried in the token. Anything
// outside this set is rejected at parse time; there is no catch-all.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleFaculty Role = "FACULTY"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleFaculty:
		return Role(s), true
	default:
		return "", false
	}
}

// Valid reports whether the role is one of the known portal roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Identity is the user profile embedded in the token so the dashboard can
// render without a follow-up request.
type Identity struct {
	// UserID is the university-assigned identifier (e.g. employee number),
	// distinct from the subject which is the portal's own ULID.
	UserID string

	Name  string
	Email string
	Role  Role

	// FirstLogin is set until the user replaces the provisioned password.
	FirstLogin bool
}

// Claims is the payload embedded in every portal access token. Keep changes
// additive: the dashboard decodes these fields directly.
type Claims struct {
	jwt.RegisteredClaims

	// Role gates route access: ADMIN or FACULTY.
	Role Role `json:"role,omitempty"`

	// Name is the user's display name, shown in the dashboard header.
	Name string `json:"name,omitempty"`

	// UserID mirrors Identity.UserID.
	UserID string `json:"userId,omitempty"`

	// Email is the account's institutional address.
	Email string `json:"email,omitempty"`

	// FirstLogin is set until the user replaces the provisioned password.
	FirstLogin bool `json:"isFirstLogin,omitempty"`

	// SID identifies the login session; it survives token refreshes.
	SID string `json:"sid,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for a user session. The
// subject is the portal's internal user ID; identity is the profile the
// dashboard reads back out.
func NewAccessClaims(
	subject string,
	sid string,
	identity Identity,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:       identity.Role,
		Name:       identity.Name,
		UserID:     identity.UserID,
		Email:      identity.Email,
		FirstLogin: identity.FirstLogin,
		SID:        sid,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Identity re-derives the embedded profile from the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:     c.UserID,
		Name:       c.Name,
		Email:      c.Email,
		Role:       c.Role,
		FirstLogin: c.FirstLogin,
	}
}

// ExpiredAt reports whether the token is past its expiry at the given
// instant. A token without an exp claim is treated as expired: every token
// the portal mints carries one, so its absence means the token is not ours.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}

// ValidateIssuer checks the issuer when one is expected.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiredAt(now) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
