package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSubject = "01J9ZX6P3WQD3VJ0T1R8KQ5H2M"

func testIdentity() Identity {
	return Identity{
		UserID:     "EMP-4021",
		Name:       "Dr. Asha Rao",
		Email:      "asha.rao@klu.edu",
		Role:       RoleFaculty,
		FirstLogin: false,
	}
}

func mintToken(t *testing.T, km *KeyManager, claims Claims) string {
	t.Helper()
	token, err := km.Signer().Sign(claims)
	require.NoError(t, err)
	return token
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager()
	require.NoError(t, err)

	claims := NewAccessClaims(testSubject, "sid-1", testIdentity(), DefaultAccessTokenTTL, "portal", []string{"portal-api"}, time.Now().UTC())
	token := mintToken(t, km, claims)

	v := NewVerifierEdDSA(km.KeySet(), VerifyOptions{Issuer: "portal", Audience: "portal-api"})
	got, err := v.Verify(token)
	require.NoError(t, err)

	require.Equal(t, testSubject, got.Subject)
	require.Equal(t, RoleFaculty, got.Role)
	require.Equal(t, "EMP-4021", got.UserID)
	require.Equal(t, "asha.rao@klu.edu", got.Email)
	require.Equal(t, "sid-1", got.SID)
	require.False(t, got.FirstLogin)
	require.NotEmpty(t, got.ID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager()
	require.NoError(t, err)

	claims := NewAccessClaims(testSubject, "sid-1", testIdentity(), time.Minute, "portal", nil, time.Now().UTC().Add(-time.Hour))
	token := mintToken(t, km, claims)

	v := NewVerifierEdDSA(km.KeySet(), VerifyOptions{})
	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager()
	require.NoError(t, err)

	claims := NewAccessClaims(testSubject, "sid-1", testIdentity(), time.Minute, "someone-else", []string{"other"}, time.Now().UTC())
	token := mintToken(t, km, claims)

	_, err = NewVerifierEdDSA(km.KeySet(), VerifyOptions{Issuer: "portal"}).Verify(token)
	require.ErrorIs(t, err, ErrIssuer)

	_, err = NewVerifierEdDSA(km.KeySet(), VerifyOptions{Audience: "portal-api"}).Verify(token)
	require.ErrorIs(t, err, ErrAudience)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	kmA, err := NewKeyManager()
	require.NoError(t, err)
	kmB, err := NewKeyManager()
	require.NoError(t, err)

	claims := NewAccessClaims(testSubject, "sid-1", testIdentity(), time.Minute, "portal", nil, time.Now().UTC())
	token := mintToken(t, kmA, claims)

	_, err = NewVerifierEdDSA(kmB.KeySet(), VerifyOptions{}).Verify(token)
	require.ErrorIs(t, err, ErrUnknownKID)
}

func TestRotateKeepsOldTokensVerifiable(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager()
	require.NoError(t, err)

	claims := NewAccessClaims(testSubject, "sid-1", testIdentity(), time.Minute, "portal", nil, time.Now().UTC())
	oldToken := mintToken(t, km, claims)
	oldKID := km.Signer().KID()

	require.NoError(t, km.Rotate())
	require.NotEqual(t, oldKID, km.Signer().KID())

	v := NewVerifierEdDSA(km.KeySet(), VerifyOptions{})
	_, err = v.Verify(oldToken)
	require.NoError(t, err)

	newToken := mintToken(t, km, claims)
	_, err = v.Verify(newToken)
	require.NoError(t, err)

	require.Len(t, km.JWKS().Keys, 2)
}

func TestDecodeUnverified(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager()
	require.NoError(t, err)

	claims := NewAccessClaims(testSubject, "sid-9", testIdentity(), time.Minute, "portal", nil, time.Now().UTC())
	token := mintToken(t, km, claims)

	got, err := DecodeUnverified(token)
	require.NoError(t, err)
	require.Equal(t, RoleFaculty, got.Role)
	require.Equal(t, "Dr. Asha Rao", got.Name)
	require.Equal(t, "sid-9", got.SID)
	require.Equal(t, testIdentity(), got.Identity())
	require.False(t, got.ExpiredAt(time.Now().UTC()))
}

func TestDecodeUnverifiedMalformed(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c", "!!.??.%%"} {
		_, err := DecodeUnverified(tok)
		require.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"ADMIN", "FACULTY"} {
		r, ok := ParseRole(s)
		require.True(t, ok)
		require.True(t, r.Valid())
	}
	for _, s := range []string{"", "admin", "STUDENT", "SUPERUSER"} {
		_, ok := ParseRole(s)
		require.False(t, ok, "role %q", s)
	}
}

func TestClaimsExpiryHelpers(t *testing.T) {
	t.Parallel()

	var c Claims
	require.True(t, c.ExpiredAt(time.Now()), "missing exp is treated as expired")

	claims := NewAccessClaims(testSubject, "sid", testIdentity(), time.Minute, "portal", nil, time.Now().UTC())
	require.NoError(t, claims.ValidateExpiry())
	require.NoError(t, claims.ValidateIssuer(""))
	require.ErrorIs(t, claims.ValidateIssuer("other"), ErrIssuer)
}
