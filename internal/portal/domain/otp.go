package domain

import "time"

// OTP challenge limits.
const (
	// OTPMaxAttempts is the verification attempt budget before the
	// challenge is burned and the user must log in again.
	OTPMaxAttempts = 5

	// OTPResendCooldown throttles how often a new code can be emailed for
	// the same challenge.
	OTPResendCooldown = 60 * time.Second

	// OTPChallengeTTL is how long a login challenge stays redeemable.
	OTPChallengeTTL = 5 * time.Minute
)

// OTPChallenge is a pending second factor for a password-verified login.
// The challenge ID is the opaque token the client holds between the login
// and verify steps; the HOTP secret and counter stay server-side.
type OTPChallenge struct {
	ID        string // ULID (the challenge token)
	UserID    string
	Secret    string // base32 HOTP secret, per-challenge
	Counter   uint64 // bumped on every resend, invalidating prior codes
	Attempts  int    // failed verification attempts
	ResendAt  time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the challenge can no longer be redeemed.
func (c OTPChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Exhausted reports whether the attempt budget is spent.
func (c OTPChallenge) Exhausted() bool {
	return c.Attempts >= OTPMaxAttempts
}

// CanResend reports whether the cooldown window has elapsed.
func (c OTPChallenge) CanResend(now time.Time) bool {
	return !now.Before(c.ResendAt)
}
