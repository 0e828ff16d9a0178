package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// The portal emails 6-digit login codes. Each OTP challenge carries its own
// HOTP secret and counter: the code is derived from (secret, counter), so a
// resend bumps the counter and the previously emailed code stops validating.
const otpSecretBytes = 20

var otpOpts = hotp.ValidateOpts{
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateOTPSecret returns a fresh base32-encoded HOTP secret for one login
// or password-reset challenge.
func GenerateOTPSecret() (string, error) {
	raw := make([]byte, otpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate OTP secret: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw), nil
}

// OTPCode derives the 6-digit code for the challenge secret at the given
// counter. The same call produces the code that is emailed and the code the
// verification step compares against.
func OTPCode(secret string, counter uint64) (string, error) {
	code, err := hotp.GenerateCodeCustom(secret, counter, otpOpts)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to derive OTP code: %w", err)
	}
	return code, nil
}

// ValidateOTPCode reports whether the submitted code matches the challenge
// secret at the given counter.
func ValidateOTPCode(code, secret string, counter uint64) bool {
	ok, err := hotp.ValidateCustom(code, counter, secret, otpOpts)
	return err == nil && ok
}
