// Package mail delivers the portal's transactional email: login codes and
// temporary passwords.
package mail

import "context"

// Mailer sends the portal's transactional messages. Implementations must be
// safe for concurrent use.
type Mailer interface {
	// SendOTPCode emails a 6-digit login code.
	SendOTPCode(ctx context.Context, to, name, code string) error

	// SendTemporaryPassword emails a freshly provisioned password after a
	// forgot-password request.
	SendTemporaryPassword(ctx context.Context, to, name, password string) error
}
