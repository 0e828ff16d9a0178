package store

import (
	"context"
	"errors"
	"time"

	"github.com/klu-crt/portal/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to stop callers from accidentally nesting transactions.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	OTPChallenges() OTPChallenges

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step operations that must be atomic
	// (e.g., refresh token rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during the password step of login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used by the forgot-password flow.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// ClearFirstLogin marks the provisioned password as replaced.
	ClearFirstLogin(ctx context.Context, userID string) error

	// SetFirstLogin re-arms the flag after an administrative or
	// forgot-password reset hands out a temporary password.
	SetFirstLogin(ctx context.Context, userID string) error

	// DeleteUser cascades to refresh_tokens and otp_challenges (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users (seed check).
	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its SHA-256 fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1 and sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (password reset).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	// RevokeSessionRefreshTokens revokes every live token minted under one
	// session id (logout). Revoking an unknown session is not an error.
	RevokeSessionRefreshTokens(ctx context.Context, sessionID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type OTPChallenges interface {
	// CreateOTPChallenge stores a fresh login challenge.
	CreateOTPChallenge(ctx context.Context, c domain.OTPChallenge) error

	// GetOTPChallenge retrieves a challenge by its ULID token.
	GetOTPChallenge(ctx context.Context, id string) (domain.OTPChallenge, error)

	// GetOTPChallengeByUserID retrieves the open challenge for a user. At
	// most one exists; login replaces any prior challenge.
	GetOTPChallengeByUserID(ctx context.Context, userID string) (domain.OTPChallenge, error)

	// DeleteUserOTPChallenges drops every challenge a user has open, used by
	// login before issuing a fresh one.
	DeleteUserOTPChallenges(ctx context.Context, userID string) error

	// IncrementOTPAttempts bumps the failed attempt counter and returns the
	// updated challenge.
	IncrementOTPAttempts(ctx context.Context, id string) (domain.OTPChallenge, error)

	// BumpOTPCounter advances the HOTP counter on resend, invalidating any
	// previously emailed code, and pushes out the resend cooldown. Returns
	// the updated challenge so the caller can derive the new code.
	BumpOTPCounter(ctx context.Context, id string, resendAt time.Time) (domain.OTPChallenge, error)

	// DeleteOTPChallenge removes a challenge (redeemed or abandoned).
	DeleteOTPChallenge(ctx context.Context, id string) error

	// DeleteExpiredOTPChallenges is housekeeping.
	DeleteExpiredOTPChallenges(ctx context.Context) error
}
