package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/klu-crt/portal/internal/portal/domain"
	"github.com/klu-crt/portal/internal/portal/mail"
	"github.com/klu-crt/portal/internal/portal/store"
	"github.com/klu-crt/portal/pkg/cryptox"
	"github.com/klu-crt/portal/pkg/idx"
	"github.com/klu-crt/portal/pkg/jwtx"
	"github.com/klu-crt/portal/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidChallenge   = errors.New("invalid_challenge")
	ErrInvalidOTP         = errors.New("invalid_otp")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
	ErrResendCooldown     = errors.New("resend_cooldown")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// LoginChallenge is what a successful password check returns. The code itself
// is only ever emailed; the challenge is keyed by the user, so the client
// presents the same usernameOrEmail again at the verify step.
type LoginChallenge struct {
	User      domain.User
	Email     string // masked, for the "code sent to a***@klu.edu" hint
	ResendAt  time.Time
	ExpiresAt time.Time
}

// AuthService implements the two-step login, token refresh rotation, and
// password lifecycle.
type AuthService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Mailer     mail.Mailer
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// findUser resolves the login identifier, which may be a username or an
// email address.
func (s *AuthService) findUser(ctx context.Context, usernameOrEmail string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, usernameOrEmail)
	if errors.Is(err, store.ErrNotFound) && strings.Contains(usernameOrEmail, "@") {
		return s.Store.Users().GetUserByEmail(ctx, usernameOrEmail)
	}
	return u, err
}

// Login is step one: verify the password and open an OTP challenge. The
// 6-digit code is emailed. Any challenge the user already had open is
// replaced.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*LoginChallenge, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	usernameOrEmail = strings.TrimSpace(usernameOrEmail)
	if usernameOrEmail == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.findUser(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same work as a real check so the response time
			// doesn't reveal whether the account exists.
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", slog.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	secret, err := cryptox.GenerateOTPSecret()
	if err != nil {
		return nil, err
	}

	challenge := domain.OTPChallenge{
		ID:        idx.New().String(),
		UserID:    u.ID,
		Secret:    secret,
		Counter:   0,
		ResendAt:  now.Add(domain.OTPResendCooldown),
		ExpiresAt: now.Add(domain.OTPChallengeTTL),
	}
	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OTPChallenges().DeleteUserOTPChallenges(ctx, u.ID); err != nil {
			return err
		}
		return tx.OTPChallenges().CreateOTPChallenge(ctx, challenge)
	}); err != nil {
		return nil, err
	}

	code, err := cryptox.OTPCode(secret, challenge.Counter)
	if err != nil {
		return nil, err
	}
	if err := s.Mailer.SendOTPCode(ctx, u.Email, u.Name, code); err != nil {
		l.Error("failed to email otp code", slog.Any("error", err), slog.String("user_id", u.ID))
		// The challenge row is useless without the code; drop it.
		_ = s.Store.OTPChallenges().DeleteOTPChallenge(ctx, challenge.ID)
		return nil, err
	}

	l.Info("login challenge issued", slog.String("user_id", u.ID))

	return &LoginChallenge{
		User:      u,
		Email:     maskEmail(u.Email),
		ResendAt:  challenge.ResendAt,
		ExpiresAt: challenge.ExpiresAt,
	}, nil
}

// VerifyOTP is step two: redeem the user's open challenge with the emailed
// code. On success the challenge is consumed and a token pair is issued; the
// refresh token row and the challenge deletion commit atomically.
func (s *AuthService) VerifyOTP(ctx context.Context, usernameOrEmail, code string) (*domain.TokenPair, domain.User, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	u, err := s.findUser(ctx, strings.TrimSpace(usernameOrEmail))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.User{}, ErrInvalidChallenge
		}
		return nil, domain.User{}, err
	}

	challenge, err := s.Store.OTPChallenges().GetOTPChallengeByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.User{}, ErrInvalidChallenge
		}
		return nil, domain.User{}, err
	}

	if challenge.Expired(now) {
		_ = s.Store.OTPChallenges().DeleteOTPChallenge(ctx, challenge.ID)
		return nil, domain.User{}, ErrInvalidChallenge
	}

	if challenge.Exhausted() {
		_ = s.Store.OTPChallenges().DeleteOTPChallenge(ctx, challenge.ID)
		l.Warn("otp challenge exceeded max attempts",
			slog.String("user_id", u.ID), slog.Int("attempts", challenge.Attempts))
		return nil, domain.User{}, ErrTooManyAttempts
	}

	if !cryptox.ValidateOTPCode(code, challenge.Secret, challenge.Counter) {
		updated, err := s.Store.OTPChallenges().IncrementOTPAttempts(ctx, challenge.ID)
		if err != nil {
			l.Error("failed to increment otp attempts", slog.Any("error", err))
			return nil, domain.User{}, ErrInvalidOTP
		}
		if updated.Exhausted() {
			_ = s.Store.OTPChallenges().DeleteOTPChallenge(ctx, challenge.ID)
			return nil, domain.User{}, ErrTooManyAttempts
		}
		return nil, domain.User{}, ErrInvalidOTP
	}

	sessionID := idx.New().String()

	accessToken, err := s.signAccess(u, sessionID, now)
	if err != nil {
		return nil, domain.User{}, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, domain.User{}, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		SessionID: sessionID,
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
			return err
		}
		return tx.OTPChallenges().DeleteOTPChallenge(ctx, challenge.ID)
	}); err != nil {
		return nil, domain.User{}, err
	}

	l.Info("login completed", slog.String("user_id", u.ID), slog.String("session_id", sessionID))

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, u, nil
}

// ResendOTP advances the HOTP counter and emails a fresh code, invalidating
// the previous one. Throttled by the challenge's resend cooldown.
func (s *AuthService) ResendOTP(ctx context.Context, usernameOrEmail string) (*LoginChallenge, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	u, err := s.findUser(ctx, strings.TrimSpace(usernameOrEmail))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidChallenge
		}
		return nil, err
	}

	challenge, err := s.Store.OTPChallenges().GetOTPChallengeByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidChallenge
		}
		return nil, err
	}

	if challenge.Expired(now) || challenge.Exhausted() {
		return nil, ErrInvalidChallenge
	}
	if !challenge.CanResend(now) {
		return nil, ErrResendCooldown
	}

	updated, err := s.Store.OTPChallenges().BumpOTPCounter(ctx, challenge.ID, now.Add(domain.OTPResendCooldown))
	if err != nil {
		return nil, err
	}

	code, err := cryptox.OTPCode(updated.Secret, updated.Counter)
	if err != nil {
		return nil, err
	}
	if err := s.Mailer.SendOTPCode(ctx, u.Email, u.Name, code); err != nil {
		l.Error("failed to email otp code", slog.Any("error", err), slog.String("user_id", u.ID))
		return nil, err
	}

	return &LoginChallenge{
		User:      u,
		Email:     maskEmail(u.Email),
		ResendAt:  updated.ResendAt,
		ExpiresAt: updated.ExpiresAt,
	}, nil
}

// Refresh rotates the refresh token: validate by fingerprint, revoke the old
// row and create the new one in a single transaction, and issue a fresh
// access token. The session ID survives the rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, domain.User, error) {
	now := time.Now().UTC()

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.User{}, ErrInvalidRefresh
		}
		return nil, domain.User{}, err
	}

	// The query could filter these, but double-check for defence in depth.
	if rt.Revoked || now.After(rt.ExpiresAt) {
		return nil, domain.User{}, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.User{}, ErrInvalidRefresh
		}
		return nil, domain.User{}, err
	}

	accessToken, err := s.signAccess(u, rt.SessionID, now)
	if err != nil {
		return nil, domain.User{}, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, domain.User{}, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		SessionID: rt.SessionID, // session survives rotation
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, domain.User{}, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, u, nil
}

// Logout revokes every refresh token minted under the session. Logging out a
// session that holds no live tokens is not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.Store.RefreshTokens().RevokeSessionRefreshTokens(ctx, sessionID)
}

func (s *AuthService) signAccess(u domain.User, sessionID string, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		u.ID,
		sessionID,
		u.Identity(),
		s.AccessTTL,
		s.Issuer,
		[]string{s.Audience},
		now,
	)
	return s.KeyManager.Signer().Sign(claims)
}

// maskEmail hides the local part except its first rune: a***@klu.edu.
func maskEmail(email string) string {
	local, domainPart, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local[:1] + "***@" + domainPart
}
