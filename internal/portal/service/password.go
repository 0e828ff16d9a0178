package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/klu-crt/portal/internal/portal/store"
	"github.com/klu-crt/portal/pkg/cryptox"
	"github.com/klu-crt/portal/pkg/slogx"
)

var ErrWeakPassword = errors.New("weak_password")

const minPasswordLength = 8

// ChangePassword replaces the caller's password after re-verifying the
// current one. Every refresh token the user holds is revoked, so other
// devices fall back to the login screen once their access tokens expire.
// Clears the first-login flag.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	l := slogx.FromContext(ctx)

	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(currentPassword, u.PasswordHash); err != nil {
		l.Info("change password rejected: current password mismatch", slog.String("user_id", userID))
		return ErrInvalidCredentials
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, newHash); err != nil {
			return err
		}
		if err := tx.Users().ClearFirstLogin(ctx, userID); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
	}); err != nil {
		return err
	}

	l.Info("password changed", slog.String("user_id", userID))
	return nil
}

// ForgotPassword provisions a temporary password, emails it, flags the
// account for first-login, and revokes all refresh tokens. Always reports
// success for unknown addresses so the endpoint can't be used to probe which
// emails have accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("forgot password for unknown email")
			return nil
		}
		return err
	}

	tempPassword, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return err
	}
	tempHash, err := cryptox.HashPassword(tempPassword)
	if err != nil {
		return err
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, u.ID, tempHash); err != nil {
			return err
		}
		if err := tx.Users().SetFirstLogin(ctx, u.ID); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID)
	}); err != nil {
		return err
	}

	if err := s.Mailer.SendTemporaryPassword(ctx, u.Email, u.Name, tempPassword); err != nil {
		l.Error("failed to email temporary password", slog.Any("error", err), slog.String("user_id", u.ID))
		return err
	}

	l.Info("password reset issued", slog.String("user_id", u.ID))
	return nil
}
