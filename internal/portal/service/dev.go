package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/klu-crt/portal/internal/portal/domain"
	"github.com/klu-crt/portal/internal/portal/store"
	"github.com/klu-crt/portal/pkg/cryptox"
	"github.com/klu-crt/portal/pkg/idx"
	"github.com/klu-crt/portal/pkg/slogx"
)

// DevLogin mints a full session for a user, skipping the password and OTP
// steps. Only the dev bypass route calls this; the route itself is never
// registered outside non-production environments.
func (s *AuthService) DevLogin(ctx context.Context, usernameOrEmail string) (*domain.TokenPair, domain.User, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	u, err := s.findUser(ctx, strings.TrimSpace(usernameOrEmail))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.User{}, ErrInvalidCredentials
		}
		return nil, domain.User{}, err
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
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, domain.User{}, err
	}

	l.Warn("dev login bypass used", slog.String("user_id", u.ID))

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, u, nil
}
