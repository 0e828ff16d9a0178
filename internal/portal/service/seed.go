package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/klu-crt/portal/internal/portal/domain"
	"github.com/klu-crt/portal/internal/portal/store"
	"github.com/klu-crt/portal/pkg/cryptox"
	"github.com/klu-crt/portal/pkg/idx"
	"github.com/klu-crt/portal/pkg/jwtx"
	"github.com/klu-crt/portal/pkg/slogx"
)

var ErrSeedIncomplete = errors.New("seed admin config incomplete")

// SeedAdmin carries the first administrator account created on an empty
// database. The password is treated as provisioned: first_login stays set
// until the admin replaces it.
type SeedAdmin struct {
	Username   string
	Name       string
	Email      string
	ExternalID string
	Password   string
}

type SeedService struct {
	Store store.Store
}

// Seed creates the admin account when the users table is empty. Safe to call
// on every startup; a populated database is a no-op.
func (s *SeedService) Seed(ctx context.Context, admin SeedAdmin) error {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	if admin.Username == "" || admin.Email == "" || admin.Password == "" {
		return ErrSeedIncomplete
	}
	if admin.Name == "" {
		admin.Name = admin.Username
	}
	if admin.ExternalID == "" {
		admin.ExternalID = admin.Username
	}

	hash, err := cryptox.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	userID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-check inside the transaction so two racing instances can't
		// both seed.
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return nil
		}

		return tx.Users().CreateUser(ctx, domain.User{
			ID:           userID,
			ExternalID:   admin.ExternalID,
			Username:     admin.Username,
			Name:         admin.Name,
			Email:        admin.Email,
			PasswordHash: hash,
			Role:         jwtx.RoleAdmin,
			FirstLogin:   true,
		})
	})
	if err != nil {
		return err
	}

	l.Info("seed admin created", slog.String("user_id", userID), slog.String("username", admin.Username))
	return nil
}
