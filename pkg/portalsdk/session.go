package portalsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/klu-crt/portal/pkg/jwtx"
)

// refreshSkew refreshes the access token this long before its actual expiry
// so in-flight requests don't race the deadline.
const refreshSkew = 30 * time.Second

// Session ties a Client to a CredentialStore and keeps the access token
// fresh. All methods are safe for concurrent use; concurrent callers that
// hit an expired token coalesce onto a single refresh call.
type Session struct {
	client *Client
	store  CredentialStore

	// mu serialises refreshes. It is NOT held during network calls other
	// than the refresh itself.
	mu sync.Mutex
}

// NewSession creates a session. The store may already hold a pair from a
// previous run.
func NewSession(client *Client, store CredentialStore) *Session {
	return &Session{client: client, store: store}
}

// Login performs the password step. No tokens are stored yet; call VerifyOTP
// with the emailed code to finish.
func (s *Session) Login(ctx context.Context, usernameOrEmail, password string) (LoginResponse, error) {
	return s.client.Login(ctx, usernameOrEmail, password)
}

// VerifyOTP redeems the open challenge and stores the resulting token pair.
func (s *Session) VerifyOTP(ctx context.Context, usernameOrEmail, otp string) error {
	tokens, err := s.client.VerifyOTP(ctx, usernameOrEmail, otp)
	if err != nil {
		return err
	}
	return s.store.Save(TokenPair{
		AccessToken:  tokens.Token,
		RefreshToken: tokens.RefreshToken,
	})
}

// ResendOTP requests a fresh code for the open challenge.
func (s *Session) ResendOTP(ctx context.Context, usernameOrEmail string) (MessageResponse, error) {
	return s.client.ResendOTP(ctx, usernameOrEmail)
}

// Logout revokes the session server-side and clears the store. Best-effort:
// the store is cleared even when the revoke call fails, and logging out an
// already logged-out session is fine.
func (s *Session) Logout(ctx context.Context) error {
	pair, ok := s.store.Load()
	if !ok {
		return nil
	}
	if err := s.client.Logout(ctx, pair.AccessToken); err != nil && !IsStatus(err, http.StatusUnauthorized) {
		_ = s.store.Clear()
		return err
	}
	return s.store.Clear()
}

// CurrentUser returns the identity baked into the stored access token, or
// nil when no valid token is stored. The signature is not checked here; the
// server re-verifies on every request.
func (s *Session) CurrentUser() *jwtx.Identity {
	pair, ok := s.store.Load()
	if !ok {
		return nil
	}
	claims, err := jwtx.DecodeUnverified(pair.AccessToken)
	if err != nil || claims.ExpiredAt(time.Now()) {
		return nil
	}
	identity := claims.Identity()
	return &identity
}

// IsAuthenticated reports whether the session holds an unexpired access
// token.
func (s *Session) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// AccessToken returns a usable access token, refreshing first when the
// stored one is expired or about to expire.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	pair, ok := s.store.Load()
	if !ok {
		return "", ErrNoCredentials
	}

	claims, err := jwtx.DecodeUnverified(pair.AccessToken)
	if err == nil && !claims.ExpiredAt(time.Now().Add(refreshSkew)) {
		return pair.AccessToken, nil
	}
	return s.refresh(ctx, pair.AccessToken)
}

// UserInfo fetches the authenticated profile, refreshing the token if
// needed.
func (s *Session) UserInfo(ctx context.Context) (UserInfoResponse, error) {
	var out UserInfoResponse
	err := s.authRetry(ctx, func(token string) error {
		var err error
		out, err = s.client.UserInfo(ctx, token)
		return err
	})
	return out, err
}

// ChangePassword replaces the caller's password. The server revokes every
// refresh token for the user, including this session's, so the store is
// cleared and the user must log in again.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	user := s.CurrentUser()
	email := ""
	if user != nil {
		email = user.Email
	}

	err := s.authRetry(ctx, func(token string) error {
		return s.client.ChangePassword(ctx, token, ChangePasswordRequest{
			Email:           email,
			CurrentPassword: current,
			NewPassword:     next,
		})
	})
	if err != nil {
		return err
	}
	return s.store.Clear()
}

// authRetry runs fn with a valid access token, retrying exactly once after a
// refresh when the server answers 401.
func (s *Session) authRetry(ctx context.Context, fn func(token string) error) error {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return err
	}

	err = fn(token)
	if !IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	token, rerr := s.refresh(ctx, token)
	if rerr != nil {
		return rerr
	}
	return fn(token)
}

// refresh rotates the token pair. staleAccess is the access token the caller
// found wanting; if another goroutine already rotated past it the stored
// pair is returned without a network call, so concurrent 401s produce a
// single refresh.
func (s *Session) refresh(ctx context.Context, staleAccess string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair, ok := s.store.Load()
	if !ok {
		return "", ErrNoCredentials
	}
	if pair.AccessToken != staleAccess {
		return pair.AccessToken, nil
	}

	tokens, err := s.client.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		// Refresh failure is terminal for the session whatever the cause.
		// A rejected token cannot recover, and after a transport failure
		// the rotation state server-side is unknowable, so the stored pair
		// cannot be trusted either way.
		if cerr := s.store.Clear(); cerr != nil {
			return "", fmt.Errorf("clear credentials: %w", cerr)
		}
		if IsStatus(err, http.StatusUnauthorized) {
			return "", ErrSessionExpired
		}
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	newPair := TokenPair{
		AccessToken:  tokens.Token,
		RefreshToken: tokens.RefreshToken,
	}
	if err := s.store.Save(newPair); err != nil {
		return "", fmt.Errorf("save credentials: %w", err)
	}
	return newPair.AccessToken, nil
}
