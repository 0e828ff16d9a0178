package portal_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klu-crt/portal/pkg/portalsdk"
)

// TestUserInfo verifies the profile endpoint with a fresh access token.
func TestUserInfo(t *testing.T) {
	baseURL, container, cleanup := setupPortalContainer(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	tokens := adminLogin(t, client, container)

	info, err := client.UserInfo(ctx, tokens.Token)
	require.NoError(t, err)
	require.Equal(t, adminUsername, info.User.Username)
	require.Equal(t, adminEmail, info.User.Email)
	require.Equal(t, "ADMIN", info.User.Role)
	require.True(t, info.User.FirstLogin, "seeded password has not been replaced yet")
}

// TestUserInfoRequiresToken verifies the endpoint rejects anonymous and
// garbage credentials.
func TestUserInfoRequiresToken(t *testing.T) {
	baseURL, _, cleanup := setupPortalContainer(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	_, err := client.UserInfo(ctx, "")
	require.Error(t, err)

	_, err = client.UserInfo(ctx, "not-a-jwt")
	require.Error(t, err)
	require.True(t, portalsdk.IsStatus(err, http.StatusUnauthorized))
}

// TestChangePassword walks the full password rotation: change it, watch the
// old session die, log back in with the new password.
func TestChangePassword(t *testing.T) {
	baseURL, container, cleanup := setupPortalContainer(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	tokens := adminLogin(t, client, container)

	const newPassword = "Admin456!"
	err := client.ChangePassword(ctx, tokens.Token, portalsdk.ChangePasswordRequest{
		Email:           adminEmail,
		CurrentPassword: adminPassword,
		NewPassword:     newPassword,
	})
	require.NoError(t, err)

	// Every session was revoked by the change.
	_, err = client.Refresh(ctx, tokens.RefreshToken)
	require.Error(t, err)
	require.True(t, portalsdk.IsStatus(err, http.StatusUnauthorized))

	// The old password is gone, the new one works.
	_, err = client.Login(ctx, adminUsername, adminPassword)
	require.Error(t, err)
	require.True(t, portalsdk.IsStatus(err, http.StatusUnauthorized))

	_, err = client.Login(ctx, adminUsername, newPassword)
	require.NoError(t, err)

	tokens2, err := client.VerifyOTP(ctx, adminUsername, lastOTPCode(t, container))
	require.NoError(t, err)

	// The first-login flag clears once the provisioned password is replaced.
	info, err := client.UserInfo(ctx, tokens2.Token)
	require.NoError(t, err)
	require.False(t, info.User.FirstLogin)
}

// TestChangePasswordRejectsWrongCurrent verifies re-verification of the
// current password.
func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	baseURL, container, cleanup := setupPortalContainer(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	tokens := adminLogin(t, client, container)

	err := client.ChangePassword(ctx, tokens.Token, portalsdk.ChangePasswordRequest{
		Email:           adminEmail,
		CurrentPassword: "wrong-password",
		NewPassword:     "Admin456!",
	})
	require.Error(t, err)
	require.True(t, portalsdk.IsStatus(err, http.StatusUnauthorized))

	// The session survives a failed attempt.
	_, err = client.UserInfo(ctx, tokens.Token)
	require.NoError(t, err)
}
