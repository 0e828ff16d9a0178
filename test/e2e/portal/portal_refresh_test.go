package portal_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klu-crt/portal/pkg/portalsdk"
)

// TestRefreshRotation verifies the refresh endpoint issues a fresh pair and
// burns the presented refresh token.
func TestRefreshRotation(t *testing.T) {
	baseURL, container, cleanup := setupPortalContainer(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	tokens := adminLogin(t, client, container)

	rotated, err := client.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, rotated.Token)
	require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
	require.Equal(t, adminUsername, rotated.User.Username)

	// The spent token is terminal.
	_, err = client.Refresh(ctx, tokens.RefreshToken)
	require.Error(t, err)
	require.True(t, portalsdk.IsStatus(err, http.StatusUnauthorized))

	// The rotated token still works.
	again, err := client.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, again.Token)
}

// TestRefreshRejectsGarbage verifies an unknown refresh token gets 401, not
// an internal error.
func TestRefreshRejectsGarbage(t *testing.T) {
	baseURL, _, cleanup := setupPortalContainer(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)

	_, err := client.Refresh(context.Background(), "not-a-real-refresh-token")
	require.Error(t, err)
	require.True(t, portalsdk.IsStatus(err, http.StatusUnauthorized))
}

// TestLogoutRevokesSession verifies logout kills the whole session: the
// refresh token stops working even though it was never presented.
func TestLogoutRevokesSession(t *testing.T) {
	baseURL, container, cleanup := setupPortalContainer(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	tokens := adminLogin(t, client, container)

	require.NoError(t, client.Logout(ctx, tokens.Token))

	_, err := client.Refresh(ctx, tokens.RefreshToken)
	require.Error(t, err)
	require.True(t, portalsdk.IsStatus(err, http.StatusUnauthorized))

	// Logout is idempotent.
	require.NoError(t, client.Logout(ctx, tokens.Token))
}

// TestSessionSurvivesRefresh verifies a session logged out via a
// post-rotation access token loses the rotated refresh token too.
func TestSessionSurvivesRefresh(t *testing.T) {
	baseURL, container, cleanup := setupPortalContainer(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	tokens := adminLogin(t, client, container)

	rotated, err := client.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	// The rotated access token carries the same session id, so logging out
	// with it revokes the rotated refresh token as well.
	require.NoError(t, client.Logout(ctx, rotated.Token))

	_, err = client.Refresh(ctx, rotated.RefreshToken)
	require.Error(t, err)
	require.True(t, portalsdk.IsStatus(err, http.StatusUnauthorized))
}
