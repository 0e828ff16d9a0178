package portal_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/klu-crt/portal/pkg/portalsdk"
)

// TestRateLimitLoginEndpoint verifies the login endpoint enforces the strict
// per-IP limit (5 req/min) against password guessing.
func TestRateLimitLoginEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	// The first 5 attempts fail on credentials, not on the limiter; the 6th
	// trips the limiter.
	var lastErr error
	for i := range 6 {
		_, err := client.Login(ctx, adminUsername, "wrong-password")
		if i < 5 {
			require.Error(t, err)
			require.True(t, portalsdk.IsStatus(err, http.StatusUnauthorized),
				"request %d should fail auth, not the rate limit: %v", i+1, err)
		} else {
			lastErr = err
		}
	}

	require.Error(t, lastErr)
	require.True(t, portalsdk.IsStatus(lastErr, http.StatusTooManyRequests),
		"6th request should be rate limited: %v", lastErr)
	t.Logf("Successfully rate limited after 5 requests to /api/auth/login")
}

// TestRateLimitVerifyOTPEndpoint verifies the code step has the same strict
// limit, capping code guessing below the per-challenge attempt budget reach
// of a single IP.
func TestRateLimitVerifyOTPEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	var lastErr error
	for range 6 {
		_, lastErr = client.VerifyOTP(ctx, adminUsername, "000000")
		require.Error(t, lastErr)
	}

	require.True(t, portalsdk.IsStatus(lastErr, http.StatusTooManyRequests),
		"should be rate limited after repeated code guesses: %v", lastErr)
}

// TestRateLimitHealthEndpointsLenient verifies monitoring endpoints tolerate
// rapid polling.
func TestRateLimitHealthEndpointsLenient(t *testing.T) {
	baseURL, cleanup := setupPortalContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := portalsdk.NewClient(baseURL)
	ctx := context.Background()

	for range 20 {
		_, err := client.Readyz(ctx)
		require.NoError(t, err)
	}
}
