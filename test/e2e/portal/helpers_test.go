package portal_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/klu-crt/portal/pkg/portalsdk"
)

/*
 * Common constants and helper functions for portal service end-to-end tests.
 * This includes container setup, OTP extraction, and shared assertions.
 */

const (
	testImageName = "klu-portal-test:latest"

	adminUsername = "admin"
	adminName     = "Administrator"
	adminEmail    = "admin@klu.edu"
	adminPassword = "Admin123!"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Portal Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Portal Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/portal/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// baseEnv is the container environment shared by all setups. No SMTP relay
// is configured, so the service logs OTP codes and the tests read them back
// out of the container log.
func baseEnv() map[string]string {
	return map[string]string{
		"PORTAL_DATABASE_FILE":       "/portal.db",
		"PORTAL_PEPPER_FILE":         "/pepper",
		"PORTAL_ISSUER":              "klu-portal",
		"PORTAL_AUDIENCE":            "klu-portal-api",
		"PORTAL_SEED_ADMIN_USERNAME": adminUsername,
		"PORTAL_SEED_ADMIN_NAME":     adminName,
		"PORTAL_SEED_ADMIN_EMAIL":    adminEmail,
		"PORTAL_SEED_ADMIN_PASSWORD": adminPassword,
		"ENV":                        "test",
		"LOG_LEVEL":                  "info",
		"LOG_FORMAT":                 "json",
	}
}

// relaxedRateLimits lifts the strict per-IP limits so functional tests don't
// trip them. Rate limit tests use the defaults instead.
func relaxedRateLimits(env map[string]string) map[string]string {
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_WINDOW_SEC"] = "60"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"
	return env
}

func startContainer(t *testing.T, env map[string]string) (string, testcontainers.Container, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, container, cleanup
}

// setupPortalContainer starts the portal with relaxed rate limits. Most tests
// use this; rate limit tests use setupPortalContainerWithDefaultRateLimits.
func setupPortalContainer(t *testing.T) (string, testcontainers.Container, func()) {
	return startContainer(t, relaxedRateLimits(baseEnv()))
}

func setupPortalContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	baseURL, _, cleanup := startContainer(t, baseEnv())
	return baseURL, cleanup
}

var otpCodePattern = regexp.MustCompile(`"code":"([0-9]{6})"`)

// lastOTPCode scrapes the most recent OTP code from the container log. The
// log mailer records codes as structured JSON; the newest entry wins.
func lastOTPCode(t *testing.T, container testcontainers.Container) string {
	t.Helper()
	ctx := context.Background()

	var code string
	require.Eventually(t, func() bool {
		reader, err := container.Logs(ctx)
		if err != nil {
			return false
		}
		defer reader.Close()

		raw, err := io.ReadAll(reader)
		if err != nil {
			return false
		}

		matches := otpCodePattern.FindAllStringSubmatch(string(raw), -1)
		if len(matches) == 0 {
			return false
		}
		code = matches[len(matches)-1][1]
		return true
	}, 10*time.Second, 250*time.Millisecond, "no OTP code appeared in the container log")

	return code
}

// adminLogin walks the full password+OTP flow for the seeded admin and
// returns the issued token pair.
func adminLogin(t *testing.T, client *portalsdk.Client, container testcontainers.Container) portalsdk.TokenResponse {
	t.Helper()
	ctx := context.Background()

	_, err := client.Login(ctx, adminUsername, adminPassword)
	require.NoError(t, err)

	tokens, err := client.VerifyOTP(ctx, adminUsername, lastOTPCode(t, container))
	require.NoError(t, err)
	require.NotEmpty(t, tokens.Token)
	require.NotEmpty(t, tokens.RefreshToken)

	return tokens
}
