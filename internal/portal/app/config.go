package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/klu-crt/portal/pkg/jwtx"
)

type Config struct {
	Issuer   string // iss claim on access tokens
	Audience string // aud claim on access tokens

	AccessTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL time.Duration // Optional: refresh token / session lifetime (default: 168h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./portal.db)
	PepperFile   string // Optional: path to password-hash pepper file (default: ./pepper)

	SMTPAddr     string // SMTP relay host:port; empty falls back to the log mailer outside prod
	SMTPFrom     string // From address on outgoing mail
	SMTPUsername string // Optional: relay auth
	SMTPPassword string // Optional: relay auth

	SeedAdminUsername   string // First-run admin account; seeding is skipped when unset
	SeedAdminName       string
	SeedAdminEmail      string
	SeedAdminExternalID string
	SeedAdminPassword   string

	AllowedOrigins []string // CORS origins for the dashboard; empty allows none
	PagesDir       string   // Optional: directory of built dashboard pages to serve at /

	DevAuthBypass bool // Registers /api/auth/dev-login; refused when Env is prod

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-row sweep interval (default: 1h)
}

func LoadConfig() Config {
	// A .env file is a convenience for local development; a missing file is
	// not an error.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:   getEnvOrDefault("PORTAL_ISSUER", "klu-portal"),
		Audience: getEnvOrDefault("PORTAL_AUDIENCE", "klu-portal-api"),

		AccessTTL:  getEnvDurationOrDefault("PORTAL_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("PORTAL_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		DatabaseFile: getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),
		PepperFile:   getEnvOrDefault("PORTAL_PEPPER_FILE", "pepper"),

		SMTPAddr:     os.Getenv("PORTAL_SMTP_ADDR"),
		SMTPFrom:     getEnvOrDefault("PORTAL_SMTP_FROM", "no-reply@klu.edu"),
		SMTPUsername: os.Getenv("PORTAL_SMTP_USERNAME"),
		SMTPPassword: os.Getenv("PORTAL_SMTP_PASSWORD"),

		SeedAdminUsername:   os.Getenv("PORTAL_SEED_ADMIN_USERNAME"),
		SeedAdminName:       os.Getenv("PORTAL_SEED_ADMIN_NAME"),
		SeedAdminEmail:      os.Getenv("PORTAL_SEED_ADMIN_EMAIL"),
		SeedAdminExternalID: os.Getenv("PORTAL_SEED_ADMIN_EXTERNAL_ID"),
		SeedAdminPassword:   os.Getenv("PORTAL_SEED_ADMIN_PASSWORD"),

		PagesDir: os.Getenv("PORTAL_PAGES_DIR"),

		DevAuthBypass: getEnvBoolOrDefault("PORTAL_DEV_AUTH_BYPASS", false),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if origins := os.Getenv("PORTAL_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
