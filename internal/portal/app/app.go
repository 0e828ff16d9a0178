package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/klu-crt/portal/internal/portal/http"
	"github.com/klu-crt/portal/internal/portal/mail"
	"github.com/klu-crt/portal/internal/portal/service"
	"github.com/klu-crt/portal/internal/portal/store"
	"github.com/klu-crt/portal/internal/portal/store/drivers/sqlite"
	"github.com/klu-crt/portal/pkg/cryptox"
	"github.com/klu-crt/portal/pkg/jwtx"
	"github.com/klu-crt/portal/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the portal service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	keyManager *jwtx.KeyManager
	mailer     mail.Mailer

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	seedService         *service.SeedService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// The bypass route mints sessions without a password. It must never
	// exist in production, no matter what the environment says.
	if cfg.DevAuthBypass && cfg.Env == "prod" {
		return nil, fmt.Errorf("PORTAL_DEV_AUTH_BYPASS is not allowed with ENV=prod")
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Signing keys are ephemeral: every restart invalidates outstanding
	// access tokens, and the refresh flow reissues them.
	keyManager, err := jwtx.NewKeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initMailer(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.seed(); err != nil {
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("portal service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down portal service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("portal service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initMailer picks the OTP/reset mail transport. Production requires a real
// relay; anything else may fall back to logging the mail.
func (app *Application) initMailer() error {
	if app.cfg.SMTPAddr != "" {
		app.mailer = mail.NewSMTPMailer(
			app.cfg.SMTPAddr,
			app.cfg.SMTPFrom,
			app.cfg.SMTPUsername,
			app.cfg.SMTPPassword,
		)
		return nil
	}

	if app.cfg.Env == "prod" {
		return fmt.Errorf("PORTAL_SMTP_ADDR is required with ENV=prod")
	}

	app.logger.Warn("no SMTP relay configured, OTP codes will be logged")
	app.mailer = &mail.LogMailer{Logger: app.logger}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		KeyManager: app.keyManager,
		Store:      app.db,
		Mailer:     app.mailer,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.userService = &service.UserService{Store: app.db}
	app.seedService = &service.SeedService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// seed creates the first admin account on an empty database. Skipped
// entirely when no seed admin is configured.
func (app *Application) seed() error {
	if app.cfg.SeedAdminUsername == "" {
		return nil
	}

	err := app.seedService.Seed(context.Background(), service.SeedAdmin{
		Username:   app.cfg.SeedAdminUsername,
		Name:       app.cfg.SeedAdminName,
		Email:      app.cfg.SeedAdminEmail,
		ExternalID: app.cfg.SeedAdminExternalID,
		Password:   app.cfg.SeedAdminPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	verifier := jwtx.NewVerifierEdDSA(app.keyManager.KeySet(), jwtx.VerifyOptions{
		Issuer:   app.cfg.Issuer,
		Audience: app.cfg.Audience,
	})

	router := httpapi.NewRouter(
		app.keyManager,
		verifier,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.AllowedOrigins,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.SecureCookies = app.cfg.Env != "dev"
	router.DevAuthBypass = app.cfg.DevAuthBypass
	if app.cfg.PagesDir != "" {
		router.Pages = http.FileServer(http.Dir(app.cfg.PagesDir))
	}
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
