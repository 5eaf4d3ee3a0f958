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

	httpapi "github.com/jjxapp/authic/internal/authic/http"
	"github.com/jjxapp/authic/internal/authic/service"
	"github.com/jjxapp/authic/internal/authic/store"
	"github.com/jjxapp/authic/internal/authic/store/drivers/sqlite"
	"github.com/jjxapp/authic/pkg/clockx"
	"github.com/jjxapp/authic/pkg/cryptox"
	"github.com/jjxapp/authic/pkg/jwtx"
	"github.com/jjxapp/authic/pkg/mailx"
	"github.com/jjxapp/authic/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	signingKID = "authic-1"
)

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger
	clock  clockx.Clocker

	db     store.Store
	keys   *jwtx.Keypair
	mailer mailx.Mailer

	challengeService    *service.ChallengeService
	throttleService     *service.ThrottleService
	accountService      *service.AccountService
	loginService        *service.LoginService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:   cfg,
		clock: clockx.New(),
		logger: slogx.New(slogx.Config{
			Service: "authic",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initKeys(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMailer()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("authic starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authic...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authic stopped")
	return nil
}

// initDatabase opens the store and applies migrations.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore("file:" + app.cfg.DatabaseFile)
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

// initKeys loads the Ed25519 signing key, or generates an ephemeral one when
// no key file is configured. Ephemeral keys invalidate outstanding tokens on
// restart, which is fine for dev.
func (app *Application) initKeys() error {
	if app.cfg.SigningKey == "" {
		keys, err := jwtx.NewEphemeralKeypair(signingKID, app.cfg.Issuer)
		if err != nil {
			return fmt.Errorf("failed to generate signing key: %w", err)
		}
		app.keys = keys
		app.logger.Info("using ephemeral signing key", "kid", signingKID)
		return nil
	}

	keys, err := jwtx.LoadKeypair(signingKID, app.cfg.Issuer, app.cfg.SigningKey)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}
	app.keys = keys
	app.logger.Info("loaded signing key", "kid", signingKID, "path", app.cfg.SigningKey)
	return nil
}

// initMailer wires SMTP delivery when a host is configured, and falls back to
// the log mailer otherwise.
func (app *Application) initMailer() {
	if app.cfg.SMTPHost == "" {
		app.mailer = &mailx.LogMailer{Logger: app.logger}
		app.logger.Warn("no SMTP host configured, codes will not be delivered")
		return
	}

	mailer, err := mailx.NewSMTP(mailx.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	if err != nil {
		app.mailer = &mailx.LogMailer{Logger: app.logger}
		app.logger.Error("failed to configure SMTP, falling back to log mailer", "error", err)
		return
	}
	app.mailer = mailer
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.throttleService = &service.ThrottleService{
		Store:       app.db,
		Clock:       app.clock,
		MaxAttempts: app.cfg.MaxAttempts,
		Cooldown:    app.cfg.AttemptBlock,
	}

	app.challengeService = &service.ChallengeService{
		Store:    app.db,
		Clock:    app.clock,
		Mailer:   app.mailer,
		Throttle: app.throttleService,
		Policy: cryptox.CodePolicy{
			Length:   app.cfg.CodeLength,
			Alphabet: cryptox.Alphabet(app.cfg.CodeAlphabet),
		},
		TTL:            app.cfg.CodeTTL,
		ResendCooldown: app.cfg.ResendCooldown,
	}

	app.accountService = &service.AccountService{
		Store:      app.db,
		Clock:      app.clock,
		Challenges: app.challengeService,
		Throttle:   app.throttleService,
	}

	app.loginService = &service.LoginService{
		Store:    app.db,
		Clock:    app.clock,
		Throttle: app.throttleService,
		Keys:     app.keys,
		Issuer:   app.cfg.Issuer,
		TokenTTL: jwtx.DefaultAccessTokenTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.clock,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AccountService = app.accountService
	router.LoginService = app.loginService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
