package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/quotables/quotes-api/internal/quotes/http"
	"github.com/quotables/quotes-api/internal/quotes/service"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/quotables/quotes-api/internal/quotes/store/drivers/sqlite"
	"github.com/quotables/quotes-api/pkg/jwtx"
	"github.com/quotables/quotes-api/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the quotes service together: store, signing keys,
// services and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer jwtx.Signer
	keys   *jwtx.KeySet

	authService         *service.AuthService
	userService         *service.UserService
	quoteService        *service.QuoteService
	ledger              *service.LedgerService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "quotes-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initKeys(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("quotes service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the server, the housekeeping worker and the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down quotes service...")

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

	app.logger.Info("quotes service stopped")
	return nil
}

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

// initKeys generates an ephemeral Ed25519 signing key. Tokens do not survive
// a restart, which suits the ledger: unknown jtis are revoked anyway.
func (app *Application) initKeys() error {
	signer, err := jwtx.NewEphemeralSignerEdDSA()
	if err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}
	app.signer = signer

	app.keys = jwtx.NewKeySet()
	if err := app.keys.AddSigner(signer); err != nil {
		return fmt.Errorf("failed to register signing key: %w", err)
	}

	app.logger.Info("signing key generated", "kid", signer.KID(), "alg", signer.Alg())
	return nil
}

func (app *Application) initServices() {
	app.ledger = &service.LedgerService{Store: app.db}

	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.signer,
		Ledger:     app.ledger,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}
	app.userService = &service.UserService{Store: app.db}
	app.quoteService = &service.QuoteService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.ledger,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	verifier := jwtx.NewVerifierEdDSA(app.keys, app.cfg.Issuer)

	router := httpapi.NewRouter(
		app.keys,
		verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.QuoteService = app.quoteService
	router.Ledger = app.ledger
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
