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

	httpapi "github.com/rithlabs/rith/internal/rith/http"
	"github.com/rithlabs/rith/internal/rith/service"
	"github.com/rithlabs/rith/internal/rith/store"
	"github.com/rithlabs/rith/internal/rith/store/drivers/sqlite"
	"github.com/rithlabs/rith/pkg/cryptox"
	"github.com/rithlabs/rith/pkg/jwtx"
	"github.com/rithlabs/rith/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the service together: store, services, HTTP server, and
// the background housekeeping worker.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.Signer

	tokenService        *service.TokenService
	grantService        *service.GrantService
	clientService       *service.ClientService
	userService         *service.UserService
	sessionService      *service.SessionService
	mfaService          *service.MFAService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService
	gate                *service.Gate

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "rith",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	// An unset secret gets an ephemeral one: sessions then die with the
	// process, which is fine for development but not for production.
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = cryptox.MustGenerateToken(cryptox.TokenSize256)
		app.logger.Warn("RITH_SESSION_SECRET not set; using an ephemeral session key")
	}

	signer, err := jwtx.NewSigner([]byte(cfg.SessionSecret), cfg.Issuer, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session signer: %w", err)
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("rith starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown drains in-flight requests, stops housekeeping, and closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down...")

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

	app.logger.Info("rith stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	if err := service.EnsureRoles(context.Background(), db); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	app.logger.Info("database ready")
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{Store: app.db, TTL: app.cfg.TokenTTL}
	app.grantService = &service.GrantService{Store: app.db, TTL: app.cfg.GrantTTL}
	app.clientService = &service.ClientService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}
	app.sessionService = &service.SessionService{Store: app.db, Signer: app.signer}
	app.mfaService = &service.MFAService{Store: app.db, Issuer: app.cfg.Issuer}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Users: app.userService,
		Token: app.cfg.BootstrapToken,
	}
	app.gate = &service.Gate{Tokens: app.tokenService, Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.GrantService = app.grantService
	router.ClientService = app.clientService
	router.UserService = app.userService
	router.SessionService = app.sessionService
	router.MFAService = app.mfaService
	router.BootstrapService = app.bootstrapService
	router.Gate = app.gate
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
