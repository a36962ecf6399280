// Package server provides the core application server and dependency wiring.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
	"github.com/JakeFAU/page-analyzer/internal/api"
	"github.com/JakeFAU/page-analyzer/internal/clock/system"
	"github.com/JakeFAU/page-analyzer/internal/config"
	collyfetcher "github.com/JakeFAU/page-analyzer/internal/fetcher/colly"
	"github.com/JakeFAU/page-analyzer/internal/storage/memory"
	pgstore "github.com/JakeFAU/page-analyzer/internal/storage/postgres"
)

// App contains the application's dependencies. It is built once at startup and closed once.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	repo      analyzer.Repository
	pgStore   *pgstore.Store
	inspector *analyzer.Inspector
	apiServer *api.Server
}

// migrate is swapped in tests.
var migrate = pgstore.Migrate

// NewApp builds the repository, fetcher, and HTTP server described by cfg.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger.Info("creating application",
		zap.Int("server_port", cfg.Server.Port),
		zap.Bool("in_memory", cfg.InMemory()),
		zap.Int("db_min_conns", cfg.DB.MinConns),
		zap.Int("db_max_conns", cfg.DB.MaxConns),
	)
	app := &App{cfg: cfg, logger: logger}

	if err := app.initRepository(ctx); err != nil {
		return nil, err
	}
	app.inspector = NewInspector(cfg, logger)

	apiServer, err := api.NewServer(app.repo, app.inspector, api.Options{
		SecretKey:      cfg.Server.SecretKey,
		RequestTimeout: cfg.FetchTimeout() + 15*time.Second,
	}, logger.Named("api"))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("build api server: %w", err)
	}
	app.apiServer = apiServer
	return app, nil
}

// NewInspector builds the colly-backed fetch-and-extract pipeline.
func NewInspector(cfg config.Config, logger *zap.Logger) *analyzer.Inspector {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, logger.Named("fetcher"))
	return analyzer.NewInspector(fetcher)
}

func (a *App) initRepository(ctx context.Context) error {
	if a.cfg.InMemory() {
		a.logger.Warn("using in-memory repository; data is lost on exit")
		a.repo = memory.NewRepository(system.New())
		return nil
	}
	if a.cfg.DB.MigrateOnStart {
		version, dirty, err := migrate(a.cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		a.logger.Info("database migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	store, err := pgstore.NewStore(ctx, pgstore.Config{
		DSN:             a.cfg.DB.DSN,
		MinConns:        int32(a.cfg.DB.MinConns), //nolint:gosec // bounded by validation
		MaxConns:        int32(a.cfg.DB.MaxConns), //nolint:gosec // bounded by validation
		MaxConnLifetime: a.cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	a.pgStore = store
	a.repo = store
	return nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln until ctx is canceled.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	srv := &http.Server{
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
			stop()
			return
		}
		serveErr <- nil
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	return <-serveErr
}

// Close releases the connection pool. Safe to call on a partially built App.
func (a *App) Close() {
	if a.pgStore != nil {
		a.pgStore.Close()
		a.pgStore = nil
	}
	a.logger.Info("shutdown complete")
}
