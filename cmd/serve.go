package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/page-analyzer/internal/config"
	"github.com/JakeFAU/page-analyzer/internal/server"
)

// application is the part of server.App the serve command drives.
type application interface {
	Run(ctx context.Context) error
	Close()
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (application, error) {
	return server.NewApp(ctx, cfg, logger)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "serve",
		Short:       "Starts the HTTP server",
		Long:        `Runs pending migrations (unless disabled), opens the connection pool, and serves the web UI until SIGINT or SIGTERM.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsDatabase: "true"},
		RunE:        runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, rt.cfg, rt.logger)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
