// Package cmd defines and implements the CLI commands for the pageanalyzer executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/page-analyzer/internal/config"
	"github.com/JakeFAU/page-analyzer/internal/logging"
)

// runtimeKeyType is the key for storing the loaded runtime in the context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// runtime carries what every subcommand needs once flags are parsed.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

// loadConfig reads configuration for a command. It is a variable so tests can inject config.
var loadConfig = func(path string, full bool) (config.Config, error) {
	if full {
		return config.Load(path)
	}
	cfg, err := config.Read(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ValidateFetch(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger is a variable so tests can silence output.
var newLogger = logging.New

// needsDatabase marks commands whose config must carry a usable DSN.
const needsDatabase = "needs-database"

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "pageanalyzer",
		Short: "Registers web pages and records SEO checks for them.",
		Long: `pageanalyzer normalizes submitted addresses, stores them in Postgres, and
records checks of each page's status code, first h1, title, and meta description.`,
		SilenceUsage: true,

		// Loads config and builds the logger before any subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, full := cmd.Annotations[needsDatabase]
			cfg, err := loadConfig(cfgFile, full)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := newLogger(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), runtimeKey, &runtime{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, err := resolveRuntime(cmd.Context()); err == nil {
				_ = rt.logger.Sync() //nolint:errcheck // best-effort flush
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml, or json)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newCheckCmd())

	return cmd
}

func resolveRuntime(ctx context.Context) (*runtime, error) {
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	rt, ok := ctx.Value(runtimeKey).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
