package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pgstore "github.com/JakeFAU/page-analyzer/internal/storage/postgres"
)

// runMigrations is a variable so tests can avoid a live database.
var runMigrations = pgstore.Migrate

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "migrate",
		Short:       "Applies pending database migrations",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsDatabase: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			if rt.cfg.InMemory() {
				return fmt.Errorf("migrate: in-memory repository has no schema")
			}
			version, dirty, err := runMigrations(rt.cfg.DB.DSN)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			rt.logger.Info("database migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
}
