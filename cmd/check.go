package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
	"github.com/JakeFAU/page-analyzer/internal/config"
	"github.com/JakeFAU/page-analyzer/internal/server"
	"github.com/JakeFAU/page-analyzer/internal/urlutil"
)

type pageInspector interface {
	FetchAndExtract(ctx context.Context, url string) (analyzer.ExtractionResult, error)
}

// newInspector is a variable so tests can stub the network.
var newInspector = func(cfg config.Config, logger *zap.Logger) pageInspector {
	return server.NewInspector(cfg, logger)
}

type checkOutput struct {
	URL string `json:"url"`
	analyzer.ExtractionResult
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <url>",
		Short: "Fetches one page and prints its signals as JSON",
		Long:  `Normalizes the address, fetches it once, and prints the status code, h1, title, and description. Nothing is stored.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			normalized := urlutil.Normalize(args[0])
			if err := urlutil.Validate(normalized); err != nil {
				return err
			}
			result, err := newInspector(rt.cfg, rt.logger).FetchAndExtract(cmd.Context(), normalized)
			if err != nil {
				return fmt.Errorf("check: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(checkOutput{URL: normalized, ExtractionResult: result}); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			return nil
		},
	}
}
