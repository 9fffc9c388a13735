package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScrapeCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs a full discovery-and-extract batch",
		Long: `Discovers every detail page behind the paginated index, then fetches
and extracts each one sequentially. The resulting report, including per-URL
failures, is written to stdout as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			report, err := a.Runner().RunBatch(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("run batch: %w", err)
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			a.Logger().Info("scrape finished",
				zap.Int("succeeded", len(report.Results)),
				zap.Int("failed", len(report.Errors)),
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "cap on pages to process (0 means all discovered)")
	return cmd
}
