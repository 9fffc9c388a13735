package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page <url>",
		Short: "Extracts a single detail page",
		Long: `Fetches one detail page, bypassing discovery, and writes the extracted
record to stdout as JSON. Useful for spot checks and debugging extraction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil || !u.IsAbs() {
				return fmt.Errorf("page url must be absolute: %q", args[0])
			}

			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			rec, err := a.Runner().RunOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	return cmd
}
