// Package cmd defines and implements the CLI commands for the scraper
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/OptimNow/my-scraper/internal/app"
	"github.com/OptimNow/my-scraper/internal/config"
	"github.com/OptimNow/my-scraper/internal/logging"
)

var cfgFile string

type appKeyType struct{}

var appKey appKeyType

// buildApp is the application factory. It is a variable so tests can swap in
// a stub without touching real providers.
var buildApp = func(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.Build(ctx, cfg)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scraper",
		Short: "Extracts cloud cost inefficiency records from the OptimNow hub.",
		Long: `scraper walks the public cloud-cost-inefficiency hub one page at a
time, extracts structured records from each detail page, and persists them to
blob storage. Discovery, extraction, and persistence run strictly
sequentially with a politeness delay between fetches.`,

		// Build the application once here so every subcommand finds it in
		// the context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app.App); ok && a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults plus SCRAPER_* env)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newPageCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}

// errorLogger returns the global logger, or a development fallback when the
// global is still the no-op default. Build failures happen before the app
// installs the real logger.
func errorLogger() *zap.Logger {
	logger := zap.L()
	if logger.Core().Enabled(zapcore.ErrorLevel) {
		return logger
	}
	fallback, err := logging.New(true)
	if err != nil {
		return logger
	}
	return fallback
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		errorLogger().Error("command execution failed", zap.Error(err))
		os.Exit(1)
	}
}
