// Package cmd wires the drawfeed CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drawfeed/drawfeed/internal/config"
	"github.com/drawfeed/drawfeed/internal/logging"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drawfeed",
		Short: "Scrapes, stores and serves Kolkata FF draw results.",
		Long: `drawfeed fetches published lottery draw results from the source site
(with mirror fallback), extracts and normalizes them, deduplicates by
content signature, persists them to Postgres, and optionally announces
new results over Telegram. It also serves a small read API over the
stored history.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: environment only)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCleanupCmd())

	return cmd
}

// loadEnv loads configuration and builds the logger. Config errors are
// fatal to the process; nothing downstream can run without them.
func loadEnv() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
