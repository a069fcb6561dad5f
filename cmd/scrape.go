package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drawfeed/drawfeed/internal/clock/system"
	"github.com/drawfeed/drawfeed/internal/config"
	"github.com/drawfeed/drawfeed/internal/draw"
	"github.com/drawfeed/drawfeed/internal/extract"
	"github.com/drawfeed/drawfeed/internal/fetch"
	"github.com/drawfeed/drawfeed/internal/ingest"
	"github.com/drawfeed/drawfeed/internal/metrics"
	"github.com/drawfeed/drawfeed/internal/normalize"
	"github.com/drawfeed/drawfeed/internal/notify/telegram"
	"github.com/drawfeed/drawfeed/internal/pipeline"
	"github.com/drawfeed/drawfeed/internal/sign"
	"github.com/drawfeed/drawfeed/internal/snapshot"
	"github.com/drawfeed/drawfeed/internal/source"
	"github.com/drawfeed/drawfeed/internal/store/postgres"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape pass and exit.",
		Long: `scrape resolves a source origin, extracts and persists new draw
results, then exits. A failed run (every origin exhausted) is logged and
reported through metrics but still exits zero: the scheduler retries on
its own cadence.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			metrics.Init()

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := buildPipeline(cfg, store, logger)
			if err != nil {
				return err
			}

			if _, err := p.Run(cmd.Context()); err != nil {
				// Recoverable: the next scheduled run tries again.
				logger.Error("scrape run failed", zap.Error(err))
			}
			return nil
		},
	}
}

// openStore connects to Postgres and applies the schema.
func openStore(ctx context.Context, cfg config.Config) (*postgres.Store, error) {
	store, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		Table:    cfg.DB.Table,
		MaxConns: cfg.DB.MaxConns,
	}, system.New())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// buildPipeline assembles the scrape stages from configuration.
func buildPipeline(cfg config.Config, store *postgres.Store, logger *zap.Logger) (*pipeline.Pipeline, error) {
	schedule, err := normalize.NewSchedule(cfg.Schedule.FirstDraw, cfg.Schedule.IntervalMinutes)
	if err != nil {
		return nil, fmt.Errorf("build schedule: %w", err)
	}

	fetcher := fetch.New(fetch.Config{
		UserAgent:   cfg.Source.UserAgent,
		Timeout:     cfg.FetchTimeout(),
		MaxAttempts: cfg.HTTP.MaxRetries,
		BackoffBase: cfg.BackoffBase(),
	}, logger)
	extractor := extract.New(schedule, logger)
	selector := source.New(fetcher, extractor, logger)

	var notifier draw.Notifier
	if cfg.Telegram.Enabled {
		tg, err := telegram.New(telegram.Config{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			Timeout:  cfg.FetchTimeout(),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build notifier: %w", err)
		}
		notifier = tg
	}

	var snapshots *snapshot.Writer
	if cfg.Snapshot.Enabled {
		snapshots, err = snapshot.New(cfg.Snapshot.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("build snapshot writer: %w", err)
		}
	}

	policy := ingest.New(store, notifier, system.New(), logger)

	return pipeline.New(selector, sign.New(), policy, store, snapshots, pipeline.Options{
		SourceURL:     cfg.Source.URL,
		Mirrors:       cfg.Source.Mirrors,
		BackfillDays:  cfg.Ingest.BackfillDays,
		SendAll:       cfg.Ingest.SendAll,
		RetentionDays: cfg.Retention.Days,
	}, logger), nil
}
