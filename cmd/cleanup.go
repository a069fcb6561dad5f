package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stored results older than the retention window.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if days <= 0 {
				days = cfg.Retention.Days
			}
			if days <= 0 {
				logger.Info("retention disabled, nothing to do")
				return nil
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.Cleanup(cmd.Context(), days)
			if err != nil {
				return err
			}
			logger.Info("cleanup finished",
				zap.Int("retention_days", days),
				zap.Int64("deleted", deleted),
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "override retention window in days (default: config)")
	return cmd
}
