package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobsift/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline on an interval",
	Long:  "Runs the pipeline immediately, then re-runs it on the configured watch_interval; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"source", cfg.Source.Path,
		"history", cfg.HistoryPath,
		"interval", cfg.WatchInterval.String(),
	)

	runner, cleanup, err := setupRunner(cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(runner, cfg.WatchInterval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("watch loop error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
