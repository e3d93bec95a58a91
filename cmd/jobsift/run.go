package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobsift/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once",
	Long:  "Reads the scraped listings, diffs them against the history, writes reports, and exits.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"source", cfg.Source.Path,
		"history", cfg.HistoryPath,
		"report_dir", cfg.ReportDir,
		"classifier", cfg.Classifier.Enabled,
	)

	runner, cleanup, err := setupRunner(cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	if ghOutput := os.Getenv("GITHUB_OUTPUT"); ghOutput != "" {
		if err := report.WriteGitHubOutput(ghOutput, summary); err != nil {
			logger.Error("failed to write github output", "error", err)
			os.Exit(1)
		}
	}

	return nil
}
