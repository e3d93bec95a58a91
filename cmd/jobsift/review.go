package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"jobsift/internal/archive"
	"jobsift/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse the latest run interactively (TUI)",
	Long:  "Opens a split-pane TUI over the latest archived run: new postings on the left, seen on the right.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.ArchivePath == "" {
		logger.Error("review requires archive_path to be set in config")
		os.Exit(1)
	}

	arch, err := archive.New(cfg.ArchivePath)
	if err != nil {
		logger.Error("failed to open archive", "error", err)
		os.Exit(1)
	}
	defer arch.Close()

	runDate, ok, err := arch.LatestRunDate()
	if err != nil {
		logger.Error("failed to read archive", "error", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Println("No archived runs yet. Run `jobsift run` first.")
		return nil
	}

	rows, err := arch.RunPostings(runDate)
	if err != nil {
		logger.Error("failed to load run postings", "error", err)
		os.Exit(1)
	}

	// The classifier gets a discard logger — review runs a TUI and any log
	// output before the alt-screen starts corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	classifier := setupClassifier(cfg, silentLogger)

	if err := review.Run(runDate.Format("2006-01-02 15:04"), rows, classifier); err != nil {
		fmt.Printf("TUI error: %v\n", err)
		os.Exit(1)
	}
	return nil
}
