package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jobsift/internal/archive"
	"jobsift/internal/classify"
	"jobsift/internal/config"
	"jobsift/internal/filter"
	"jobsift/internal/model"
	"jobsift/internal/notifier"
	"jobsift/internal/pipeline"
	"jobsift/internal/ratelimit"
	"jobsift/internal/report"
	"jobsift/internal/retry"
	"jobsift/internal/source"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobsift",
	Short: "Job listing aggregator — sift the new from the seen",
	Long:  "Jobsift diffs scraped job listings against its history, labels new ones with an LLM, and writes run reports.",
	// Default to `run` so that `jobsift` with no args does a one-shot run.
	// This keeps CI workflows that invoke the binary directly working.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSIFT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSIFT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSIFT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func setupSource(cfg *config.Config) (model.PostingSource, error) {
	switch cfg.Source.Type {
	case "csv":
		return source.NewCSVSource(cfg.Source.Path), nil
	case "json":
		return source.NewJSONSource(cfg.Source.Path), nil
	default:
		return nil, fmt.Errorf("unsupported source type %q", cfg.Source.Type)
	}
}

// setupFilter returns nil when no filter lists are configured, which disables
// the prefilter entirely.
func setupFilter(cfg *config.Config) model.PostingFilter {
	f := cfg.Filters
	if len(f.TitleKeywords) == 0 && len(f.TitleExcludeKeywords) == 0 &&
		len(f.Locations) == 0 && len(f.ExcludeLocations) == 0 {
		return nil
	}
	return filter.NewKeywordFilter(f.TitleKeywords, f.TitleExcludeKeywords, f.Locations, f.ExcludeLocations)
}

// setupClassifier returns nil when the classifier is disabled. The OpenAI
// provider is wrapped with retries and a call-spacing rate limit.
func setupClassifier(cfg *config.Config, logger *slog.Logger) model.Classifier {
	if !cfg.Classifier.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: cfg.Classifier.Timeout}
	var provider classify.LLMProvider = classify.NewOpenAIProvider(
		cfg.Classifier.BaseURL,
		cfg.Classifier.APIKey,
		cfg.Classifier.Model,
		httpClient,
	)
	provider = retry.NewProvider(provider, cfg.Classifier.MaxRetries, 2*time.Second, logger)
	provider = ratelimit.NewProvider(provider, ratelimit.NewLimiter(cfg.Classifier.MinDelay), "openai")

	logger.Info("classifier enabled", "model", cfg.Classifier.Model)
	return classify.NewLLMClassifier(provider, classify.RelevanceTemplate, cfg.Classifier.Query, logger)
}

// setupRunner wires the full pipeline from config. The returned cleanup
// closes the archive and must be called after the runner is done.
func setupRunner(cfg *config.Config, logger *slog.Logger) (*pipeline.Runner, func(), error) {
	src, err := setupSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var arch pipeline.Archiver
	cleanup := func() {}
	if cfg.ArchivePath != "" {
		a, err := archive.New(cfg.ArchivePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening archive: %w", err)
		}
		arch = a
		cleanup = func() { a.Close() }
	}

	runner := pipeline.NewRunner(
		src,
		setupFilter(cfg),
		setupClassifier(cfg, logger),
		setupNotifier(cfg, httpClient, logger),
		report.NewWriter(cfg.ReportDir, logger),
		arch,
		cfg.HistoryPath,
		logger,
	)
	return runner, cleanup, nil
}
