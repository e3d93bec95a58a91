package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobsift pipeline.
type Config struct {
	Source        SourceConfig
	HistoryPath   string
	ArchivePath   string // empty disables the SQLite archive
	ReportDir     string
	WatchInterval time.Duration
	Filters       FilterConfig
	Notification  NotificationConfig
	Classifier    ClassifierConfig
}

// SourceConfig describes where scraped postings come from.
type SourceConfig struct {
	Type string `yaml:"type"` // "csv" or "json"
	Path string `yaml:"path"`
}

// ClassifierConfig controls the optional LLM relevance layer.
type ClassifierConfig struct {
	Enabled    bool
	BaseURL    string        // defaults to https://api.openai.com/v1
	Model      string        // OpenAI model identifier, e.g. "gpt-4o-mini"
	APIKey     string        // expanded from env var by Load
	Query      string        // what the user is looking for
	Timeout    time.Duration // per-request timeout
	MinDelay   time.Duration // minimum gap between API calls
	MaxRetries int
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// FilterConfig holds keyword and location filter settings.
type FilterConfig struct {
	TitleKeywords        []string `yaml:"title_keywords"`
	TitleExcludeKeywords []string `yaml:"title_exclude_keywords"`
	Locations            []string `yaml:"locations"`
	ExcludeLocations     []string `yaml:"exclude_locations"`
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Source        SourceConfig        `yaml:"source"`
	HistoryPath   string              `yaml:"history_path"`
	ArchivePath   string              `yaml:"archive_path"`
	ReportDir     string              `yaml:"report_dir"`
	WatchInterval string              `yaml:"watch_interval"`
	Filters       FilterConfig        `yaml:"filters"`
	Notification  NotificationConfig  `yaml:"notification"`
	Classifier    rawClassifierConfig `yaml:"classifier"`
}

type rawClassifierConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Query      string `yaml:"query"`
	Timeout    string `yaml:"timeout"`
	MinDelay   string `yaml:"min_delay"`
	MaxRetries int    `yaml:"max_retries"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	watchInterval := 1 * time.Hour // default
	if raw.WatchInterval != "" {
		watchInterval, err = time.ParseDuration(raw.WatchInterval)
		if err != nil {
			return nil, fmt.Errorf("parse watch_interval %q: %w", raw.WatchInterval, err)
		}
	}

	timeout := 30 * time.Second // default
	if raw.Classifier.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Classifier.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse classifier.timeout %q: %w", raw.Classifier.Timeout, err)
		}
	}

	minDelay := 1 * time.Second // default
	if raw.Classifier.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.Classifier.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse classifier.min_delay %q: %w", raw.Classifier.MinDelay, err)
		}
	}

	maxRetries := 3 // default
	if raw.Classifier.MaxRetries > 0 {
		maxRetries = raw.Classifier.MaxRetries
	}

	baseURL := raw.Classifier.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	historyPath := raw.HistoryPath
	if historyPath == "" {
		historyPath = "job_history.json"
	}

	reportDir := raw.ReportDir
	if reportDir == "" {
		reportDir = "."
	}

	cfg := &Config{
		Source:        raw.Source,
		HistoryPath:   historyPath,
		ArchivePath:   raw.ArchivePath,
		ReportDir:     reportDir,
		WatchInterval: watchInterval,
		Filters:       raw.Filters,
		Notification:  raw.Notification,
		Classifier: ClassifierConfig{
			Enabled:    raw.Classifier.Enabled,
			BaseURL:    baseURL,
			Model:      raw.Classifier.Model,
			APIKey:     raw.Classifier.APIKey,
			Query:      raw.Classifier.Query,
			Timeout:    timeout,
			MinDelay:   minDelay,
			MaxRetries: maxRetries,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Source.Type {
	case "csv", "json":
	case "":
		return fmt.Errorf("source.type is required")
	default:
		return fmt.Errorf("source.type must be \"csv\" or \"json\", got %q", cfg.Source.Type)
	}
	if cfg.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}

	if cfg.WatchInterval <= 0 {
		return fmt.Errorf("watch_interval must be positive, got %v", cfg.WatchInterval)
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	if cfg.Classifier.Enabled {
		if cfg.Classifier.APIKey == "" {
			return fmt.Errorf("classifier.api_key is required when classifier.enabled is true")
		}
		if cfg.Classifier.Model == "" {
			return fmt.Errorf("classifier.model is required when classifier.enabled is true")
		}
		if cfg.Classifier.Query == "" {
			return fmt.Errorf("classifier.query is required when classifier.enabled is true")
		}
	}

	return nil
}
