// Package config provides the immutable configuration record for the
// harvester. Configuration is read once from a YAML file with environment
// variable overrides (a .env file is loaded first if present); nothing in the
// scheduling loop reads ambient state.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is wrapped by all construction-time validation
// failures. It is never encountered mid-run.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Default values
const (
	DefaultMinDelaySeconds  = 180
	DefaultMaxDelaySeconds  = 300
	DefaultQuietStartHour   = 0
	DefaultQuietEndHour     = 6
	DefaultMaxRetryAttempts = 2
	DefaultDisableThreshold = 3
	DefaultCookieMaxAgeDays = 30
	DefaultLogLevel         = "info"
	DefaultDatabasePath     = "harvester.db"
	DefaultReportPath       = "run_report.json"
	DefaultOutputTemplate   = "%(title)s.%(ext)s"
)

// Config holds every recognized option with its documented default.
type Config struct {
	// MinDelaySeconds is the lower bound of the randomized per-account delay
	MinDelaySeconds int `yaml:"min_delay_seconds" env:"YH_MIN_DELAY_SECONDS"`
	// MaxDelaySeconds is the upper bound of the randomized per-account delay
	MaxDelaySeconds int `yaml:"max_delay_seconds" env:"YH_MAX_DELAY_SECONDS"`
	// QuietHoursEnabled toggles the global quiet window
	QuietHoursEnabled bool `yaml:"quiet_hours_enabled" env:"YH_QUIET_HOURS_ENABLED"`
	// QuietStartHour is the local hour at which the quiet window opens
	QuietStartHour int `yaml:"quiet_start_hour" env:"YH_QUIET_START_HOUR"`
	// QuietEndHour is the local hour at which the quiet window closes (exclusive)
	QuietEndHour int `yaml:"quiet_end_hour" env:"YH_QUIET_END_HOUR"`
	// Timezone is an IANA zone name for quiet-hours evaluation; empty means system local
	Timezone string `yaml:"timezone" env:"YH_TIMEZONE"`
	// MaxRetryAttempts is the number of retries after the initial attempt
	MaxRetryAttempts int `yaml:"max_retry_attempts" env:"YH_MAX_RETRY_ATTEMPTS"`
	// DisableThreshold is the consecutive auth-failure count that disables an account
	DisableThreshold int `yaml:"consecutive_failure_disable_threshold" env:"YH_DISABLE_THRESHOLD"`
	// CookieFiles lists the cookie files, one per account
	CookieFiles []string `yaml:"cookie_files"`
	// CookieMaxAgeDays is the staleness cutoff for cookie files at validation time
	CookieMaxAgeDays int `yaml:"cookie_max_age_days" env:"YH_COOKIE_MAX_AGE_DAYS"`
	// DownloadDir is where downloaded artifacts are written
	DownloadDir string `yaml:"download_dir" env:"YH_DOWNLOAD_DIR"`
	// OutputTemplate is the yt-dlp output filename template
	OutputTemplate string `yaml:"output_template" env:"YH_OUTPUT_TEMPLATE"`
	// DatabasePath is the SQLite file backing the deduplication gate
	DatabasePath string `yaml:"database_path" env:"YH_DATABASE_PATH"`
	// ReportPath is where the final run report is written
	ReportPath string `yaml:"report_path" env:"YH_REPORT_PATH"`
	// LogLevel is the minimum logging level (debug, info, warn, error)
	LogLevel string `yaml:"log_level" env:"YH_LOG_LEVEL"`
}

// Default returns a Config populated with documented defaults.
func Default() *Config {
	return &Config{
		MinDelaySeconds:   DefaultMinDelaySeconds,
		MaxDelaySeconds:   DefaultMaxDelaySeconds,
		QuietHoursEnabled: true,
		QuietStartHour:    DefaultQuietStartHour,
		QuietEndHour:      DefaultQuietEndHour,
		MaxRetryAttempts:  DefaultMaxRetryAttempts,
		DisableThreshold:  DefaultDisableThreshold,
		CookieMaxAgeDays:  DefaultCookieMaxAgeDays,
		OutputTemplate:    DefaultOutputTemplate,
		DatabasePath:      DefaultDatabasePath,
		ReportPath:        DefaultReportPath,
		LogLevel:          DefaultLogLevel,
	}
}

// Load reads the YAML file at path over the defaults, then applies .env and
// environment variable overrides. A missing file is not an error; the
// defaults plus environment stand on their own.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv applies environment variable overrides to the config.
func (c *Config) applyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"YH_MIN_DELAY_SECONDS", &c.MinDelaySeconds},
		{"YH_MAX_DELAY_SECONDS", &c.MaxDelaySeconds},
		{"YH_QUIET_START_HOUR", &c.QuietStartHour},
		{"YH_QUIET_END_HOUR", &c.QuietEndHour},
		{"YH_MAX_RETRY_ATTEMPTS", &c.MaxRetryAttempts},
		{"YH_DISABLE_THRESHOLD", &c.DisableThreshold},
		{"YH_COOKIE_MAX_AGE_DAYS", &c.CookieMaxAgeDays},
	}
	for _, v := range ints {
		raw, ok := os.LookupEnv(v.key)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfiguration, v.key, raw)
		}
		*v.dst = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"YH_TIMEZONE", &c.Timezone},
		{"YH_DOWNLOAD_DIR", &c.DownloadDir},
		{"YH_OUTPUT_TEMPLATE", &c.OutputTemplate},
		{"YH_DATABASE_PATH", &c.DatabasePath},
		{"YH_REPORT_PATH", &c.ReportPath},
		{"YH_LOG_LEVEL", &c.LogLevel},
	}
	for _, v := range strs {
		if raw, ok := os.LookupEnv(v.key); ok && raw != "" {
			*v.dst = raw
		}
	}

	if raw, ok := os.LookupEnv("YH_QUIET_HOURS_ENABLED"); ok && raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: YH_QUIET_HOURS_ENABLED=%q is not a boolean", ErrInvalidConfiguration, raw)
		}
		c.QuietHoursEnabled = b
	}

	return nil
}

// Validate fails fast on configurations the scheduler cannot run with.
func (c *Config) Validate() error {
	if c.MinDelaySeconds <= 0 {
		return fmt.Errorf("%w: min_delay_seconds must be positive, got %d", ErrInvalidConfiguration, c.MinDelaySeconds)
	}
	if c.MinDelaySeconds > c.MaxDelaySeconds {
		return fmt.Errorf("%w: min_delay_seconds (%d) greater than max_delay_seconds (%d)",
			ErrInvalidConfiguration, c.MinDelaySeconds, c.MaxDelaySeconds)
	}
	if c.QuietStartHour < 0 || c.QuietStartHour > 23 {
		return fmt.Errorf("%w: quiet_start_hour must be in [0,23], got %d", ErrInvalidConfiguration, c.QuietStartHour)
	}
	if c.QuietEndHour < 0 || c.QuietEndHour > 23 {
		return fmt.Errorf("%w: quiet_end_hour must be in [0,23], got %d", ErrInvalidConfiguration, c.QuietEndHour)
	}
	if c.MaxRetryAttempts < 0 {
		return fmt.Errorf("%w: max_retry_attempts must not be negative, got %d", ErrInvalidConfiguration, c.MaxRetryAttempts)
	}
	if c.DisableThreshold < 1 {
		return fmt.Errorf("%w: consecutive_failure_disable_threshold must be at least 1, got %d",
			ErrInvalidConfiguration, c.DisableThreshold)
	}
	if len(c.CookieFiles) == 0 {
		return fmt.Errorf("%w: at least one cookie file is required", ErrInvalidConfiguration)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfiguration, c.Timezone)
	}
	return nil
}

// MinDelay returns the lower delay bound as a duration.
func (c *Config) MinDelay() time.Duration {
	return time.Duration(c.MinDelaySeconds) * time.Second
}

// MaxDelay returns the upper delay bound as a duration.
func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelaySeconds) * time.Second
}

// Location resolves the configured timezone, defaulting to system local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
