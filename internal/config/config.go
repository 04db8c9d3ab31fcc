// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/j-veylop/manx-utilities-tui/internal/services/meter"
)

// Config holds the application configuration.
type Config struct {
	Username         string
	Password         string
	CostResourceID   string
	EnergyResourceID string
	APIEndpoint      string
	ApplicationID    string
	DatabasePath     string
	HTTPAddr         string
	LogLevel         string
	LogFile          string
	// EnvFile is the .env file that was loaded, if any.
	EnvFile              string
	PollInterval         time.Duration
	// JournalRetention bounds the journal age; zero keeps everything.
	JournalRetention     time.Duration
	RequestTimeout       time.Duration
	HistoryCapacity      int
	DailyCostBudget      float64
	NotificationsEnabled bool
}

// Load reads configuration from the first .env file found and the
// environment, then validates it.
func Load() (*Config, error) {
	envFile := loadEnvFile(getEnvPaths())

	cfg := FromEnv()
	cfg.EnvFile = envFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JournalEnabled() {
		if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// FromEnv builds a Config from environment variables only.
func FromEnv() *Config {
	return &Config{
		Username:             strings.TrimSpace(os.Getenv(EnvUsername)),
		Password:             os.Getenv(EnvPassword),
		CostResourceID:       strings.TrimSpace(os.Getenv(EnvCostResourceID)),
		EnergyResourceID:     strings.TrimSpace(os.Getenv(EnvEnergyResourceID)),
		APIEndpoint:          getEnvString(EnvAPIEndpoint, meter.DefaultEndpoint),
		ApplicationID:        getEnvString(EnvApplicationID, meter.DefaultApplicationID),
		PollInterval:         getEnvDuration(EnvPollInterval, defaultPollInterval),
		RequestTimeout:       getEnvDuration(EnvRequestTimeout, defaultRequestTimeout),
		HistoryCapacity:      getEnvInt(EnvHistoryCapacity, defaultHistoryCapacity),
		DatabasePath:         getEnvString(EnvDatabasePath, getDefaultDatabasePath()),
		JournalRetention:     getEnvDuration(EnvJournalRetention, 0),
		HTTPAddr:             os.Getenv(EnvHTTPAddr),
		DailyCostBudget:      getEnvFloat(EnvDailyCostBudget, 0),
		NotificationsEnabled: getEnvBool(EnvNotificationsEnabled, true),
		LogLevel:             getEnvString(EnvLogLevel, defaultLogLevel),
		LogFile:              getEnvString(EnvLogFile, getDefaultLogPath()),
	}
}

// Validate reports every missing credential in one error and rejects
// settings the poller cannot run with.
func (c *Config) Validate() error {
	var missing []string
	for _, req := range []struct {
		key, value string
	}{
		{EnvUsername, c.Username},
		{EnvPassword, c.Password},
		{EnvCostResourceID, c.CostResourceID},
		{EnvEnergyResourceID, c.EnergyResourceID},
	} {
		if req.value == "" {
			missing = append(missing, req.key)
		}
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required settings: %s", strings.Join(missing, ", ")))
	}
	if c.PollInterval < minPollInterval {
		errs = append(errs, fmt.Errorf("%s must be at least %s, got %s", EnvPollInterval, minPollInterval, c.PollInterval))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", EnvRequestTimeout, c.RequestTimeout))
	}
	if c.HistoryCapacity <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvHistoryCapacity, c.HistoryCapacity))
	}
	if c.JournalRetention < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvJournalRetention))
	}
	if c.DailyCostBudget < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvDailyCostBudget))
	}
	return errors.Join(errs...)
}

// JournalEnabled reports whether readings should be written to SQLite.
func (c *Config) JournalEnabled() bool {
	return c.DatabasePath != "" && !strings.EqualFold(c.DatabasePath, JournalDisabled)
}

// MeterConfig returns the reading client settings.
func (c *Config) MeterConfig() meter.Config {
	return meter.Config{
		Endpoint:         c.APIEndpoint,
		ApplicationID:    c.ApplicationID,
		Username:         c.Username,
		Password:         c.Password,
		CostResourceID:   c.CostResourceID,
		EnergyResourceID: c.EnergyResourceID,
		Timeout:          c.RequestTimeout,
	}
}

// loadEnvFile loads the first existing file and returns its path.
// Variables already set in the environment take precedence.
func loadEnvFile(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				continue
			}
			return path
		}
	}
	return ""
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	paths = append(paths, filepath.Join(xdg.ConfigHome, appDir, ".env"))

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".manx-utilities", ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the readings journal.
func getDefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, appDir, "readings.db")
}

// getDefaultLogPath returns the default log file used while the TUI runs.
func getDefaultLogPath() string {
	return filepath.Join(xdg.StateHome, appDir, "mut.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30m", "90s" or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
