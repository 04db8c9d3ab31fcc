package config

import "time"

// appDir is the directory name used under each XDG base directory.
const appDir = "manx-utilities-tui"

// JournalDisabled is the DATABASE_PATH value that turns the journal off.
const JournalDisabled = "off"

// Environment variable names.
const (
	EnvUsername             = "MANX_USERNAME"
	EnvPassword             = "MANX_PASSWORD"
	EnvCostResourceID       = "MANX_COST_RESOURCE_ID"
	EnvEnergyResourceID     = "MANX_ENERGY_RESOURCE_ID"
	EnvAPIEndpoint          = "MANX_API_ENDPOINT"
	EnvApplicationID        = "MANX_APPLICATION_ID"
	EnvPollInterval         = "POLL_INTERVAL"
	EnvRequestTimeout       = "REQUEST_TIMEOUT"
	EnvHistoryCapacity      = "HISTORY_CAPACITY"
	EnvDatabasePath         = "DATABASE_PATH"
	EnvHTTPAddr             = "HTTP_ADDR"
	EnvDailyCostBudget      = "DAILY_COST_BUDGET"
	EnvJournalRetention     = "JOURNAL_RETENTION"
	EnvNotificationsEnabled = "NOTIFICATIONS_ENABLED"
	EnvLogLevel             = "LOG_LEVEL"
	EnvLogFile              = "LOG_FILE"
)

// Default values
const (
	defaultPollInterval    = 30 * time.Minute
	defaultRequestTimeout  = 30 * time.Second
	defaultHistoryCapacity = 2880
	defaultLogLevel        = "info"
	minPollInterval        = time.Minute
)
