package config

import (
	"time"

	redisclient "github.com/loadline/dispatch/internal/infra/redis"
	"github.com/loadline/dispatch/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Dispatch DispatchConfig     `yaml:"dispatch"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DispatchConfig tunes the rules engine and recovery policy.
type DispatchConfig struct {
	// ComplianceWarnDays is how many days ahead of a credential or
	// inspection deadline warnings begin.
	ComplianceWarnDays int `yaml:"compliance_warn_days"`

	// MaxRetries bounds cumulative retries per operation id.
	MaxRetries int `yaml:"max_retries"`

	// RetryBaseDelay seeds the retry backoff.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`

	// RetryMaxDelay caps the retry backoff.
	RetryMaxDelay time.Duration `yaml:"retry_max_delay"`

	// ErrorLogSize bounds the rolling classified-error log.
	ErrorLogSize int `yaml:"error_log_size"`
}
