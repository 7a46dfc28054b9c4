package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Dispatch.ComplianceWarnDays == 0 {
		cfg.Dispatch.ComplianceWarnDays = 30
	}
	if cfg.Dispatch.MaxRetries == 0 {
		cfg.Dispatch.MaxRetries = 3
	}
	if cfg.Dispatch.RetryBaseDelay == 0 {
		cfg.Dispatch.RetryBaseDelay = 1 * time.Second
	}
	if cfg.Dispatch.RetryMaxDelay == 0 {
		cfg.Dispatch.RetryMaxDelay = 10 * time.Second
	}
	if cfg.Dispatch.ErrorLogSize == 0 {
		cfg.Dispatch.ErrorLogSize = 50
	}
}
