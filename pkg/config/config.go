// Package config provides configuration loading and validation for arbitro-go.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from YAML file and environment variables.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = ":8080"
	}
	if cfg.Server.CacheTTL.ToDuration() == 0 {
		cfg.Server.CacheTTL = Duration(60 * 1e9) // 60 seconds
	}

	// Pipeline defaults
	if cfg.Pipeline.TargetCurrency == "" {
		cfg.Pipeline.TargetCurrency = "EUR"
	}
	if len(cfg.Pipeline.AllowedSellerClasses) == 0 {
		cfg.Pipeline.AllowedSellerClasses = []string{"private", "professional", "power"}
	}
	if cfg.Pipeline.RankingMode == "" {
		cfg.Pipeline.RankingMode = "minimize"
	}
	if cfg.Pipeline.Retry.MaxAttempts == 0 {
		cfg.Pipeline.Retry.MaxAttempts = 3
	}
	if cfg.Pipeline.Retry.InitialBackoff.ToDuration() == 0 {
		cfg.Pipeline.Retry.InitialBackoff = Duration(1e9) // 1 second
	}
	if cfg.Pipeline.Retry.MaxBackoff.ToDuration() == 0 {
		cfg.Pipeline.Retry.MaxBackoff = Duration(30 * 1e9) // 30 seconds
	}
	if cfg.Pipeline.CallTimeout.ToDuration() == 0 {
		cfg.Pipeline.CallTimeout = Duration(60 * 1e9) // 60 seconds
	}
	if cfg.Pipeline.RunTimeout.ToDuration() == 0 {
		cfg.Pipeline.RunTimeout = Duration(600 * 1e9) // 10 minutes
	}
	if cfg.Pipeline.MarketplaceA == "" {
		cfg.Pipeline.MarketplaceA = "cardkingdom"
	}
	if cfg.Pipeline.MarketplaceB == "" {
		cfg.Pipeline.MarketplaceB = "cardmarket"
	}
	if cfg.Pipeline.TopCards == 0 {
		cfg.Pipeline.TopCards = 50
	}

	// Rates defaults
	if cfg.Rates.URL == "" {
		cfg.Rates.URL = "https://api.frankfurter.app"
	}
	if cfg.Rates.Timeout.ToDuration() == 0 {
		cfg.Rates.Timeout = Duration(10 * 1e9) // 10 seconds
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// GetString retrieves a string value from the source configuration.
func (sc *SourceConfig) GetString(key, defaultValue string) string {
	if val, ok := sc.Config[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultValue
}

// GetStringSlice retrieves a string slice from source config.
func (sc *SourceConfig) GetStringSlice(key string) []string {
	if val, ok := sc.Config[key]; ok {
		if slice, ok := val.([]interface{}); ok {
			result := make([]string, 0, len(slice))
			for _, item := range slice {
				if str, ok := item.(string); ok {
					result = append(result, str)
				}
			}
			return result
		}
	}
	return nil
}

// GetInt retrieves an integer from source config.
func (sc *SourceConfig) GetInt(key string, defaultValue int) int {
	if val, ok := sc.Config[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean from source config.
func (sc *SourceConfig) GetBool(key string, defaultValue bool) bool {
	if val, ok := sc.Config[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultValue
}

// EnabledSources returns the enabled source configurations.
func (c *Config) EnabledSources() []SourceConfig {
	enabled := make([]SourceConfig, 0, len(c.Sources))
	for _, sc := range c.Sources {
		if sc.Enabled {
			enabled = append(enabled, sc)
		}
	}
	return enabled
}
