package config

import "time"

// Config is the root configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Sources  []SourceConfig `yaml:"sources"`
	Rates    RatesConfig    `yaml:"rates"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	HTTP      HTTPConfig `yaml:"http"`
	WebSocket WSConfig   `yaml:"websocket"`
	CacheTTL  Duration   `yaml:"cache_ttl"`
}

// HTTPConfig configures the HTTP server
type HTTPConfig struct {
	Addr string    `yaml:"addr"`
	TLS  TLSConfig `yaml:"tls"`
}

// WSConfig configures the WebSocket progress feed
type WSConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TLSConfig holds TLS certificate configuration
type TLSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
}

// PipelineConfig configures the aggregation pipeline
type PipelineConfig struct {
	TargetCurrency       string      `yaml:"target_currency"`
	DestinationCountry   string      `yaml:"destination_country"`
	AllowedSellerClasses []string    `yaml:"allowed_seller_classes"`
	RequireShipsTo       bool        `yaml:"require_ships_to"`
	RankingMode          string      `yaml:"ranking_mode"`
	Retry                RetryConfig `yaml:"retry"`
	CallTimeout          Duration    `yaml:"call_timeout"`
	RunTimeout           Duration    `yaml:"run_timeout"`
	MarketplaceA         string      `yaml:"marketplace_a"`
	MarketplaceB         string      `yaml:"marketplace_b"`
	TopCards             int         `yaml:"top_cards"`
}

// RetryConfig bounds retries for source fetches
type RetryConfig struct {
	MaxAttempts    int      `yaml:"max_attempts"`
	InitialBackoff Duration `yaml:"initial_backoff"`
	MaxBackoff     Duration `yaml:"max_backoff"`
}

// SourceConfig configures a marketplace source
type SourceConfig struct {
	Kind    string                 `yaml:"kind"`
	Name    string                 `yaml:"name"`
	Enabled bool                   `yaml:"enabled"`
	Config  map[string]interface{} `yaml:"config"`
}

// RatesConfig configures the exchange-rate provider
type RatesConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
