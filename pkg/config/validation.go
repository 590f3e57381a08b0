package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if err := validateServerConfig(&cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validatePipelineConfig(&cfg.Pipeline); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}

	if len(cfg.Sources) == 0 {
		return ErrNoSourcesConfigured
	}
	for i, source := range cfg.Sources {
		if err := validateSourceConfig(&source); err != nil {
			return fmt.Errorf("source %d (%s.%s): %w", i, source.Kind, source.Name, err)
		}
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateServerConfig(cfg *ServerConfig) error {
	if cfg.HTTP.TLS.Enabled {
		if cfg.HTTP.TLS.Cert == "" || cfg.HTTP.TLS.Key == "" {
			return ErrTLSConfigIncomplete
		}
		if _, err := os.Stat(cfg.HTTP.TLS.Cert); err != nil {
			return fmt.Errorf("%w: %s", ErrTLSCertNotFound, cfg.HTTP.TLS.Cert)
		}
		if _, err := os.Stat(cfg.HTTP.TLS.Key); err != nil {
			return fmt.Errorf("%w: %s", ErrTLSKeyNotFound, cfg.HTTP.TLS.Key)
		}
	}

	return nil
}

func validatePipelineConfig(cfg *PipelineConfig) error {
	if cfg.TargetCurrency == "" {
		return ErrTargetCurrencyRequired
	}

	mode := strings.ToLower(cfg.RankingMode)
	if mode != "minimize" && mode != "maximize_gap" {
		return fmt.Errorf("%w: %s (must be 'minimize' or 'maximize_gap')", ErrInvalidRankingMode, cfg.RankingMode)
	}

	for _, class := range cfg.AllowedSellerClasses {
		switch strings.ToLower(class) {
		case "private", "professional", "power":
		default:
			return fmt.Errorf("%w: %s (must be 'private', 'professional', or 'power')", ErrInvalidSellerClass, class)
		}
	}

	if cfg.Retry.MaxAttempts < 1 {
		return ErrInvalidRetryAttempts
	}

	for _, marketplace := range []string{cfg.MarketplaceA, cfg.MarketplaceB} {
		switch strings.ToLower(marketplace) {
		case "cardkingdom", "cardmarket":
		default:
			return fmt.Errorf("%w: %s (must be 'cardkingdom' or 'cardmarket')", ErrInvalidMarketplace, marketplace)
		}
	}
	if strings.EqualFold(cfg.MarketplaceA, cfg.MarketplaceB) {
		return ErrSameMarketplace
	}

	return nil
}

func validateSourceConfig(cfg *SourceConfig) error {
	kind := strings.ToLower(cfg.Kind)
	if kind != "listing" && kind != "cards" && kind != "price" {
		return fmt.Errorf("%w: %s (must be 'listing', 'cards', or 'price')", ErrInvalidSourceKind, cfg.Kind)
	}

	if cfg.Name == "" {
		return ErrSourceNameRequired
	}

	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if strings.ToLower(cfg.Level) == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("%w: %s (must be one of: %s)", ErrInvalidLogLevel, cfg.Level, strings.Join(validLevels, ", "))
	}

	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
