// Package config provides configuration loading and validation for arbitro-go.
package config

import "errors"

var (
	// ErrNoSourcesConfigured indicates that no marketplace sources are configured.
	ErrNoSourcesConfigured = errors.New("at least one source must be configured")
	// ErrInvalidRankingMode indicates that the ranking mode is invalid.
	ErrInvalidRankingMode = errors.New("invalid ranking_mode")
	// ErrInvalidSellerClass indicates an unknown seller class token.
	ErrInvalidSellerClass = errors.New("invalid seller class")
	// ErrInvalidSourceKind indicates that the source kind is invalid.
	ErrInvalidSourceKind = errors.New("invalid source kind")
	// ErrSourceNameRequired indicates that source name is required.
	ErrSourceNameRequired = errors.New("source name is required")
	// ErrInvalidRetryAttempts indicates that retry.max_attempts is out of range.
	ErrInvalidRetryAttempts = errors.New("retry.max_attempts must be >= 1")
	// ErrTargetCurrencyRequired indicates that target_currency must be specified.
	ErrTargetCurrencyRequired = errors.New("target_currency must be specified")
	// ErrInvalidMarketplace indicates an unknown marketplace token.
	ErrInvalidMarketplace = errors.New("invalid marketplace")
	// ErrSameMarketplace indicates that both comparison sides name the same marketplace.
	ErrSameMarketplace = errors.New("marketplace_a and marketplace_b must differ")
	// ErrTLSConfigIncomplete indicates that TLS config is incomplete.
	ErrTLSConfigIncomplete = errors.New("TLS cert and key must be specified when TLS is enabled")
	// ErrTLSCertNotFound indicates that the TLS cert file was not found.
	ErrTLSCertNotFound = errors.New("TLS cert file not found")
	// ErrTLSKeyNotFound indicates that the TLS key file was not found.
	ErrTLSKeyNotFound = errors.New("TLS key file not found")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
