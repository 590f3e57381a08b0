// Package sources defines the external data-source contracts consumed by the
// offer engine, plus the registry used to build adapters from configuration.
package sources

import "errors"

var (
	// ErrCardNotFound indicates that the queried card has no listings at all.
	// It is terminal: the pipeline reports it without retrying.
	ErrCardNotFound = errors.New("card not found")
	// ErrSourceUnavailable indicates that an external source failed after the
	// retries were exhausted.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrRateLimitExceeded indicates that a rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidResponse indicates an invalid response from the source.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrInvalidConfig indicates that the source configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownMarketplace indicates a marketplace the source cannot price.
	ErrUnknownMarketplace = errors.New("unknown marketplace")
)
