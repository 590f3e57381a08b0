// Package engine implements the offer aggregation and best-choice pipeline:
// eligibility filtering, price normalization, deterministic ranking and the
// orchestration around them.
package engine

import "errors"

var (
	// ErrTimeout indicates that the run-level deadline elapsed before ranking.
	ErrTimeout = errors.New("run deadline exceeded")
	// ErrInvalidListing indicates a raw listing rejected at the ingestion boundary.
	ErrInvalidListing = errors.New("invalid listing record")
	// ErrInvalidSellerClass indicates an unrecognized seller class token.
	ErrInvalidSellerClass = errors.New("invalid seller class")
	// ErrNotConfigured indicates a pipeline entry point whose source dependency
	// was not provided.
	ErrNotConfigured = errors.New("pipeline dependency not configured")
	// ErrEmptyCardName indicates a query without a card name.
	ErrEmptyCardName = errors.New("card name is empty")
)
