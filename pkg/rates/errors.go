// Package rates provides exchange-rate lookup for currency conversion.
package rates

import "errors"

var (
	// ErrRateUnavailable indicates that the upstream rate source errored or
	// returned no rate for the requested pair.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	// ErrInvalidRate indicates a non-positive or malformed conversion rate.
	ErrInvalidRate = errors.New("invalid conversion rate")
)
