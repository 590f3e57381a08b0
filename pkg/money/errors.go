// Package money provides a currency-safe monetary value type.
package money

import "errors"

var (
	// ErrCurrencyMismatch indicates that two values of different currencies
	// were combined or compared without an explicit conversion.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrNegativeAmount indicates a negative monetary amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrInvalidCurrency indicates an empty or malformed currency code.
	ErrInvalidCurrency = errors.New("invalid currency code")
)
