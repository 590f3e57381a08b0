// Package money provides a currency-safe monetary value type.
//
// Amounts are decimal, never binary floating point, so repeated conversions
// do not accumulate rounding error. Any operation combining or comparing two
// values requires identical currency codes; mixing currencies without an
// explicit conversion fails with ErrCurrencyMismatch.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money pairs a non-negative decimal amount with an ISO-style currency code.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// New creates a Money value. The currency code is upper-cased.
func New(amount decimal.Decimal, currency string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return Money{}, fmt.Errorf("%w: empty code", ErrInvalidCurrency)
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s %s", ErrNegativeAmount, amount.String(), code)
	}
	return Money{Amount: amount, Currency: code}, nil
}

// FromString parses a decimal amount string into a Money value.
func FromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return New(d, currency)
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	m, _ := New(decimal.Zero, currency)
	return m
}

// Add returns m + other. Both values must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: add %s and %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Diff returns the signed difference m - other as a bare decimal.
// The result is not a Money value because a difference may be negative.
func (m Money) Diff(other Money) (decimal.Decimal, error) {
	if m.Currency != other.Currency {
		return decimal.Decimal{}, fmt.Errorf("%w: diff %s and %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return m.Amount.Sub(other.Amount), nil
}

// Cmp compares two values of the same currency.
// Returns -1 if m < other, 0 if equal, 1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if m.Currency != other.Currency {
		return 0, fmt.Errorf("%w: compare %s and %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return m.Amount.Cmp(other.Amount), nil
}

// Equal reports whether two values have the same currency and amount.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}
