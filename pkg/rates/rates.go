// Package rates provides exchange-rate lookup for currency conversion.
//
// A Provider supplies a conversion rate between two currency codes, valid at
// call time. The Memo wrapper guarantees that within a single pipeline run a
// pair is fetched at most once and the same rate is reused for every record,
// so a rate can never change mid-comparison.
package rates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtgtools/arbitro-go/pkg/money"
)

// Rate is a conversion rate between two currencies at a point in time.
type Rate struct {
	From  string          `json:"from"`
	To    string          `json:"to"`
	Value decimal.Decimal `json:"value"`
	AsOf  time.Time       `json:"as_of"`
}

// Provider supplies conversion rates. Implementations may hit the network;
// callers are expected to wrap a Provider in a Memo for the duration of a run.
type Provider interface {
	// GetRate returns the conversion rate from one currency to another.
	// It fails with ErrRateUnavailable when the upstream source errors or
	// has no rate for the pair.
	GetRate(ctx context.Context, from, to string) (Rate, error)
}

// NewRate builds a validated Rate. The value must be positive.
func NewRate(from, to string, value decimal.Decimal, asOf time.Time) (Rate, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return Rate{}, fmt.Errorf("%w: empty currency code", ErrInvalidRate)
	}
	if !value.IsPositive() {
		return Rate{}, fmt.Errorf("%w: %s for %s/%s", ErrInvalidRate, value.String(), from, to)
	}
	return Rate{From: from, To: to, Value: value, AsOf: asOf}, nil
}

// Identity returns the rate 1 from a currency to itself.
func Identity(currency string) Rate {
	code := strings.ToUpper(strings.TrimSpace(currency))
	return Rate{From: code, To: code, Value: decimal.NewFromInt(1), AsOf: time.Now()}
}

// Apply converts a monetary value using this rate. The value's currency must
// match the rate's From currency.
func (r Rate) Apply(m money.Money) (money.Money, error) {
	if m.Currency != r.From {
		return money.Money{}, fmt.Errorf("%w: money in %s, rate is %s/%s",
			money.ErrCurrencyMismatch, m.Currency, r.From, r.To)
	}
	return money.New(m.Amount.Mul(r.Value), r.To)
}
