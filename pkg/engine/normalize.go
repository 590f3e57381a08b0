package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mtgtools/arbitro-go/pkg/money"
	"github.com/mtgtools/arbitro-go/pkg/rates"
)

// NormalizedOffer is an offer with its total price expressed in the
// normalizer's target currency.
type NormalizedOffer struct {
	Offer Offer       `json:"offer"`
	Total money.Money `json:"total"`
}

// NormalizedQuote is a dual-marketplace quote with both sides expressed in
// the target currency. Incomplete quotes are retained for reporting but
// never ranked.
type NormalizedQuote struct {
	CardName   string          `json:"card_name"`
	SourceA    *money.Money    `json:"source_a,omitempty"`
	SourceB    *money.Money    `json:"source_b,omitempty"`
	Gap        decimal.Decimal `json:"gap"`
	Currency   string          `json:"currency"`
	Incomplete bool            `json:"incomplete"`
	Reason     string          `json:"reason,omitempty"`
}

const (
	reasonMissingA    = "no price on source A"
	reasonMissingB    = "no price on source B"
	reasonMissingBoth = "no price on either source"
)

// Normalizer converts offer and quote prices into a single target currency
// using a per-run rate provider.
type Normalizer struct {
	target string
	rates  rates.Provider
}

func NewNormalizer(target string, provider rates.Provider) *Normalizer {
	return &Normalizer{target: target, rates: provider}
}

func (n *Normalizer) Target() string {
	return n.target
}

func (n *Normalizer) convert(ctx context.Context, m money.Money) (money.Money, error) {
	if m.Currency == n.target {
		return m, nil
	}
	rate, err := n.rates.GetRate(ctx, m.Currency, n.target)
	if err != nil {
		return money.Money{}, err
	}
	return rate.Apply(m)
}

// NormalizeOffer converts the item and shipping prices independently and
// sums them in the target currency.
func (n *Normalizer) NormalizeOffer(ctx context.Context, o Offer) (NormalizedOffer, error) {
	item, err := n.convert(ctx, o.ItemPrice)
	if err != nil {
		return NormalizedOffer{}, fmt.Errorf("convert item price for seller %s: %w", o.SellerID, err)
	}
	shipping, err := n.convert(ctx, o.ShippingPrice)
	if err != nil {
		return NormalizedOffer{}, fmt.Errorf("convert shipping price for seller %s: %w", o.SellerID, err)
	}
	total, err := item.Add(shipping)
	if err != nil {
		return NormalizedOffer{}, err
	}
	return NormalizedOffer{Offer: o, Total: total}, nil
}

// NormalizeOffers converts a batch of offers. A rate failure aborts the
// whole batch since partial normalization cannot be ranked consistently.
func (n *Normalizer) NormalizeOffers(ctx context.Context, offers []Offer) ([]NormalizedOffer, error) {
	out := make([]NormalizedOffer, 0, len(offers))
	for _, o := range offers {
		no, err := n.NormalizeOffer(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, no)
	}
	return out, nil
}

// NormalizeQuote converts both sides of a quote and computes the signed gap
// (side A minus side B). A quote missing either side becomes incomplete with
// a zero gap and is left for the caller to report but not rank.
func (n *Normalizer) NormalizeQuote(ctx context.Context, q PriceQuote) (NormalizedQuote, error) {
	out := NormalizedQuote{CardName: q.CardName, Currency: n.target}

	if q.SourceA != nil {
		a, err := n.convert(ctx, *q.SourceA)
		if err != nil {
			return NormalizedQuote{}, fmt.Errorf("convert %s price for %q: %w", q.SourceA.Currency, q.CardName, err)
		}
		out.SourceA = &a
	}
	if q.SourceB != nil {
		b, err := n.convert(ctx, *q.SourceB)
		if err != nil {
			return NormalizedQuote{}, fmt.Errorf("convert %s price for %q: %w", q.SourceB.Currency, q.CardName, err)
		}
		out.SourceB = &b
	}

	switch {
	case out.SourceA == nil && out.SourceB == nil:
		out.Incomplete = true
		out.Reason = reasonMissingBoth
	case out.SourceA == nil:
		out.Incomplete = true
		out.Reason = reasonMissingA
	case out.SourceB == nil:
		out.Incomplete = true
		out.Reason = reasonMissingB
	default:
		gap, err := out.SourceA.Diff(*out.SourceB)
		if err != nil {
			return NormalizedQuote{}, err
		}
		out.Gap = gap
	}
	return out, nil
}
