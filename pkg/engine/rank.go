package engine

import (
	"fmt"
	"sort"
)

// Mode selects the ranking objective.
type Mode string

const (
	// ModeMinimize ranks offers by ascending total price.
	ModeMinimize Mode = "minimize"
	// ModeMaximizeGap ranks quotes by descending price gap between sources.
	ModeMaximizeGap Mode = "maximize_gap"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMinimize:
		return ModeMinimize, nil
	case ModeMaximizeGap:
		return ModeMaximizeGap, nil
	default:
		return "", fmt.Errorf("unknown ranking mode %q", s)
	}
}

// RankedOffer is a normalized offer with its dense rank assigned.
type RankedOffer struct {
	NormalizedOffer
	Rank int `json:"rank"`
}

// RankedQuote is a complete normalized quote with its dense rank assigned.
type RankedQuote struct {
	NormalizedQuote
	Rank int `json:"rank"`
}

// RankOffers orders offers by ascending total price. Ties break on seller ID
// lexically; equal seller IDs keep their input order. Ranks are dense: equal
// totals share a rank and the next distinct total gets rank+1. All totals
// are in the normalizer's target currency, so amounts compare directly.
func RankOffers(offers []NormalizedOffer) []RankedOffer {
	sorted := make([]NormalizedOffer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := sorted[i].Total.Amount.Cmp(sorted[j].Total.Amount)
		if c != 0 {
			return c < 0
		}
		return sorted[i].Offer.SellerID < sorted[j].Offer.SellerID
	})

	out := make([]RankedOffer, 0, len(sorted))
	rank := 0
	for i, o := range sorted {
		if i == 0 || sorted[i-1].Total.Amount.Cmp(o.Total.Amount) != 0 {
			rank++
		}
		out = append(out, RankedOffer{NormalizedOffer: o, Rank: rank})
	}
	return out
}

// RankQuotes orders complete quotes by descending gap, ties on card name.
// Incomplete quotes are skipped; the caller reports them separately.
func RankQuotes(quotes []NormalizedQuote) []RankedQuote {
	complete := make([]NormalizedQuote, 0, len(quotes))
	for _, q := range quotes {
		if !q.Incomplete {
			complete = append(complete, q)
		}
	}
	sort.SliceStable(complete, func(i, j int) bool {
		c := complete[i].Gap.Cmp(complete[j].Gap)
		if c != 0 {
			return c > 0
		}
		return complete[i].CardName < complete[j].CardName
	})

	out := make([]RankedQuote, 0, len(complete))
	rank := 0
	for i, q := range complete {
		if i == 0 || complete[i-1].Gap.Cmp(q.Gap) != 0 {
			rank++
		}
		out = append(out, RankedQuote{NormalizedQuote: q, Rank: rank})
	}
	return out
}
