package sources

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mtgtools/arbitro-go/pkg/money"
)

// Kind classifies what a source supplies.
type Kind string

const (
	// KindListing supplies per-seller listings for one card on one marketplace.
	KindListing Kind = "listing"
	// KindCards supplies ranked card names.
	KindCards Kind = "cards"
	// KindPrice supplies a single marketplace price per card.
	KindPrice Kind = "price"
)

// Marketplace identifies a priced storefront.
type Marketplace string

const (
	MarketplaceCardKingdom Marketplace = "cardkingdom"
	MarketplaceCardmarket  Marketplace = "cardmarket"
)

// RawListing is one scraped seller row before validation. The engine validates
// every field at the ingestion boundary; adapters only extract, they never
// guess missing values.
type RawListing struct {
	SellerID      string
	SellerName    string
	SellerClass   string // raw class token, e.g. "Professional"
	Country       string
	ShipsTo       bool
	ItemPrice     decimal.Decimal
	ShippingPrice decimal.Decimal
	Currency      string
	SourceURL     string
}

// Source is the base contract shared by all adapters. Callers type-assert to
// the fetch interface matching the source's kind.
type Source interface {
	Name() string
	Kind() Kind
}

// ListingSource fetches per-seller listings for a card.
type ListingSource interface {
	Source
	// FetchListings returns raw seller rows for the card. It fails with
	// ErrCardNotFound when the marketplace has no such card and with
	// ErrSourceUnavailable (possibly wrapped transport errors) otherwise.
	FetchListings(ctx context.Context, cardName, destinationCountry string) ([]RawListing, error)
}

// CardListSource fetches the current top-N card names.
type CardListSource interface {
	Source
	FetchTopCards(ctx context.Context, n int) ([]string, error)
}

// PriceSource fetches one marketplace's price for a card. A missing price is
// reported as ok=false with a nil error; it is absence, not failure.
type PriceSource interface {
	Source
	FetchPrice(ctx context.Context, cardName string, marketplace Marketplace) (money.Money, bool, error)
}

// Factory creates a source instance from its configuration map.
type Factory func(config map[string]interface{}) (Source, error)
