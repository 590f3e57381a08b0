package engine

import (
	"fmt"
	"strings"

	"github.com/mtgtools/arbitro-go/pkg/money"
	"github.com/mtgtools/arbitro-go/pkg/sources"
)

// SellerClass is the marketplace's classification of a seller.
type SellerClass string

const (
	SellerClassPrivate      SellerClass = "private"
	SellerClassProfessional SellerClass = "professional"
	SellerClassPower        SellerClass = "power"
)

// ParseSellerClass maps a raw marketplace badge token to a SellerClass.
func ParseSellerClass(s string) (SellerClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "private", "":
		// Unbadged sellers are private individuals.
		return SellerClassPrivate, nil
	case "professional", "pro":
		return SellerClassProfessional, nil
	case "power", "powerseller":
		return SellerClassPower, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSellerClass, s)
	}
}

// Offer is one seller's priced listing for a card, normalized from a raw
// scraped row. Offers are immutable once constructed and live only for the
// duration of a single pipeline run.
type Offer struct {
	SellerID           string      `json:"seller_id"`
	SellerName         string      `json:"seller_name"`
	SellerClass        SellerClass `json:"seller_class"`
	ShipsToDestination bool        `json:"ships_to_destination"`
	ItemPrice          money.Money `json:"item_price"`
	ShippingPrice      money.Money `json:"shipping_price"`
	Marketplace        string      `json:"marketplace"`
	SourceURL          string      `json:"source_url"`
}

// TotalPrice is the landed cost of the offer in its native currency.
func (o Offer) TotalPrice() (money.Money, error) {
	return o.ItemPrice.Add(o.ShippingPrice)
}

// OfferFromRaw validates a raw listing row and builds an Offer. This is the
// ingestion boundary: nothing untyped or unchecked passes beyond it.
func OfferFromRaw(raw sources.RawListing, marketplace string) (Offer, error) {
	name := strings.TrimSpace(raw.SellerName)
	if name == "" {
		return Offer{}, fmt.Errorf("%w: missing seller name", ErrInvalidListing)
	}

	id := strings.TrimSpace(raw.SellerID)
	if id == "" {
		id = strings.ToLower(name)
	}

	class, err := ParseSellerClass(raw.SellerClass)
	if err != nil {
		return Offer{}, fmt.Errorf("%w: seller %q: %v", ErrInvalidListing, name, err)
	}

	item, err := money.New(raw.ItemPrice, raw.Currency)
	if err != nil {
		return Offer{}, fmt.Errorf("%w: seller %q: item price: %v", ErrInvalidListing, name, err)
	}

	shipping, err := money.New(raw.ShippingPrice, raw.Currency)
	if err != nil {
		return Offer{}, fmt.Errorf("%w: seller %q: shipping price: %v", ErrInvalidListing, name, err)
	}

	return Offer{
		SellerID:           id,
		SellerName:         name,
		SellerClass:        class,
		ShipsToDestination: raw.ShipsTo,
		ItemPrice:          item,
		ShippingPrice:      shipping,
		Marketplace:        marketplace,
		SourceURL:          raw.SourceURL,
	}, nil
}

// PriceQuote is one card's price on two marketplaces. A nil side means the
// marketplace has no price for the card; that is absence, not zero.
type PriceQuote struct {
	CardName string       `json:"card_name"`
	SourceA  *money.Money `json:"source_a,omitempty"`
	SourceB  *money.Money `json:"source_b,omitempty"`
}
