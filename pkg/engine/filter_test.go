package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtgtools/arbitro-go/pkg/money"
)

func testOffer(t *testing.T, sellerID string, class SellerClass, shipsTo bool, item string) Offer {
	t.Helper()
	price, err := money.FromString(item, "EUR")
	require.NoError(t, err)
	return Offer{
		SellerID:           sellerID,
		SellerName:         sellerID,
		SellerClass:        class,
		ShipsToDestination: shipsTo,
		ItemPrice:          price,
		ShippingPrice:      money.Zero("EUR"),
		Marketplace:        "cardmarket",
	}
}

func TestFilter_IsOrderPreservingSubset(t *testing.T) {
	offers := []Offer{
		testOffer(t, "zeta", SellerClassProfessional, true, "5"),
		testOffer(t, "alpha", SellerClassPrivate, true, "3"),
		testOffer(t, "mid", SellerClassPower, true, "4"),
		testOffer(t, "beta", SellerClassProfessional, true, "6"),
	}

	got := Filter(offers, Constraints{
		AllowedSellerClasses: []SellerClass{SellerClassProfessional, SellerClassPower},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "zeta", got[0].SellerID)
	assert.Equal(t, "mid", got[1].SellerID)
	assert.Equal(t, "beta", got[2].SellerID)
}

func TestFilter_RequireShipsTo(t *testing.T) {
	offers := []Offer{
		testOffer(t, "ships", SellerClassProfessional, true, "5"),
		testOffer(t, "noship", SellerClassProfessional, false, "4"),
	}

	got := Filter(offers, Constraints{
		AllowedSellerClasses: AllClasses(),
		RequireShipsTo:       true,
	})

	require.Len(t, got, 1)
	assert.Equal(t, "ships", got[0].SellerID)
}

func TestFilter_EmptyAllowedSetExcludesAll(t *testing.T) {
	offers := []Offer{
		testOffer(t, "a", SellerClassPrivate, true, "5"),
		testOffer(t, "b", SellerClassPower, true, "4"),
	}

	got := Filter(offers, Constraints{})
	assert.Empty(t, got)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	offers := []Offer{
		testOffer(t, "a", SellerClassPrivate, true, "5"),
		testOffer(t, "b", SellerClassProfessional, true, "4"),
	}

	_ = Filter(offers, Constraints{AllowedSellerClasses: []SellerClass{SellerClassProfessional}})

	require.Len(t, offers, 2)
	assert.Equal(t, "a", offers[0].SellerID)
	assert.Equal(t, "b", offers[1].SellerID)
}

func TestPartition_BothSidesOrdered(t *testing.T) {
	offers := []Offer{
		testOffer(t, "a", SellerClassPrivate, true, "5"),
		testOffer(t, "b", SellerClassProfessional, true, "4"),
		testOffer(t, "c", SellerClassPrivate, true, "3"),
	}

	eligible, excluded := partition(offers, Constraints{
		AllowedSellerClasses: []SellerClass{SellerClassProfessional},
	})

	require.Len(t, eligible, 1)
	assert.Equal(t, "b", eligible[0].SellerID)
	require.Len(t, excluded, 2)
	assert.Equal(t, "a", excluded[0].SellerID)
	assert.Equal(t, "c", excluded[1].SellerID)
}

func TestOfferTotalPrice(t *testing.T) {
	o := testOffer(t, "a", SellerClassPrivate, true, "5.50")
	shipping, err := money.FromString("1.25", "EUR")
	require.NoError(t, err)
	o.ShippingPrice = shipping

	total, err := o.TotalPrice()
	require.NoError(t, err)
	assert.True(t, total.Amount.Equal(decimal.RequireFromString("6.75")))
	assert.Equal(t, "EUR", total.Currency)
}
