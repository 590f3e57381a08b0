package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtgtools/arbitro-go/pkg/sources"
)

const boltJSON = `{
	"name": "Lightning Bolt",
	"prices": {"usd": "1.50", "eur": "1.20", "tix": "0.03"}
}`

const noEurJSON = `{
	"name": "Obscure Card",
	"prices": {"usd": "0.25", "eur": null}
}`

func newTestSource(t *testing.T, baseURL string) sources.PriceSource {
	t.Helper()
	src, err := New(map[string]interface{}{
		"base_url":     baseURL,
		"min_interval": 0,
	})
	require.NoError(t, err)
	prices, ok := src.(sources.PriceSource)
	require.True(t, ok)
	return prices
}

func TestFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cards/named", r.URL.Path)
		require.Equal(t, "Lightning Bolt", r.URL.Query().Get("exact"))
		_, _ = w.Write([]byte(boltJSON))
	}))
	defer server.Close()

	src := newTestSource(t, server.URL)

	usd, ok, err := src.FetchPrice(context.Background(), "Lightning Bolt", sources.MarketplaceCardKingdom)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "USD", usd.Currency)
	assert.True(t, usd.Amount.Equal(decimal.RequireFromString("1.50")))

	eur, ok, err := src.FetchPrice(context.Background(), "Lightning Bolt", sources.MarketplaceCardmarket)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "EUR", eur.Currency)
	assert.True(t, eur.Amount.Equal(decimal.RequireFromString("1.20")))
}

func TestFetchPrice_NotFoundIsAbsence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"object":"error","code":"not_found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, ok, err := newTestSource(t, server.URL).FetchPrice(context.Background(), "No Such Card", sources.MarketplaceCardKingdom)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetchPrice_NullPriceIsAbsence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(noEurJSON))
	}))
	defer server.Close()

	src := newTestSource(t, server.URL)

	_, ok, err := src.FetchPrice(context.Background(), "Obscure Card", sources.MarketplaceCardmarket)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = src.FetchPrice(context.Background(), "Obscure Card", sources.MarketplaceCardKingdom)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFetchPrice_UnknownMarketplace(t *testing.T) {
	src := newTestSource(t, "http://unused.invalid")
	_, _, err := src.FetchPrice(context.Background(), "Card", sources.Marketplace("tcgplayer"))
	assert.ErrorIs(t, err, sources.ErrUnknownMarketplace)
}

func TestFetchPrice_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, _, err := newTestSource(t, server.URL).FetchPrice(context.Background(), "Card", sources.MarketplaceCardKingdom)
	assert.ErrorIs(t, err, sources.ErrRateLimitExceeded)
}

func TestThrottle_SpacesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(boltJSON))
	}))
	defer server.Close()

	src, err := New(map[string]interface{}{
		"base_url":     server.URL,
		"min_interval": 20,
	})
	require.NoError(t, err)
	prices := src.(sources.PriceSource)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, _, err := prices.FetchPrice(context.Background(), "Lightning Bolt", sources.MarketplaceCardKingdom)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
