package cardmarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtgtools/arbitro-go/pkg/sources"
)

func newTestSource(t *testing.T, config map[string]interface{}) sources.ListingSource {
	t.Helper()
	src, err := New(config)
	require.NoError(t, err)
	listings, ok := src.(sources.ListingSource)
	require.True(t, ok)
	return listings
}

func TestFetchListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/Products/Search"):
			assert.Equal(t, "Wrenn and Six", r.URL.Query().Get("searchString"))
			_, _ = w.Write([]byte(searchPageHTML))
		case strings.Contains(r.URL.Path, "Wrenn-and-Six"):
			_, _ = w.Write([]byte(productPageHTML))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := newTestSource(t, map[string]interface{}{
		"base_url": server.URL + "/en/Magic",
	})

	listings, err := src.FetchListings(context.Background(), "Wrenn and Six", "Chile")
	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, "CardHaus", listings[0].SellerName)
}

func TestFetchListings_CardNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptySearchHTML))
	}))
	defer server.Close()

	src := newTestSource(t, map[string]interface{}{
		"base_url": server.URL + "/en/Magic",
	})

	_, err := src.FetchListings(context.Background(), "No Such Card", "")
	assert.ErrorIs(t, err, sources.ErrCardNotFound)
}

func TestFetchListings_MaxSellersCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/Products/Search") {
			_, _ = w.Write([]byte(searchPageHTML))
			return
		}
		_, _ = w.Write([]byte(productPageHTML))
	}))
	defer server.Close()

	src := newTestSource(t, map[string]interface{}{
		"base_url":    server.URL + "/en/Magic",
		"max_sellers": 2,
	})

	listings, err := src.FetchListings(context.Background(), "Wrenn and Six", "")
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestFetchListings_ThroughProxy(t *testing.T) {
	var sawTargets []string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.URL.Query().Get("api_key"))
		require.Equal(t, "true", r.URL.Query().Get("render"))
		target := r.URL.Query().Get("url")
		sawTargets = append(sawTargets, target)
		if strings.Contains(target, "searchString") {
			_, _ = w.Write([]byte(searchPageHTML))
			return
		}
		_, _ = w.Write([]byte(productPageHTML))
	}))
	defer proxy.Close()

	src := newTestSource(t, map[string]interface{}{
		"api_key":   "secret",
		"proxy_url": proxy.URL,
	})

	listings, err := src.FetchListings(context.Background(), "Wrenn and Six", "")
	require.NoError(t, err)
	assert.Len(t, listings, 3)
	require.Len(t, sawTargets, 2)
	assert.Contains(t, sawTargets[0], "cardmarket.com")
	assert.Contains(t, sawTargets[1], "Wrenn-and-Six")
}

func TestFetchListings_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	src := newTestSource(t, map[string]interface{}{
		"base_url": server.URL + "/en/Magic",
	})

	_, err := src.FetchListings(context.Background(), "Wrenn and Six", "")
	assert.ErrorIs(t, err, sources.ErrRateLimitExceeded)
}
