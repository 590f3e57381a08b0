package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFrankfurterProvider_GetRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from") != "USD" || r.URL.Query().Get("to") != "CLP" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","date":"2023-11-10","rates":{"CLP":900.0}}`))
	}))
	defer server.Close()

	provider := NewFrankfurterProvider(server.URL, 5*time.Second, nil)

	rate, err := provider.GetRate(context.Background(), "USD", "CLP")
	if err != nil {
		t.Fatalf("GetRate failed: %v", err)
	}
	if rate.From != "USD" || rate.To != "CLP" {
		t.Errorf("unexpected pair: %s/%s", rate.From, rate.To)
	}
	if !rate.Value.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected rate 900, got %s", rate.Value.String())
	}
	if rate.AsOf.Format("2006-01-02") != "2023-11-10" {
		t.Errorf("expected as-of date 2023-11-10, got %s", rate.AsOf)
	}
}

func TestFrankfurterProvider_MissingPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","date":"2023-11-10","rates":{}}`))
	}))
	defer server.Close()

	provider := NewFrankfurterProvider(server.URL, 5*time.Second, nil)

	_, err := provider.GetRate(context.Background(), "USD", "CLP")
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestFrankfurterProvider_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewFrankfurterProvider(server.URL, 5*time.Second, nil)

	_, err := provider.GetRate(context.Background(), "USD", "CLP")
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestFrankfurterProvider_IdentityPairNoNetworkCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer server.Close()

	provider := NewFrankfurterProvider(server.URL, 5*time.Second, nil)

	rate, err := provider.GetRate(context.Background(), "EUR", "EUR")
	if err != nil {
		t.Fatalf("GetRate failed: %v", err)
	}
	if !rate.Value.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected identity rate 1, got %s", rate.Value.String())
	}
	if called {
		t.Error("identity conversion must not hit the network")
	}
}
