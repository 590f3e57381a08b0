// Package scryfall fetches marketplace prices from the Scryfall API.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mtgtools/arbitro-go/pkg/logging"
	"github.com/mtgtools/arbitro-go/pkg/money"
	"github.com/mtgtools/arbitro-go/pkg/sources"
	"github.com/mtgtools/arbitro-go/pkg/version"
)

const (
	defaultBaseURL = "https://api.scryfall.com"
	defaultTimeout = 15 * time.Second

	// Scryfall asks clients for 50-100ms between requests.
	defaultMinInterval = 100 * time.Millisecond
)

// Source queries Scryfall's named-card endpoint. Scryfall carries both
// Card Kingdom (USD) and Cardmarket (EUR) prices, so one source serves both
// sides of a comparison.
type Source struct {
	name    string
	logger  *logging.Logger
	client  *http.Client
	baseURL string

	mu          sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

type cardResponse struct {
	Name   string `json:"name"`
	Prices struct {
		USD *string `json:"usd"`
		EUR *string `json:"eur"`
	} `json:"prices"`
}

// New creates a Scryfall price source from its configuration map.
func New(config map[string]interface{}) (sources.Source, error) {
	logger := sources.GetLoggerFromConfig(config)

	return &Source{
		name:        "scryfall",
		logger:      logger,
		client:      &http.Client{Timeout: sources.GetDurationFromConfig(config, "timeout", defaultTimeout)},
		baseURL:     sources.GetStringFromConfig(config, "base_url", defaultBaseURL),
		minInterval: sources.GetDurationFromConfig(config, "min_interval", defaultMinInterval),
	}, nil
}

func (s *Source) Name() string       { return s.name }
func (s *Source) Kind() sources.Kind { return sources.KindPrice }

// throttle spaces requests at least minInterval apart.
func (s *Source) throttle(ctx context.Context) error {
	s.mu.Lock()
	wait := s.minInterval - time.Since(s.lastRequest)
	s.lastRequest = time.Now().Add(wait)
	s.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// FetchPrice returns the card's price on the given marketplace. A card or
// price Scryfall does not carry is reported as absent, not as an error.
func (s *Source) FetchPrice(ctx context.Context, cardName string, marketplace sources.Marketplace) (money.Money, bool, error) {
	var currency string
	switch marketplace {
	case sources.MarketplaceCardKingdom:
		currency = "USD"
	case sources.MarketplaceCardmarket:
		currency = "EUR"
	default:
		return money.Money{}, false, fmt.Errorf("%w: %q", sources.ErrUnknownMarketplace, marketplace)
	}

	if err := s.throttle(ctx); err != nil {
		return money.Money{}, false, err
	}

	reqURL := fmt.Sprintf("%s/cards/named?exact=%s", s.baseURL, url.QueryEscape(cardName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return money.Money{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.AgentString())

	resp, err := s.client.Do(req)
	if err != nil {
		return money.Money{}, false, fmt.Errorf("failed to fetch card: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		s.logger.Debug("Card not found on Scryfall", "card", cardName)
		return money.Money{}, false, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return money.Money{}, false, fmt.Errorf("%w", sources.ErrRateLimitExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		return money.Money{}, false, fmt.Errorf("%w: %d", sources.ErrUnexpectedStatus, resp.StatusCode)
	}

	var card cardResponse
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return money.Money{}, false, fmt.Errorf("%w: %v", sources.ErrInvalidResponse, err)
	}

	var raw *string
	switch currency {
	case "USD":
		raw = card.Prices.USD
	case "EUR":
		raw = card.Prices.EUR
	}
	if raw == nil || *raw == "" {
		s.logger.Debug("No price listed", "card", cardName, "marketplace", string(marketplace))
		return money.Money{}, false, nil
	}

	price, err := money.FromString(*raw, currency)
	if err != nil {
		return money.Money{}, false, fmt.Errorf("%w: price %q: %v", sources.ErrInvalidResponse, *raw, err)
	}
	return price, true, nil
}
