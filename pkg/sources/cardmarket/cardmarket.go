// Package cardmarket scrapes per-seller listings from cardmarket.com.
package cardmarket

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mtgtools/arbitro-go/pkg/logging"
	"github.com/mtgtools/arbitro-go/pkg/sources"
)

const (
	defaultBaseURL    = "https://www.cardmarket.com/en/Magic"
	defaultProxyURL   = "https://api.scraperapi.com/"
	defaultMaxSellers = 50
	defaultTimeout    = 60 * time.Second
)

// Source scrapes cardmarket product pages. Cardmarket renders listings
// client-side and blocks plain crawlers, so requests go through a rendering
// proxy when an API key is configured.
type Source struct {
	name        string
	logger      *logging.Logger
	client      *http.Client
	baseURL     string
	proxyURL    string
	apiKey      string
	maxSellers  int
	shipsFrom   map[string]bool
	destination string
}

// New creates a cardmarket listing source from its configuration map.
func New(config map[string]interface{}) (sources.Source, error) {
	logger := sources.GetLoggerFromConfig(config)

	timeout := sources.GetDurationFromConfig(config, "timeout", defaultTimeout)

	s := &Source{
		name:       "cardmarket",
		logger:     logger,
		client:     &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(sources.GetStringFromConfig(config, "base_url", defaultBaseURL), "/"),
		proxyURL:   sources.GetStringFromConfig(config, "proxy_url", defaultProxyURL),
		apiKey:     sources.GetStringFromConfig(config, "api_key", ""),
		maxSellers: sources.GetIntFromConfig(config, "max_sellers", defaultMaxSellers),
		shipsFrom:  map[string]bool{},
	}

	// Countries whose sellers ship to the configured destination. An empty
	// list means every seller is assumed to ship.
	if raw, ok := config["ships_from_countries"].([]interface{}); ok {
		for _, c := range raw {
			if code, ok := c.(string); ok {
				s.shipsFrom[strings.ToLower(code)] = true
			}
		}
	}

	logger.Info("Initializing cardmarket source",
		"proxy", s.apiKey != "",
		"max_sellers", s.maxSellers)
	return s, nil
}

func (s *Source) Name() string       { return s.name }
func (s *Source) Kind() sources.Kind { return sources.KindListing }

// FetchListings locates the card's product page and extracts its seller rows.
func (s *Source) FetchListings(ctx context.Context, cardName, destinationCountry string) ([]sources.RawListing, error) {
	searchURL := fmt.Sprintf("%s/Products/Search?searchString=%s", s.baseURL, url.QueryEscape(cardName))
	doc, err := s.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	productPath, found := findProductLink(doc)
	if !found {
		return nil, fmt.Errorf("%w: %q on cardmarket", sources.ErrCardNotFound, cardName)
	}

	productURL := productPath
	if !strings.HasPrefix(productURL, "http") {
		base, err := url.Parse(s.baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		ref, err := url.Parse(productPath)
		if err != nil {
			return nil, fmt.Errorf("%w: bad product link %q", sources.ErrInvalidResponse, productPath)
		}
		productURL = base.ResolveReference(ref).String()
	}

	doc, err = s.fetchDocument(ctx, productURL)
	if err != nil {
		return nil, err
	}

	listings := parseArticleRows(doc, productURL, s.shipsFrom)
	if len(listings) > s.maxSellers {
		listings = listings[:s.maxSellers]
	}

	s.logger.Debug("Fetched cardmarket listings",
		"card", cardName,
		"sellers", len(listings),
		"url", productURL)
	return listings, nil
}

// fetchDocument retrieves a page, through the rendering proxy when an API key
// is set, and parses it.
func (s *Source) fetchDocument(ctx context.Context, targetURL string) (*goquery.Document, error) {
	requestURL := targetURL
	if s.apiKey != "" {
		params := url.Values{}
		params.Set("api_key", s.apiKey)
		params.Set("url", targetURL)
		params.Set("render", "true")
		requestURL = s.proxyURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		s.logger.Warn("Rate limit exceeded", "source", s.name)
		return nil, fmt.Errorf("%w", sources.ErrRateLimitExceeded)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", sources.ErrCardNotFound, targetURL)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d: %s", sources.ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrInvalidResponse, err)
	}
	return doc, nil
}
