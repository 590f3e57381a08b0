// Package edhrec fetches ranked card names from edhrec.com.
package edhrec

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mtgtools/arbitro-go/pkg/logging"
	"github.com/mtgtools/arbitro-go/pkg/sources"
)

const (
	defaultURL     = "https://edhrec.com/top"
	defaultTimeout = 30 * time.Second

	// cardNameSelector matches the card tile headings on EDHREC's top page.
	cardNameSelector = "div.Card_name__1H-3c"
)

// Source scrapes EDHREC's top-cards page for an ordered card list.
type Source struct {
	name   string
	logger *logging.Logger
	client *http.Client
	url    string
}

// New creates an EDHREC card list source from its configuration map.
func New(config map[string]interface{}) (sources.Source, error) {
	logger := sources.GetLoggerFromConfig(config)

	return &Source{
		name:   "edhrec",
		logger: logger,
		client: &http.Client{Timeout: sources.GetDurationFromConfig(config, "timeout", defaultTimeout)},
		url:    sources.GetStringFromConfig(config, "url", defaultURL),
	}, nil
}

func (s *Source) Name() string       { return s.name }
func (s *Source) Kind() sources.Kind { return sources.KindCards }

// FetchTopCards returns the page's card names in display order, capped at n.
func (s *Source) FetchTopCards(ctx context.Context, n int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top cards: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", sources.ErrUnexpectedStatus, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrInvalidResponse, err)
	}

	var cards []string
	doc.Find(cardNameSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name := strings.TrimSpace(sel.Text())
		if name != "" {
			cards = append(cards, name)
		}
		return n <= 0 || len(cards) < n
	})

	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no card names found at %s", sources.ErrInvalidResponse, s.url)
	}

	s.logger.Debug("Fetched top cards", "count", len(cards))
	return cards, nil
}
