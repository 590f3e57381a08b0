package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtgtools/arbitro-go/pkg/logging"
)

const defaultFrankfurterURL = "https://api.frankfurter.app"

// FrankfurterProvider fetches conversion rates from the Frankfurter API
// (free, no API key). https://www.frankfurter.app/docs/
type FrankfurterProvider struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

type frankfurterResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// NewFrankfurterProvider creates a Frankfurter rate provider. An empty baseURL
// selects the public API endpoint.
func NewFrankfurterProvider(baseURL string, timeout time.Duration, logger *logging.Logger) *FrankfurterProvider {
	if baseURL == "" {
		baseURL = defaultFrankfurterURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &FrankfurterProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// GetRate fetches the conversion rate for a single currency pair.
func (p *FrankfurterProvider) GetRate(ctx context.Context, from, to string) (Rate, error) {
	if from == to {
		return Identity(from), nil
	}

	endpoint := fmt.Sprintf("%s/latest?from=%s&to=%s",
		p.baseURL, url.QueryEscape(from), url.QueryEscape(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Rate{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %s/%s: %v", ErrRateUnavailable, from, to, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Rate{}, fmt.Errorf("%w: %s/%s: status %d", ErrRateUnavailable, from, to, resp.StatusCode)
	}

	var data frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Rate{}, fmt.Errorf("%w: %s/%s: decode: %v", ErrRateUnavailable, from, to, err)
	}

	value, ok := data.Rates[to]
	if !ok {
		return Rate{}, fmt.Errorf("%w: %s/%s: pair missing from response", ErrRateUnavailable, from, to)
	}

	asOf := time.Now()
	if t, err := time.Parse("2006-01-02", data.Date); err == nil {
		asOf = t
	}

	rate, err := NewRate(from, to, decimal.NewFromFloat(value), asOf)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %s/%s: %v", ErrRateUnavailable, from, to, err)
	}

	p.logger.Debug("Fetched conversion rate", "from", from, "to", to, "rate", rate.Value.String())
	return rate, nil
}

var _ Provider = (*FrankfurterProvider)(nil)
