package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  http:
    addr: ":9000"
  cache_ttl: "30s"

pipeline:
  target_currency: CLP
  destination_country: Chile
  allowed_seller_classes: [professional, power]
  require_ships_to: true
  ranking_mode: maximize_gap
  retry:
    max_attempts: 5
    initial_backoff: "500ms"
  call_timeout: "45s"
  top_cards: 25

sources:
  - kind: listing
    name: cardmarket
    enabled: true
    config:
      api_key: ${ARBITRO_TEST_API_KEY}
      max_sellers: 30
  - kind: price
    name: scryfall
    enabled: true

rates:
  url: https://api.frankfurter.app

logging:
  level: debug
  format: text
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("ARBITRO_TEST_API_KEY", "sekrit")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL.ToDuration())
	assert.Equal(t, "CLP", cfg.Pipeline.TargetCurrency)
	assert.Equal(t, "Chile", cfg.Pipeline.DestinationCountry)
	assert.Equal(t, []string{"professional", "power"}, cfg.Pipeline.AllowedSellerClasses)
	assert.True(t, cfg.Pipeline.RequireShipsTo)
	assert.Equal(t, "maximize_gap", cfg.Pipeline.RankingMode)
	assert.Equal(t, 5, cfg.Pipeline.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Pipeline.Retry.InitialBackoff.ToDuration())
	assert.Equal(t, 25, cfg.Pipeline.TopCards)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "cardmarket", cfg.Sources[0].Name)
	assert.Equal(t, "sekrit", cfg.Sources[0].GetString("api_key", ""))
	assert.Equal(t, 30, cfg.Sources[0].GetInt("max_sellers", 50))
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
pipeline:
  target_currency: EUR
sources:
  - kind: price
    name: scryfall
    enabled: true
`))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTP.Addr)
	assert.Equal(t, 60*time.Second, cfg.Server.CacheTTL.ToDuration())
	assert.Equal(t, []string{"private", "professional", "power"}, cfg.Pipeline.AllowedSellerClasses)
	assert.Equal(t, "minimize", cfg.Pipeline.RankingMode)
	assert.Equal(t, 3, cfg.Pipeline.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Pipeline.Retry.InitialBackoff.ToDuration())
	assert.Equal(t, 30*time.Second, cfg.Pipeline.Retry.MaxBackoff.ToDuration())
	assert.Equal(t, "cardkingdom", cfg.Pipeline.MarketplaceA)
	assert.Equal(t, "cardmarket", cfg.Pipeline.MarketplaceB)
	assert.Equal(t, 50, cfg.Pipeline.TopCards)
	assert.Equal(t, "https://api.frankfurter.app", cfg.Rates.URL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("ARBITRO_TEST_API_KEY", "sekrit")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))
}

func TestValidate_Errors(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Load(writeConfig(t, `
pipeline:
  target_currency: EUR
sources:
  - kind: price
    name: scryfall
    enabled: true
`))
		require.NoError(t, err)
		return cfg
	}

	t.Run("no sources", func(t *testing.T) {
		cfg := valid(t)
		cfg.Sources = nil
		assert.ErrorIs(t, Validate(cfg), ErrNoSourcesConfigured)
	})

	t.Run("bad ranking mode", func(t *testing.T) {
		cfg := valid(t)
		cfg.Pipeline.RankingMode = "optimal"
		assert.ErrorIs(t, Validate(cfg), ErrInvalidRankingMode)
	})

	t.Run("bad seller class", func(t *testing.T) {
		cfg := valid(t)
		cfg.Pipeline.AllowedSellerClasses = []string{"platinum"}
		assert.ErrorIs(t, Validate(cfg), ErrInvalidSellerClass)
	})

	t.Run("bad source kind", func(t *testing.T) {
		cfg := valid(t)
		cfg.Sources[0].Kind = "oracle"
		assert.ErrorIs(t, Validate(cfg), ErrInvalidSourceKind)
	})

	t.Run("missing source name", func(t *testing.T) {
		cfg := valid(t)
		cfg.Sources[0].Name = ""
		assert.ErrorIs(t, Validate(cfg), ErrSourceNameRequired)
	})

	t.Run("same marketplace twice", func(t *testing.T) {
		cfg := valid(t)
		cfg.Pipeline.MarketplaceB = cfg.Pipeline.MarketplaceA
		assert.ErrorIs(t, Validate(cfg), ErrSameMarketplace)
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := valid(t)
		cfg.Logging.Level = "verbose"
		assert.ErrorIs(t, Validate(cfg), ErrInvalidLogLevel)
	})

	t.Run("retry attempts", func(t *testing.T) {
		cfg := valid(t)
		cfg.Pipeline.Retry.MaxAttempts = 0
		assert.ErrorIs(t, Validate(cfg), ErrInvalidRetryAttempts)
	})
}
