package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mtgtools/arbitro-go/pkg/config"
	"github.com/mtgtools/arbitro-go/pkg/engine"
	"github.com/mtgtools/arbitro-go/pkg/logging"
	"github.com/mtgtools/arbitro-go/pkg/metrics"
	"github.com/mtgtools/arbitro-go/pkg/rates"
	"github.com/mtgtools/arbitro-go/pkg/server/api"
	"github.com/mtgtools/arbitro-go/pkg/sources"
	"github.com/mtgtools/arbitro-go/pkg/version"

	// Import sources to register them
	_ "github.com/mtgtools/arbitro-go/pkg/sources/cardmarket"
	_ "github.com/mtgtools/arbitro-go/pkg/sources/edhrec"
	_ "github.com/mtgtools/arbitro-go/pkg/sources/scryfall"
)

var (
	configFile = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
	card       = flag.String("card", "", "Find the best offer for one card and exit")
	scan       = flag.Bool("scan", false, "Run one arbitrage scan over the top cards and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("arbitro-go version %s\n", version.Version)
		os.Exit(0)
	}

	// Load .env for API keys referenced from the config file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Starting arbitro-go", "version", version.Version)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	pipeline, err := buildPipeline(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build pipeline", "error", err)
	}

	// One-shot modes
	if *card != "" {
		runBestOffer(cfg, pipeline, logger, *card)
		return
	}
	if *scan {
		runScan(cfg, pipeline, logger)
		return
	}

	runServer(cfg, pipeline, logger)
}

// buildPipeline wires configured sources, the rate provider and the pipeline.
func buildPipeline(cfg *config.Config, logger *logging.Logger) (*engine.Pipeline, error) {
	deps := engine.Deps{
		Rates:  rates.NewFrankfurterProvider(cfg.Rates.URL, cfg.Rates.Timeout.ToDuration(), logger),
		Logger: logger,
	}

	for _, sourceCfg := range cfg.EnabledSources() {
		logger.Info("Initializing source", "kind", sourceCfg.Kind, "name", sourceCfg.Name)

		// Add logger to config so sources don't create their own
		if sourceCfg.Config == nil {
			sourceCfg.Config = make(map[string]interface{})
		}
		sourceCfg.Config["logger"] = logger

		source, err := sources.Create(sources.Kind(sourceCfg.Kind), sourceCfg.Name, sourceCfg.Config)
		if err != nil {
			logger.Warn("Failed to create source", "kind", sourceCfg.Kind, "name", sourceCfg.Name, "error", err)
			continue
		}

		switch src := source.(type) {
		case sources.ListingSource:
			deps.Listings = src
		case sources.CardListSource:
			deps.Cards = src
		case sources.PriceSource:
			deps.Prices = src
		default:
			logger.Warn("Source implements no fetch interface", "name", source.Name())
		}
	}

	engineCfg, err := pipelineConfig(cfg)
	if err != nil {
		return nil, err
	}
	return engine.NewPipeline(engineCfg, deps)
}

// pipelineConfig maps the YAML pipeline section onto the engine's config.
func pipelineConfig(cfg *config.Config) (engine.Config, error) {
	mode, err := engine.ParseMode(cfg.Pipeline.RankingMode)
	if err != nil {
		return engine.Config{}, err
	}

	classes := make([]engine.SellerClass, 0, len(cfg.Pipeline.AllowedSellerClasses))
	for _, raw := range cfg.Pipeline.AllowedSellerClasses {
		class, err := engine.ParseSellerClass(raw)
		if err != nil {
			return engine.Config{}, err
		}
		classes = append(classes, class)
	}

	return engine.Config{
		TargetCurrency:     strings.ToUpper(cfg.Pipeline.TargetCurrency),
		DestinationCountry: cfg.Pipeline.DestinationCountry,
		Constraints: engine.Constraints{
			AllowedSellerClasses: classes,
			RequireShipsTo:       cfg.Pipeline.RequireShipsTo,
		},
		RankMode: mode,
		Retry: engine.RetryPolicy{
			MaxAttempts:    cfg.Pipeline.Retry.MaxAttempts,
			InitialBackoff: cfg.Pipeline.Retry.InitialBackoff.ToDuration(),
			MaxBackoff:     cfg.Pipeline.Retry.MaxBackoff.ToDuration(),
		},
		CallTimeout:  cfg.Pipeline.CallTimeout.ToDuration(),
		RunTimeout:   cfg.Pipeline.RunTimeout.ToDuration(),
		MarketplaceA: sources.Marketplace(strings.ToLower(cfg.Pipeline.MarketplaceA)),
		MarketplaceB: sources.Marketplace(strings.ToLower(cfg.Pipeline.MarketplaceB)),
	}, nil
}

// runBestOffer finds the best offer for one card and prints it as JSON.
func runBestOffer(cfg *config.Config, pipeline *engine.Pipeline, logger *logging.Logger, cardName string) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.RunTimeout.ToDuration())
	defer cancel()

	result, err := pipeline.BestOffer(ctx, cardName)
	if err != nil {
		logger.Fatal("Best-offer run failed", "card", cardName, "error", err)
	}
	printJSON(logger, result)
}

// runScan runs one arbitrage scan over the configured top cards.
func runScan(cfg *config.Config, pipeline *engine.Pipeline, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.RunTimeout.ToDuration())
	defer cancel()

	cards, err := pipeline.TopCards(ctx, cfg.Pipeline.TopCards)
	if err != nil {
		logger.Fatal("Failed to fetch top cards", "error", err)
	}

	result, err := pipeline.CompareMarketsWithProgress(ctx, cards, func(done, total int, card string) {
		logger.Info("Scanned card", "card", card, "done", done, "total", total)
	})
	if err != nil {
		logger.Fatal("Arbitrage scan failed", "error", err)
	}
	printJSON(logger, result)
}

// runServer runs the HTTP API until interrupted.
func runServer(cfg *config.Config, pipeline *engine.Pipeline, logger *logging.Logger) {
	server := api.NewServer(
		cfg.Server.HTTP.Addr,
		pipeline,
		cfg.Server.CacheTTL.ToDuration(),
		cfg.Pipeline.TopCards,
		logger,
	)

	if cfg.Server.WebSocket.Enabled {
		server.SetWebSocketServer(api.NewWebSocketServer(logger))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		if err != nil {
			logger.Error("HTTP server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("Shutting down gracefully...")
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Shutdown complete")
}

func printJSON(logger *logging.Logger, data interface{}) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode result", "error", err)
	}
	fmt.Println(string(out))
}
