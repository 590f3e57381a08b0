// Package api provides the HTTP and WebSocket API for the offer engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mtgtools/arbitro-go/pkg/engine"
	"github.com/mtgtools/arbitro-go/pkg/logging"
	"github.com/mtgtools/arbitro-go/pkg/metrics"
	"github.com/mtgtools/arbitro-go/pkg/sources"
)

// Engine is the pipeline surface the API depends on.
type Engine interface {
	BestOffer(ctx context.Context, cardName string) (*engine.BestOfferResult, error)
	TopCards(ctx context.Context, n int) ([]string, error)
	CompareMarketsWithProgress(ctx context.Context, cards []string, progress engine.ProgressFunc) (*engine.ArbitrageResult, error)
}

// Server represents the HTTP API server.
type Server struct {
	addr     string
	engine   Engine
	logger   *logging.Logger
	cache    *gocache.Cache
	topCards int
	server   *http.Server
	wsServer *WebSocketServer // Optional WebSocket server for scan progress
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, eng Engine, cacheTTL time.Duration, topCards int, logger *logging.Logger) *Server {
	return &Server{
		addr:     addr,
		engine:   eng,
		logger:   logger,
		cache:    gocache.New(cacheTTL, 2*cacheTTL),
		topCards: topCards,
	}
}

// SetWebSocketServer enables scan progress streaming over /ws.
func (s *Server) SetWebSocketServer(ws *WebSocketServer) {
	s.wsServer = ws
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      15 * time.Minute, // arbitrage scans are slow
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Handler builds the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/bestoffer", s.handleBestOffer)
	mux.HandleFunc("/v1/topcards", s.handleTopCards)
	mux.HandleFunc("/v1/arbitrage", s.handleArbitrage)
	if s.wsServer != nil {
		mux.HandleFunc("/ws", s.wsServer.handleWebSocket)
	}
	return mux
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleHealth handles /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/health", "200", time.Since(start))
	}()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleBestOffer handles /v1/bestoffer?card=<name>.
func (s *Server) handleBestOffer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/bestoffer", status, time.Since(start))
	}()

	cardName := strings.TrimSpace(r.URL.Query().Get("card"))
	if cardName == "" {
		status = "400"
		http.Error(w, "card query parameter is required", http.StatusBadRequest)
		return
	}

	cacheKey := "bestoffer:" + strings.ToLower(cardName)
	if cached, found := s.cache.Get(cacheKey); found {
		s.sendJSON(w, cached)
		return
	}

	result, err := s.engine.BestOffer(r.Context(), cardName)
	if err != nil {
		status = s.sendError(w, err)
		return
	}

	s.cache.Set(cacheKey, result, gocache.DefaultExpiration)
	s.sendJSON(w, result)
}

// handleTopCards handles /v1/topcards?n=<count>.
func (s *Server) handleTopCards(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/topcards", status, time.Since(start))
	}()

	n := s.topCards
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			status = "400"
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	cacheKey := "topcards:" + strconv.Itoa(n)
	if cached, found := s.cache.Get(cacheKey); found {
		s.sendJSON(w, cached)
		return
	}

	cards, err := s.engine.TopCards(r.Context(), n)
	if err != nil {
		status = s.sendError(w, err)
		return
	}

	response := map[string]interface{}{"cards": cards}
	s.cache.Set(cacheKey, response, gocache.DefaultExpiration)
	s.sendJSON(w, response)
}

type arbitrageRequest struct {
	Cards []string `json:"cards"`
}

// handleArbitrage handles POST /v1/arbitrage. An empty card list scans the
// configured top cards.
func (s *Server) handleArbitrage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/arbitrage", status, time.Since(start))
	}()

	if r.Method != http.MethodPost {
		status = "405"
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// An empty body is a valid scan-top-cards request.
	var req arbitrageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		status = "400"
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cards := req.Cards
	if len(cards) == 0 {
		fetched, err := s.engine.TopCards(r.Context(), s.topCards)
		if err != nil {
			status = s.sendError(w, err)
			return
		}
		cards = fetched
	}

	var progress engine.ProgressFunc
	if s.wsServer != nil {
		progress = s.wsServer.SendProgress
	}

	result, err := s.engine.CompareMarketsWithProgress(r.Context(), cards, progress)
	if err != nil {
		status = s.sendError(w, err)
		return
	}

	if s.wsServer != nil {
		s.wsServer.SendComplete(result)
	}
	s.sendJSON(w, result)
}

// sendError maps engine errors to HTTP status codes and returns the status
// label for metrics.
func (s *Server) sendError(w http.ResponseWriter, err error) string {
	var code int
	switch {
	case errors.Is(err, sources.ErrCardNotFound):
		code = http.StatusNotFound
	case errors.Is(err, engine.ErrEmptyCardName):
		code = http.StatusBadRequest
	case errors.Is(err, engine.ErrTimeout):
		code = http.StatusGatewayTimeout
	default:
		code = http.StatusBadGateway
	}

	s.logger.Error("Request failed", "error", err.Error(), "status", code)
	http.Error(w, err.Error(), code)
	return strconv.Itoa(code)
}

// sendJSON sends a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}
