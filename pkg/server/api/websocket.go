package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mtgtools/arbitro-go/pkg/engine"
	"github.com/mtgtools/arbitro-go/pkg/logging"
)

// WebSocketServer streams arbitrage scan progress to connected clients. It
// mounts on the API server's mux at /ws.
type WebSocketServer struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	// Client management
	mu      sync.RWMutex
	clients map[*webSocketClient]bool
}

type webSocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *WebSocketServer
}

// ScanProgressMessage is sent after each card of a scan completes.
type ScanProgressMessage struct {
	Type  string `json:"type"` // "scan_progress"
	Card  string `json:"card"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// ScanCompleteMessage is sent when a scan finishes.
type ScanCompleteMessage struct {
	Type       string `json:"type"` // "scan_complete"
	Outcome    string `json:"outcome"`
	Comparable int    `json:"comparable"`
	Analyzed   int    `json:"analyzed"`
}

// NewWebSocketServer creates a new WebSocket progress server.
func NewWebSocketServer(logger *logging.Logger) *WebSocketServer {
	return &WebSocketServer{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// Allow all origins (configure CORS as needed)
				return true
			},
		},
		clients: make(map[*webSocketClient]bool),
	}
}

// SendProgress broadcasts one card's scan progress. It matches
// engine.ProgressFunc so it plugs straight into a comparison run.
func (s *WebSocketServer) SendProgress(done, total int, cardName string) {
	s.broadcast(ScanProgressMessage{
		Type:  "scan_progress",
		Card:  cardName,
		Done:  done,
		Total: total,
	})
}

// SendComplete broadcasts a finished scan's summary.
func (s *WebSocketServer) SendComplete(result *engine.ArbitrageResult) {
	s.broadcast(ScanCompleteMessage{
		Type:       "scan_complete",
		Outcome:    string(result.Outcome),
		Comparable: len(result.Ranked),
		Analyzed:   len(result.Analyzed),
	})
}

func (s *WebSocketServer) broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("Failed to marshal scan update", "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			s.logger.Warn("Client send buffer full, skipping update")
		}
	}
}

// handleWebSocket handles new WebSocket connections.
func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := &webSocketClient{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.registerClient(client)

	go client.writePump()
	go client.readPump()

	s.logger.Info("New WebSocket client connected", "remote", conn.RemoteAddr())
}

func (s *WebSocketServer) registerClient(client *webSocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *WebSocketServer) unregisterClient(client *webSocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
}

// writePump sends messages to the WebSocket connection.
func (c *webSocketClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.server.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so control frames are processed and closes
// the client on error. Scan progress is broadcast-only; client messages are
// discarded.
func (c *webSocketClient) readPump() {
	defer func() {
		c.server.unregisterClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Error("WebSocket error", "error", err)
			}
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	}
}
