// Package websocket pushes fresh aggregate views to connected dashboard
// clients, so the presentation layer can choose push over polling.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/metrics"
)

const (
	maxClients     = 100
	sendBufferSize = 8
	writeTimeout   = 5 * time.Second
)

// Hub fans the latest aggregate view out to all connected clients. Slow
// clients with a full send buffer are evicted rather than allowed to stall
// the broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn   *websocket.Conn
	sendCh chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Register attaches a connection and serves it until the peer disconnects or
// the hub evicts it. It blocks the caller (the websocket handler goroutine).
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{conn: conn, sendCh: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	if h.closed || len(h.clients) >= maxClients {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	metrics.WebSocketClientsCurrent.Set(float64(len(h.clients)))
	h.mu.Unlock()

	go c.writeLoop()
	c.readLoop()
	h.unregister(c)
}

// Publish implements app.AnalyticsPublisher.
func (h *Hub) Publish(view *domain.AggregateView) {
	data, err := json.Marshal(view)
	if err != nil {
		slog.Error("Failed to encode aggregate view for broadcast", "error", err)
		return
	}

	h.mu.Lock()
	var evicted []*client
	for c := range h.clients {
		select {
		case c.sendCh <- data:
		default:
			evicted = append(evicted, c)
		}
	}
	for _, c := range evicted {
		delete(h.clients, c)
		close(c.sendCh)
		metrics.WebSocketSlowClientsEvicted.Inc()
	}
	metrics.WebSocketClientsCurrent.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

// Stop disconnects all clients and rejects new registrations.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.sendCh)
		delete(h.clients, c)
	}
	metrics.WebSocketClientsCurrent.Set(0)
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.sendCh)
	}
	metrics.WebSocketClientsCurrent.Set(float64(len(h.clients)))
	h.mu.Unlock()
	_ = c.conn.Close()
}

func (c *client) writeLoop() {
	for msg := range c.sendCh {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop drains (and discards) client messages so pings and close frames
// are processed, returning when the peer disconnects.
func (c *client) readLoop() {
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
