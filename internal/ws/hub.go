// Package ws pushes transaction change notifications to connected browsers so
// an open dashboard can refresh without polling.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub fans broadcast messages out to every registered connection. Slow or
// broken connections are dropped on write failure.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in a goroutine.
func (h *Hub) Start() {
	go func() {
		for {
			select {
			case conn := <-h.register:
				h.mu.Lock()
				h.clients[conn] = true
				n := len(h.clients)
				h.mu.Unlock()
				slog.Info("WebSocket client connected", "clients", n)
			case conn := <-h.unregister:
				h.mu.Lock()
				if _, ok := h.clients[conn]; ok {
					delete(h.clients, conn)
					conn.Close()
				}
				n := len(h.clients)
				h.mu.Unlock()
				slog.Info("WebSocket client disconnected", "clients", n)
			case message := <-h.broadcast:
				h.mu.Lock()
				for conn := range h.clients {
					if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
						slog.Error("Failed to send WebSocket message", "error", err)
						conn.Close()
						delete(h.clients, conn)
					}
				}
				h.mu.Unlock()
			case <-h.done:
				h.mu.Lock()
				for conn := range h.clients {
					conn.Close()
					delete(h.clients, conn)
				}
				h.mu.Unlock()
				return
			}
		}
	}()
}

// Stop ends the hub loop and closes every remaining connection.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// NotifyTransactionChange broadcasts a change event to every client.
// Implements services.ChangeNotifier.
func (h *Hub) NotifyTransactionChange(op string, id int64) {
	event := map[string]any{
		"type":      "transaction:" + op,
		"id":        id,
		"timestamp": time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal transaction event", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		// Never block a save on a stalled hub.
		slog.Warn("Dropped WebSocket broadcast, channel full")
	}
}

// RegisterClient adds a connection to the hub.
func (h *Hub) RegisterClient(conn *websocket.Conn) {
	h.register <- conn
}

// UnregisterClient removes a connection and closes it.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.unregister <- conn
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
