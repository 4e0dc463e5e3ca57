package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/mapreader/internal/store"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LiveMessage is sent to websocket subscribers for every new reading.
type LiveMessage struct {
	Type      string         `json:"type"`
	Reading   *store.Reading `json:"reading"`
	Timestamp int64          `json:"timestamp"`
}

// LiveHandler pushes new readings to websocket clients.
type LiveHandler struct {
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
	log     zerolog.Logger
}

// NewLiveHandler creates a LiveHandler with no subscribers.
func NewLiveHandler() *LiveHandler {
	return &LiveHandler{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		log:     log.With().Str("module", "live").Logger(),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Broadcast sends a reading to all connected clients. Clients that cannot
// keep up are dropped.
func (h *LiveHandler) Broadcast(rd *store.Reading) {
	msg, err := sonic.Marshal(LiveMessage{
		Type:      string(rd.Status),
		Reading:   rd,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode live message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, wmu := range h.clients {
		wmu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.TextMessage, msg)
		wmu.Unlock()
		if err != nil {
			h.log.Debug().Err(err).Msg("dropping live subscriber")
			conn.Close()
		}
	}
}

// Count returns the number of connected clients.
func (h *LiveHandler) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *LiveHandler) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.Close()
	}
}
