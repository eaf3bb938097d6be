package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/stroked/internal/geom"
	"github.com/ayusman/stroked/internal/runtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Local-only listener
	},
}

// overlayEvent is one message on the overlay feed.
type overlayEvent struct {
	Kind      string          `json:"kind"` // "start", "move", "end"
	X         float64         `json:"x,omitempty"`
	Y         float64         `json:"y,omitempty"`
	Token     string          `json:"token,omitempty"`
	Result    *runtime.Result `json:"result,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// OverlayHub broadcasts live stroke events to overlay clients over
// WebSocket. It implements runtime.OverlaySink; events from the engine are
// queued and written by a dedicated goroutine so the pointer hook never
// waits on a socket.
type OverlayHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	events  chan overlayEvent
}

// NewOverlayHub creates a hub and starts its broadcast goroutine.
func NewOverlayHub() *OverlayHub {
	h := &OverlayHub{
		clients: make(map[*websocket.Conn]bool),
		events:  make(chan overlayEvent, 256),
	}
	go h.broadcast()
	return h
}

// StrokeStarted implements runtime.OverlaySink.
func (h *OverlayHub) StrokeStarted(p geom.Point) {
	h.enqueue(overlayEvent{Kind: "start", X: p.X, Y: p.Y})
}

// StrokeMoved implements runtime.OverlaySink.
func (h *OverlayHub) StrokeMoved(p geom.Point, token string) {
	h.enqueue(overlayEvent{Kind: "move", X: p.X, Y: p.Y, Token: token})
}

// StrokeEnded implements runtime.OverlaySink.
func (h *OverlayHub) StrokeEnded(result runtime.Result) {
	h.enqueue(overlayEvent{Kind: "end", Result: &result})
}

// enqueue drops the event when the queue is full. A stalled overlay client
// must never back-pressure into the input hook.
func (h *OverlayHub) enqueue(event overlayEvent) {
	event.Timestamp = time.Now().UnixMilli()
	select {
	case h.events <- event:
	default:
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *OverlayHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("overlay websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
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

// broadcast forwards queued events to all connected clients.
func (h *OverlayHub) broadcast() {
	for event := range h.events {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}

		msg, err := json.Marshal(event)
		if err != nil {
			h.mu.RUnlock()
			continue
		}
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
