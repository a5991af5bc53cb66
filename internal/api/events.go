package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/shelter-training/maps-trainer/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// eventBuffer is how many undelivered events a subscriber may queue before
// new broadcasts are dropped for it.
const eventBuffer = 16

// EventHub fans completion events out to subscribers. A subscriber that
// cannot keep up loses events rather than blocking the others.
type EventHub struct {
	mu   sync.RWMutex
	subs map[chan models.CompletionEvent]string // channel -> remote addr
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[chan models.CompletionEvent]string),
	}
}

// Broadcast sends an event to every subscriber.
func (h *EventHub) Broadcast(event models.CompletionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch, addr := range h.subs {
		select {
		case ch <- event:
		default:
			slog.Warn("dropping event for slow subscriber", "remote_addr", addr)
		}
	}
}

func (h *EventHub) subscribe(addr string) chan models.CompletionEvent {
	ch := make(chan models.CompletionEvent, eventBuffer)
	h.mu.Lock()
	h.subs[ch] = addr
	h.mu.Unlock()
	return ch
}

func (h *EventHub) unsubscribe(ch chan models.CompletionEvent) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		close(ch)
		delete(h.subs, ch)
	}
	h.mu.Unlock()
}

// handleEventsWS upgrades the connection and streams completion events.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("event stream connected", "remote_addr", conn.RemoteAddr())

	ch := s.events.subscribe(conn.RemoteAddr().String())
	defer s.events.unsubscribe(ch)

	// Drain reads so close frames and pings are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				slog.Debug("event write failed", "error", err)
				return
			}
		}
	}
}
