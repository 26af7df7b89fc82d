package watch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/olufemi424/agentic-ui/internal/events"
)

// keepAliveInterval is how often a ping event is sent regardless of
// file activity.
const keepAliveInterval = 30 * time.Second

// SSEHandler streams change notifications over Server-Sent Events.
// Each connection gets a hello event on connect, a change event for
// every account store write, and a periodic ping keep-alive.
type SSEHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewSSEHandler creates a new change-notification SSE handler.
func NewSSEHandler(bus *events.Bus, log zerolog.Logger) *SSEHandler {
	return &SSEHandler{
		bus: bus,
		log: log.With().Str("component", "watch_sse").Logger(),
	}
}

// ServeHTTP handles GET /api/watch-investments requests (SSE).
func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("remote", r.RemoteAddr).Msg("Client connected to change stream")

	// Buffered so a slow client drops events instead of blocking the bus.
	eventChan := make(chan *events.Event, 16)
	unsubscribe := h.bus.Subscribe(events.AccountsChanged, func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().Msg("Change channel full, dropping event")
		}
	})
	defer unsubscribe()

	writeSSE(w, "hello", map[string]interface{}{"ok": true})
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	done := r.Context().Done()
	for {
		select {
		case <-done:
			h.log.Info().Str("remote", r.RemoteAddr).Msg("Client disconnected from change stream")
			return

		case event := <-eventChan:
			writeSSE(w, "change", map[string]interface{}{
				"file": event.Data["file"],
				"ts":   event.Data["ts"],
			})
			flusher.Flush()

		case <-keepAlive.C:
			writeSSE(w, "ping", map[string]interface{}{"ts": time.Now().UnixMilli()})
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte(`{"error":"failed to encode event"}`)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
