package watch

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/olufemi424/agentic-ui/internal/events"
)

// WSHandler serves the same change feed as SSEHandler over a WebSocket
// connection, for clients that cannot hold an EventSource open.
type WSHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewWSHandler creates a new change-notification WebSocket handler.
func NewWSHandler(bus *events.Bus, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		bus: bus,
		log: log.With().Str("component", "watch_ws").Logger(),
	}
}

type wsMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// ServeHTTP handles GET /api/watch-investments/ws requests.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin policy handled by the CORS layer
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	h.log.Info().Str("remote", r.RemoteAddr).Msg("Client connected to change feed")

	eventChan := make(chan *events.Event, 16)
	unsubscribe := h.bus.Subscribe(events.AccountsChanged, func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
		}
	})
	defer unsubscribe()

	if err := h.write(ctx, conn, wsMessage{Type: "hello", Data: map[string]interface{}{"ok": true}}); err != nil {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Str("remote", r.RemoteAddr).Msg("Client disconnected from change feed")
			return

		case event := <-eventChan:
			msg := wsMessage{Type: "change", Data: map[string]interface{}{
				"file": event.Data["file"],
				"ts":   event.Data["ts"],
			}}
			if err := h.write(ctx, conn, msg); err != nil {
				return
			}

		case <-keepAlive.C:
			msg := wsMessage{Type: "ping", Data: map[string]interface{}{"ts": time.Now().UnixMilli()}}
			if err := h.write(ctx, conn, msg); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, msg wsMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, payload)
}
