package chat

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler serves the chat endpoints.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("component", "chat_handler").Logger(),
	}
}

// RegisterRoutes mounts the chat endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/history/{sessionId}", h.handleHistory)
	r.Get("/models", h.handleModels)
}

type chatRequest struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
}

// handleChat streams the model reply as server-sent events. Each event
// carries one JSON-encoded StreamEvent.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "At least one message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	if !h.service.Available() {
		writeError(w, http.StatusServiceUnavailable, "Chat model is not configured")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emit := func(ev StreamEvent) {
		data, err := json.Marshal(ev)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode stream event")
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	if err := h.service.Stream(r.Context(), req.SessionID, req.Messages, emit); err != nil {
		h.log.Error().Err(err).Str("session", req.SessionID).Msg("Chat turn failed")
		emit(StreamEvent{Type: "error", Error: err.Error()})
	}
}

// handleHistory returns the stored transcript for a session. Sessions
// that were never saved come back as an empty message list.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if !sessionIDPattern.MatchString(sessionID) {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	messages := []Message{}
	if h.service.sessions != nil {
		loaded, err := h.service.sessions.Load(sessionID)
		if err != nil {
			h.log.Error().Err(err).Str("session", sessionID).Msg("Failed to load transcript")
			writeError(w, http.StatusInternalServerError, "Failed to load chat history")
			return
		}
		messages = loaded
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"messages":  messages,
	})
}

type modelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// handleModels reports which chat models are usable with the current
// configuration.
func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	models := []modelInfo{
		{ID: h.service.model, Name: h.service.model, Available: h.service.Available()},
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
