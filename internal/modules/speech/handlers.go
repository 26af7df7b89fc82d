package speech

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxAudioBytes caps uploaded recordings at 10 MiB.
const maxAudioBytes = 10 << 20

// Handler serves the transcription and text-to-speech endpoints.
type Handler struct {
	transcriber Transcriber
	synthesizer Synthesizer
	available   func() bool
	log         zerolog.Logger
}

func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		transcriber: service,
		synthesizer: service,
		available:   service.Available,
		log:         log.With().Str("component", "speech_handler").Logger(),
	}
}

// RegisterRoutes mounts the speech endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", h.handleTranscribe)
	r.Post("/tts", h.handleTTS)
}

// handleTranscribe accepts a raw audio body and returns the transcript.
func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !h.available() {
		writeError(w, http.StatusServiceUnavailable, "Speech service is not configured")
		return
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read audio body")
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "No audio supplied")
		return
	}
	if len(audio) > maxAudioBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Audio exceeds size limit")
		return
	}

	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	text, err := h.transcriber.Transcribe(r.Context(), audio, mimeType)
	if err != nil {
		h.log.Error().Err(err).Msg("Transcription failed")
		writeError(w, http.StatusInternalServerError, "Transcription failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

type ttsRequest struct {
	Text string `json:"text"`
}

// handleTTS synthesizes speech and returns it base64 encoded.
func (h *Handler) handleTTS(w http.ResponseWriter, r *http.Request) {
	if !h.available() {
		writeError(w, http.StatusServiceUnavailable, "Speech service is not configured")
		return
	}

	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	audio, mimeType, err := h.synthesizer.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.log.Error().Err(err).Msg("Speech synthesis failed")
		writeError(w, http.StatusInternalServerError, "Speech synthesis failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"audio":    base64.StdEncoding.EncodeToString(audio),
		"mimeType": mimeType,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
