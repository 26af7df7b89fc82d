package items

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles item HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new item handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "items").Logger(),
	}
}

// RegisterRoutes registers item routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/items", h.HandleList)
	r.Post("/items", h.HandleCreate)
	r.Delete("/items/{id}", h.HandleDelete)
	r.Get("/items/recommend", h.HandleRecommend)
}

// HandleList handles GET /api/items?query=foo
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	var (
		result []Item
		err    error
	)
	if query != "" {
		result, err = h.repo.Search(r.Context(), query)
	} else {
		result, err = h.repo.List(r.Context())
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list items")
		h.writeError(w, http.StatusInternalServerError, "Failed to list items")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleCreate handles POST /api/items
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.Title == "" {
		h.writeError(w, http.StatusBadRequest, "Item title is required")
		return
	}

	created, err := h.repo.Create(r.Context(), input)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create item")
		h.writeError(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleDelete handles DELETE /api/items/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	success, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete item")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	status := http.StatusOK
	if !success {
		status = http.StatusNotFound
	}
	h.writeJSON(w, status, map[string]interface{}{
		"success": success,
		"id":      id,
	})
}

// HandleRecommend handles GET /api/items/recommend
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	item, err := h.repo.Recommend(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to recommend item")
		h.writeError(w, http.StatusInternalServerError, "Failed to recommend item")
		return
	}
	if item == nil {
		h.writeError(w, http.StatusNotFound, "No items available")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
