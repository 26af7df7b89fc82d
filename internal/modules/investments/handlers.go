package investments

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles investment account HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new investment account handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "investments").Logger(),
	}
}

// RegisterRoutes registers investment routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/investments", h.HandleList)
	r.Post("/investments", h.HandleCreate)
	r.Get("/investments/insights", h.HandleInsights)
	r.Patch("/investments/{id}", h.HandleUpdate)
	r.Delete("/investments/{id}", h.HandleDelete)
}

// HandleList handles GET /api/investments with optional filter params
// (institution, accountType, name, minBalance).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := Filters{
		Institution: q.Get("institution"),
		AccountType: q.Get("accountType"),
		Name:        q.Get("name"),
	}
	if raw := q.Get("minBalance"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "minBalance must be numeric")
			return
		}
		filters.MinBalance = &min
	}

	accounts, err := h.repo.List(r.Context(), filters)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		h.writeError(w, http.StatusInternalServerError, "Failed to list investment accounts")
		return
	}

	h.writeJSON(w, http.StatusOK, accounts)
}

// HandleCreate handles POST /api/investments
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.repo.Create(r.Context(), input)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create account")
		h.writeError(w, http.StatusInternalServerError, "Failed to create investment account")
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate handles PATCH /api/investments/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.repo.Update(r.Context(), id, req.Normalize())
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to update account")
		h.writeError(w, http.StatusInternalServerError, "Failed to update investment account")
		return
	}
	if updated == nil {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("Investment account %s not found", id))
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /api/investments/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	success, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete account")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete investment account")
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

// HandleInsights handles GET /api/investments/insights
func (h *Handler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.repo.Insights(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute insights")
		h.writeError(w, http.StatusInternalServerError, "Failed to compute insights")
		return
	}

	h.writeJSON(w, http.StatusOK, insights)
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
