package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/http/response"
)

// ListCandidates handles GET /api/candidates. Vote counts are absent until
// results are published.
func (h *Handlers) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, cfg, err := h.resultsService.ListCandidates(r.Context())
	if err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"config":     cfg,
	})
}

// GetCandidate handles GET /api/candidates/{id}
func (h *Handlers) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	candidate, err := h.resultsService.GetCandidate(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*domain.PublicCandidate{"candidate": candidate})
}

// GetConfig handles GET /api/config
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.resultsService.GetConfig(r.Context())
	if err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}
