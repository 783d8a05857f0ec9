package handlers

import (
	"net/http"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/http/response"
)

// Signup handles POST /api/signup
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitSignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	requestID, err := h.signupService.Submit(r.Context(), &req)
	if err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"request_id": requestID,
		"message":    "Signup request submitted successfully. Please wait for admin approval.",
	})
}
