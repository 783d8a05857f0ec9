package handlers

import (
	"net/http"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/http/response"
)

// UpdateCandidateProfile handles POST /api/candidate/profile. Candidates
// may only edit their own record; the id comes from the token, not the
// body.
func (h *Handlers) UpdateCandidateProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Missing token claims")
		return
	}

	var req domain.UpdateCandidateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.candidateService.UpdateProfile(r.Context(), claims.Sub, &req); err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}
