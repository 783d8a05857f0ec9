package handlers

import (
	"net/http"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/http/response"
)

// CastVote handles POST /api/vote. The client must have completed
// verify-otp for the same identity number immediately before calling this.
func (h *Handlers) CastVote(w http.ResponseWriter, r *http.Request) {
	var req domain.CastVoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.voteService.CastVote(r.Context(), req.IdentityNumber, req.CandidateID); err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Vote recorded successfully"})
}
