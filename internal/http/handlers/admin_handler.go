package handlers

import (
	"net/http"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/http/response"
)

// ListRequests handles GET /api/admin/requests
func (h *Handlers) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.signupService.ListRequests(r.Context())
	if err != nil {
		response.FromDomainError(w, err)
		return
	}
	if requests == nil {
		requests = []domain.SignupRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// Decide handles POST /api/admin/decide
func (h *Handlers) Decide(w http.ResponseWriter, r *http.Request) {
	var req domain.DecideRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.signupService.Decide(r.Context(), req.RequestID, req.Action); err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Request decided"})
}

// ListVoters handles GET /api/admin/voters
func (h *Handlers) ListVoters(w http.ResponseWriter, r *http.Request) {
	voters, err := h.adminService.ListVoters(r.Context())
	if err != nil {
		response.FromDomainError(w, err)
		return
	}
	if voters == nil {
		voters = []domain.Voter{}
	}
	writeJSON(w, http.StatusOK, voters)
}

// ListAllCandidates handles GET /api/admin/candidates, counts included.
func (h *Handlers) ListAllCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.adminService.ListCandidates(r.Context())
	if err != nil {
		response.FromDomainError(w, err)
		return
	}
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	writeJSON(w, http.StatusOK, candidates)
}

// ListSubAdmins handles GET /api/admin/subadmins
func (h *Handlers) ListSubAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.adminService.ListSubAdmins(r.Context())
	if err != nil {
		response.FromDomainError(w, err)
		return
	}
	if admins == nil {
		admins = []domain.AdminInfo{}
	}
	writeJSON(w, http.StatusOK, admins)
}

// CreateSubAdmin handles POST /api/admin/subadmins
func (h *Handlers) CreateSubAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSubAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.adminService.CreateSubAdmin(r.Context(), &req); err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Sub-admin created"})
}

// PublishResults handles POST /api/admin/publish
func (h *Handlers) PublishResults(w http.ResponseWriter, r *http.Request) {
	var req domain.PublishResultsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.adminService.PublishResults(r.Context(), req.Publish); err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"results_published": req.Publish})
}

// DeleteEntity handles POST /api/admin/delete
func (h *Handlers) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	var req domain.DeleteEntityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.adminService.DeleteEntity(r.Context(), &req); err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully"})
}
