package handlers

import (
	"net/http"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/http/response"
)

// Login handles POST /api/login for all three roles.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// VerifyOTP handles POST /api/verify-otp
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.VerifyOTP(r.Context(), req.IdentityNumber, req.OTP); err != nil {
		response.FromDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
