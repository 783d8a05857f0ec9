package domain

import (
	"fmt"
	"strings"

	"github.com/openballot/evoting/internal/utils"
)

// Login roles
const (
	LoginRoleAdmin     = "admin"
	LoginRoleCandidate = "candidate"
	LoginRoleVoter     = "voter"
)

type LoginRequest struct {
	Role       string `json:"role"`
	Identifier string `json:"identifier"`
	Credential string `json:"credential,omitempty"`
}

// LoginResponse covers all three roles. Admin logins set Role and
// AccessToken, candidate logins set CandidateID and AccessToken, voter
// logins set OTPIssued (and DebugOTP when debug mode is on).
type LoginResponse struct {
	Role        string `json:"role,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	CandidateID string `json:"candidate_id,omitempty"`
	OTPIssued   bool   `json:"otp_issued,omitempty"`
	Message     string `json:"message,omitempty"`

	// DebugOTP echoes the issued code when OTP_DEBUG is on. Inherited from
	// the environments this runs in, where mail delivery cannot be relied
	// on; a known weakening of the security model.
	DebugOTP string `json:"debug_otp,omitempty"`
}

type VerifyOTPRequest struct {
	IdentityNumber string `json:"identity_number"`
	OTP            string `json:"otp"`
}

type CastVoteRequest struct {
	IdentityNumber string `json:"identity_number"`
	CandidateID    string `json:"candidate_id"`
}

func (r *LoginRequest) Normalize() {
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Role == LoginRoleCandidate {
		// Candidates identify by mobile; match the form stored at signup.
		r.Identifier = utils.NormalizeMobile(r.Identifier)
	}
}

func (r *LoginRequest) Validate() error {
	switch r.Role {
	case LoginRoleAdmin, LoginRoleCandidate, LoginRoleVoter:
	default:
		return fmt.Errorf("%w: role must be admin, candidate or voter", ErrInvalidInput)
	}
	if r.Identifier == "" {
		return fmt.Errorf("%w: identifier is required", ErrInvalidInput)
	}
	if r.Role != LoginRoleVoter && r.Credential == "" {
		return fmt.Errorf("%w: credential is required", ErrInvalidInput)
	}
	return nil
}

func (r *VerifyOTPRequest) Validate() error {
	if r.IdentityNumber == "" {
		return fmt.Errorf("%w: identity number is required", ErrInvalidInput)
	}
	if r.OTP == "" {
		return fmt.Errorf("%w: otp is required", ErrInvalidInput)
	}
	return nil
}

func (r *CastVoteRequest) Validate() error {
	if r.IdentityNumber == "" {
		return fmt.Errorf("%w: identity number is required", ErrInvalidInput)
	}
	if r.CandidateID == "" {
		return fmt.Errorf("%w: candidate id is required", ErrInvalidInput)
	}
	return nil
}
