package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/openballot/evoting/internal/utils"
)

// Signup request kinds
const (
	KindVoter     = "voter"
	KindCandidate = "candidate"
)

// Signup request statuses. A request only ever exists as pending: deciding
// it either materializes a Voter/Candidate or discards it, and removes the
// request either way.
const (
	StatusPending = "pending"
)

// Admin decision actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// SignupRequest is a pending application to become a voter or candidate,
// awaiting an admin decision.
type SignupRequest struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`

	// Shared applicant fields
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`

	// Voter applicant fields
	IdentityNumber string `json:"identity_number,omitempty"`
	Email          string `json:"email,omitempty"`
	DateOfBirth    string `json:"dob,omitempty"`

	// Candidate applicant fields
	Party    string `json:"party,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Password string `json:"password,omitempty"`
	Ideology string `json:"ideology,omitempty"`
}

type SubmitSignupRequest struct {
	Kind           string `json:"kind"`
	Name           string `json:"name"`
	Photo          string `json:"photo,omitempty"`
	IdentityNumber string `json:"identity_number,omitempty"`
	Email          string `json:"email,omitempty"`
	DateOfBirth    string `json:"dob,omitempty"`
	Party          string `json:"party,omitempty"`
	Mobile         string `json:"mobile,omitempty"`
	Password       string `json:"password,omitempty"`
	Ideology       string `json:"ideology,omitempty"`
}

type DecideRequest struct {
	RequestID string `json:"request_id"`
	Action    string `json:"action"`
}

func (r *SubmitSignupRequest) Normalize() {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.Name = strings.TrimSpace(r.Name)
	r.Email = utils.NormalizeEmail(r.Email)
	r.IdentityNumber = strings.TrimSpace(r.IdentityNumber)
	r.Mobile = utils.NormalizeMobile(r.Mobile)
	r.Party = strings.TrimSpace(r.Party)
}

func (r *SubmitSignupRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	switch r.Kind {
	case KindVoter:
		if r.IdentityNumber == "" {
			return fmt.Errorf("%w: identity number is required", ErrInvalidInput)
		}
		if r.Email == "" {
			return fmt.Errorf("%w: email is required", ErrInvalidInput)
		}
		if !isValidEmail(r.Email) {
			return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
		}
	case KindCandidate:
		if r.Mobile == "" {
			return fmt.Errorf("%w: mobile is required", ErrInvalidInput)
		}
		if !isValidMobile(r.Mobile) {
			return fmt.Errorf("%w: invalid mobile format", ErrInvalidInput)
		}
		if r.Password == "" {
			return fmt.Errorf("%w: password is required", ErrInvalidInput)
		}
		if len(r.Password) < 8 {
			return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
		}
		if r.Party == "" {
			return fmt.Errorf("%w: party is required", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: kind must be voter or candidate", ErrInvalidInput)
	}
	return nil
}

func (r *DecideRequest) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}
	if r.Action != ActionApprove && r.Action != ActionReject {
		return fmt.Errorf("%w: action must be approve or reject", ErrInvalidInput)
	}
	return nil
}

func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

func isValidMobile(mobile string) bool {
	mobileRegex := regexp.MustCompile(`^[\+]?[\d\s\-\(\)]+$`)
	return mobileRegex.MatchString(mobile) && len(mobile) >= 7
}
