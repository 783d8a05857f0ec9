package domain

import "errors"

// Failure taxonomy surfaced to the API boundary. Services wrap these with
// fmt.Errorf("...: %w", err); handlers map them to HTTP status codes with
// errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrInvalidOTP        = errors.New("invalid or expired OTP")
	ErrInvalidInput      = errors.New("invalid input")
)
