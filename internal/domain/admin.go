package domain

import (
	"fmt"
	"strings"
)

// Admin roles
const (
	RoleAdmin    = "admin"
	RoleSubAdmin = "subadmin"
)

// AdminAccount is an operator login. ID doubles as the login identifier and
// is unique within the admins collection.
type AdminAccount struct {
	ID           string `json:"id"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

// AdminInfo is AdminAccount without the credential hash.
type AdminInfo struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (a *AdminAccount) ToInfo() AdminInfo {
	return AdminInfo{ID: a.ID, Role: a.Role}
}

type CreateSubAdminRequest struct {
	AdminID  string `json:"admin_id"`
	Password string `json:"password"`
}

func (r *CreateSubAdminRequest) Normalize() {
	r.AdminID = strings.TrimSpace(r.AdminID)
}

func (r *CreateSubAdminRequest) Validate() error {
	if r.AdminID == "" {
		return fmt.Errorf("%w: admin id is required", ErrInvalidInput)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	return nil
}

// DeleteEntityRequest names a record an admin wants removed. Type selects
// the collection; ID is the identity number for voters, the record id
// otherwise.
type DeleteEntityRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (r *DeleteEntityRequest) Validate() error {
	switch r.Type {
	case KindVoter, KindCandidate, RoleAdmin:
	default:
		return fmt.Errorf("%w: type must be voter, candidate or admin", ErrInvalidInput)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return nil
}

type PublishResultsRequest struct {
	Publish bool `json:"publish"`
}
