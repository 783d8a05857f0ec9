package domain

import (
	"fmt"
	"strings"
)

// Candidate is an approved ballot entry. Created only by approving a
// candidate signup request; VoteCount starts at 0 and only increments.
type Candidate struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Party        string `json:"party"`
	Mobile       string `json:"mobile"`
	PasswordHash string `json:"password_hash"`
	Ideology     string `json:"ideology,omitempty"`
	Bio          string `json:"bio,omitempty"`
	Manifesto    string `json:"manifesto,omitempty"`
	Socials      string `json:"socials,omitempty"`
	Education    string `json:"education,omitempty"`
	Photo        string `json:"photo,omitempty"`
	VoteCount    int    `json:"vote_count"`
}

// PublicCandidate is the externally visible shape of a Candidate. VoteCount
// is a pointer so it can be absent, not zero, while results are unpublished.
type PublicCandidate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Party     string `json:"party"`
	Ideology  string `json:"ideology,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Manifesto string `json:"manifesto,omitempty"`
	Socials   string `json:"socials,omitempty"`
	Education string `json:"education,omitempty"`
	Photo     string `json:"photo,omitempty"`
	VoteCount *int   `json:"vote_count,omitempty"`
}

// ToPublic strips credentials and, unless results are published, the vote
// count.
func (c *Candidate) ToPublic(resultsPublished bool) PublicCandidate {
	pub := PublicCandidate{
		ID:        c.ID,
		Name:      c.Name,
		Party:     c.Party,
		Ideology:  c.Ideology,
		Bio:       c.Bio,
		Manifesto: c.Manifesto,
		Socials:   c.Socials,
		Education: c.Education,
		Photo:     c.Photo,
	}
	if resultsPublished {
		count := c.VoteCount
		pub.VoteCount = &count
	}
	return pub
}

// UpdateCandidateProfileRequest carries a sparse self-service profile
// update; nil fields are left untouched.
type UpdateCandidateProfileRequest struct {
	Ideology  *string `json:"ideology,omitempty"`
	Photo     *string `json:"photo,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Manifesto *string `json:"manifesto,omitempty"`
	Socials   *string `json:"socials,omitempty"`
	Education *string `json:"education,omitempty"`
}

func (r *UpdateCandidateProfileRequest) Validate() error {
	if r.Ideology == nil && r.Photo == nil && r.Bio == nil && r.Manifesto == nil && r.Socials == nil && r.Education == nil {
		return fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	return nil
}

func (r *UpdateCandidateProfileRequest) Normalize() {
	if r.Ideology != nil {
		trimmed := strings.TrimSpace(*r.Ideology)
		r.Ideology = &trimmed
	}
}
