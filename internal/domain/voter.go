package domain

// Voter is an approved electorate member. Created only by approving a voter
// signup request. HasVoted flips false to true exactly once and never
// reverts.
type Voter struct {
	IdentityNumber string `json:"identity_number"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	DateOfBirth    string `json:"dob,omitempty"`
	Photo          string `json:"photo,omitempty"`
	HasVoted       bool   `json:"has_voted"`
}
