package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// ChallengeStore holds the outstanding one-time code per voter identity
// number. Issuing a new code for the same key supersedes the old one; a
// successful Verify consumes the challenge so the code works exactly once.
type ChallengeStore interface {
	Issue(ctx context.Context, key, code string) error
	Verify(ctx context.Context, key, code string) (bool, error)
}

// GenerateCode returns a random 6-digit numeric code.
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand failing means something is deeply wrong with the host;
		// surface a code that can never verify rather than panic.
		return ""
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
