package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

type challenge struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is the default single-process challenge store. A zero TTL
// means challenges never expire, matching the baseline behavior; a positive
// TTL is the expiry hardening option.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.Mutex
	challenges map[string]challenge
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:        ttl,
		now:        time.Now,
		challenges: make(map[string]challenge),
	}
}

func (s *MemoryStore) Issue(_ context.Context, key, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := challenge{code: code}
	if s.ttl > 0 {
		c.expiresAt = s.now().Add(s.ttl)
	}
	s.challenges[key] = c
	return nil
}

func (s *MemoryStore) Verify(_ context.Context, key, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[key]
	if !ok {
		return false, nil
	}
	if !c.expiresAt.IsZero() && s.now().After(c.expiresAt) {
		delete(s.challenges, key)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(c.code), []byte(code)) != 1 {
		// Mismatch leaves the challenge in place; only success consumes it.
		return false, nil
	}

	delete(s.challenges, key)
	return true, nil
}
