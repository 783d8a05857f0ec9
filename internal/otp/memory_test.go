package otp

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreVerifyConsumesChallenge(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	if err := s.Issue(ctx, "A1", "123456"); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ok, err := s.Verify(ctx, "A1", "123456")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify = false, want true")
	}

	// Same code again must fail: the challenge was consumed.
	ok, err = s.Verify(ctx, "A1", "123456")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify succeeded twice with the same code")
	}
}

func TestMemoryStoreMismatchLeavesChallenge(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	if err := s.Issue(ctx, "A1", "123456"); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if ok, _ := s.Verify(ctx, "A1", "999999"); ok {
		t.Fatal("Verify accepted a wrong code")
	}
	if ok, _ := s.Verify(ctx, "A1", "123456"); !ok {
		t.Fatal("correct code rejected after a failed attempt")
	}
}

func TestMemoryStoreReissueSupersedes(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	s.Issue(ctx, "A1", "111111")
	s.Issue(ctx, "A1", "222222")

	if ok, _ := s.Verify(ctx, "A1", "111111"); ok {
		t.Fatal("superseded code still verifies")
	}
	if ok, _ := s.Verify(ctx, "A1", "222222"); !ok {
		t.Fatal("latest code does not verify")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(5 * time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.Issue(ctx, "A1", "123456")

	now = now.Add(10 * time.Minute)
	if ok, _ := s.Verify(ctx, "A1", "123456"); ok {
		t.Fatal("expired code still verifies")
	}
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := GenerateCode()
		if len(code) != 6 {
			t.Fatalf("len(%q) = %d, want 6", code, len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
	}
}
