package service

import (
	"context"
	"errors"
	"testing"

	"github.com/openballot/evoting/internal/domain"
)

func voterSignup(identity string) *domain.SubmitSignupRequest {
	return &domain.SubmitSignupRequest{
		Kind:           domain.KindVoter,
		Name:           "Asha Rao",
		IdentityNumber: identity,
		Email:          "asha@example.com",
		DateOfBirth:    "1990-04-12",
	}
}

func candidateSignup(mobile string) *domain.SubmitSignupRequest {
	return &domain.SubmitSignupRequest{
		Kind:     domain.KindCandidate,
		Name:     "Ravi Menon",
		Party:    "Unity Party",
		Mobile:   mobile,
		Password: "hunter2secret",
		Ideology: "roads and schools",
	}
}

func TestSubmitVoterRequest(t *testing.T) {
	env := newTestEnv()
	svc := NewSignupService(env.requests, env.voters, env.candidates, env.mailer, env.bus)
	ctx := context.Background()

	id, err := svc.Submit(ctx, voterSignup("ID-1001"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a request id")
	}

	pending, err := svc.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	if pending[0].Status != domain.StatusPending {
		t.Errorf("expected status pending, got %q", pending[0].Status)
	}
	if pending[0].IdentityNumber != "ID-1001" {
		t.Errorf("expected identity ID-1001, got %q", pending[0].IdentityNumber)
	}
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv()
	svc := NewSignupService(env.requests, env.voters, env.candidates, env.mailer, env.bus)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *domain.SubmitSignupRequest
	}{
		{"unknown kind", &domain.SubmitSignupRequest{Kind: "observer", Name: "X"}},
		{"voter without identity", &domain.SubmitSignupRequest{Kind: domain.KindVoter, Name: "X", Email: "x@example.com", DateOfBirth: "1990-01-01"}},
		{"voter with bad email", &domain.SubmitSignupRequest{Kind: domain.KindVoter, Name: "X", IdentityNumber: "ID-9", Email: "not-an-email", DateOfBirth: "1990-01-01"}},
		{"candidate without mobile", &domain.SubmitSignupRequest{Kind: domain.KindCandidate, Name: "X", Party: "P", Password: "longenough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Submit(ctx, tt.req); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSubmitDuplicateIdentity(t *testing.T) {
	env := newTestEnv()
	svc := NewSignupService(env.requests, env.voters, env.candidates, env.mailer, env.bus)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, voterSignup("ID-1001")); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	// Same identity while the first request is still pending.
	if _, err := svc.Submit(ctx, voterSignup("ID-1001")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for pending duplicate, got %v", err)
	}

	// Approve, then try again: the identity is now a registered voter.
	pending, _ := svc.ListRequests(ctx)
	if err := svc.Decide(ctx, pending[0].ID, domain.ActionApprove); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if _, err := svc.Submit(ctx, voterSignup("ID-1001")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for registered duplicate, got %v", err)
	}
}

func TestDecideApproveVoter(t *testing.T) {
	env := newTestEnv()
	svc := NewSignupService(env.requests, env.voters, env.candidates, env.mailer, env.bus)
	ctx := context.Background()

	id, err := svc.Submit(ctx, voterSignup("ID-2002"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := svc.Decide(ctx, id, domain.ActionApprove); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	voter, err := env.voters.FindByIdentity(ctx, "ID-2002")
	if err != nil {
		t.Fatalf("FindByIdentity failed: %v", err)
	}
	if voter == nil {
		t.Fatal("expected approved voter to exist")
	}
	if voter.HasVoted {
		t.Error("new voter must start with has_voted false")
	}

	pending, _ := svc.ListRequests(ctx)
	if len(pending) != 0 {
		t.Errorf("expected decided request to be removed, %d remain", len(pending))
	}
	if env.mailer.count() != 1 {
		t.Errorf("expected 1 decision email, got %d", env.mailer.count())
	}
}

func TestDecideApproveCandidate(t *testing.T) {
	env := newTestEnv()
	svc := NewSignupService(env.requests, env.voters, env.candidates, env.mailer, env.bus)
	ctx := context.Background()

	id, err := svc.Submit(ctx, candidateSignup("+15550001111"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := svc.Decide(ctx, id, domain.ActionApprove); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	candidate, err := env.candidates.FindByMobile(ctx, "+15550001111")
	if err != nil {
		t.Fatalf("FindByMobile failed: %v", err)
	}
	if candidate == nil {
		t.Fatal("expected approved candidate to exist")
	}
	if candidate.VoteCount != 0 {
		t.Errorf("new candidate vote count = %d, want 0", candidate.VoteCount)
	}
	if candidate.PasswordHash == "" || candidate.PasswordHash == "hunter2secret" {
		t.Error("candidate credential must be stored hashed")
	}
}

func TestDecideReject(t *testing.T) {
	env := newTestEnv()
	svc := NewSignupService(env.requests, env.voters, env.candidates, env.mailer, env.bus)
	ctx := context.Background()

	id, err := svc.Submit(ctx, voterSignup("ID-3003"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := svc.Decide(ctx, id, domain.ActionReject); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	voter, _ := env.voters.FindByIdentity(ctx, "ID-3003")
	if voter != nil {
		t.Error("rejected applicant must not become a voter")
	}
	pending, _ := svc.ListRequests(ctx)
	if len(pending) != 0 {
		t.Errorf("expected rejected request to be removed, %d remain", len(pending))
	}
}

func TestDecideTwiceIsNotFound(t *testing.T) {
	env := newTestEnv()
	svc := NewSignupService(env.requests, env.voters, env.candidates, env.mailer, env.bus)
	ctx := context.Background()

	id, err := svc.Submit(ctx, voterSignup("ID-4004"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := svc.Decide(ctx, id, domain.ActionApprove); err != nil {
		t.Fatalf("first Decide failed: %v", err)
	}
	if err := svc.Decide(ctx, id, domain.ActionApprove); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second decision, got %v", err)
	}
}

func TestDecideUnknownAction(t *testing.T) {
	env := newTestEnv()
	svc := NewSignupService(env.requests, env.voters, env.candidates, env.mailer, env.bus)

	if err := svc.Decide(context.Background(), "some-id", "defer"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
