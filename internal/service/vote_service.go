package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/repository"
	"github.com/openballot/evoting/pkg/events"
	"github.com/openballot/evoting/pkg/logger"
)

// VoteService is the ledger enforcing one vote per voter. It does not check
// OTPs itself; the HTTP boundary sequences VerifyOTP immediately before
// CastVote.
type VoteService interface {
	CastVote(ctx context.Context, identityNumber, candidateID string) error
}

type voteService struct {
	voterRepo     repository.VoterRepository
	candidateRepo repository.CandidateRepository
	eventBus      events.Publisher
}

func NewVoteService(
	voterRepo repository.VoterRepository,
	candidateRepo repository.CandidateRepository,
	eventBus events.Publisher,
) VoteService {
	return &voteService{
		voterRepo:     voterRepo,
		candidateRepo: candidateRepo,
		eventBus:      eventBus,
	}
}

func (s *voteService) CastVote(ctx context.Context, identityNumber, candidateID string) error {
	req := &domain.CastVoteRequest{IdentityNumber: identityNumber, CandidateID: candidateID}
	if err := req.Validate(); err != nil {
		return err
	}

	voter, err := s.voterRepo.FindByIdentity(ctx, identityNumber)
	if err != nil {
		return fmt.Errorf("failed to look up voter: %w", err)
	}
	if voter == nil {
		return fmt.Errorf("voter %s: %w", identityNumber, domain.ErrNotFound)
	}
	if voter.HasVoted {
		return fmt.Errorf("voter %s: %w", identityNumber, domain.ErrAlreadyVoted)
	}

	candidate, err := s.candidateRepo.FindByID(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("failed to look up candidate: %w", err)
	}
	if candidate == nil {
		return fmt.Errorf("candidate %s: %w", candidateID, domain.ErrNotFound)
	}

	// Two ordered single-collection writes. Incrementing first guarantees
	// the voter is never marked voted without a persisted count; if marking
	// fails (including a concurrent cast winning the race), the increment
	// is rolled back.
	if err := s.candidateRepo.IncrementVote(ctx, candidateID); err != nil {
		return fmt.Errorf("failed to record vote for candidate: %w", err)
	}

	if err := s.voterRepo.MarkVoted(ctx, identityNumber); err != nil {
		if rbErr := s.candidateRepo.DecrementVote(ctx, candidateID); rbErr != nil {
			logger.ErrorContext(ctx, "Failed to roll back vote count",
				"candidate_id", candidateID, "error", rbErr)
		}
		return fmt.Errorf("failed to mark voter: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.VoteCast, events.VoteCastEvent{
		CandidateID: candidateID,
		CastAt:      time.Now().UTC(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish vote event", "error", err)
	}

	return nil
}
