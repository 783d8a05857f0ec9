package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/mailer"
	"github.com/openballot/evoting/internal/repository"
	"github.com/openballot/evoting/pkg/events"
	"github.com/openballot/evoting/pkg/logger"
)

// SignupService governs the signup request lifecycle: public intake and the
// admin approve/reject decision that materializes voters and candidates.
type SignupService interface {
	Submit(ctx context.Context, req *domain.SubmitSignupRequest) (string, error)
	Decide(ctx context.Context, requestID, action string) error
	ListRequests(ctx context.Context) ([]domain.SignupRequest, error)
}

type signupService struct {
	requestRepo   repository.RequestRepository
	voterRepo     repository.VoterRepository
	candidateRepo repository.CandidateRepository
	mailer        mailer.Service
	eventBus      events.Publisher
}

func NewSignupService(
	requestRepo repository.RequestRepository,
	voterRepo repository.VoterRepository,
	candidateRepo repository.CandidateRepository,
	mailer mailer.Service,
	eventBus events.Publisher,
) SignupService {
	return &signupService{
		requestRepo:   requestRepo,
		voterRepo:     voterRepo,
		candidateRepo: candidateRepo,
		mailer:        mailer,
		eventBus:      eventBus,
	}
}

func (s *signupService) Submit(ctx context.Context, req *domain.SubmitSignupRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	if err := s.checkDuplicate(ctx, req); err != nil {
		return "", err
	}

	request := &domain.SignupRequest{
		ID:             newOrderedID(),
		Kind:           req.Kind,
		Status:         domain.StatusPending,
		SubmittedAt:    time.Now().UTC(),
		Name:           req.Name,
		Photo:          req.Photo,
		IdentityNumber: req.IdentityNumber,
		Email:          req.Email,
		DateOfBirth:    req.DateOfBirth,
		Party:          req.Party,
		Mobile:         req.Mobile,
		Password:       req.Password,
		Ideology:       req.Ideology,
	}

	if err := s.requestRepo.Insert(ctx, request); err != nil {
		return "", fmt.Errorf("failed to store signup request: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.SignupSubmitted, events.SignupSubmittedEvent{
		RequestID:   request.ID,
		Kind:        request.Kind,
		SubmittedAt: request.SubmittedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish signup event", "error", err)
	}

	return request.ID, nil
}

// checkDuplicate rejects a signup whose identity number (voter) or mobile
// (candidate) already exists among pending requests or materialized records.
func (s *signupService) checkDuplicate(ctx context.Context, req *domain.SubmitSignupRequest) error {
	pending, err := s.requestRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending requests: %w", err)
	}

	switch req.Kind {
	case domain.KindVoter:
		for i := range pending {
			if pending[i].Kind == domain.KindVoter && pending[i].IdentityNumber == req.IdentityNumber {
				return fmt.Errorf("identity number %s has a pending request: %w", req.IdentityNumber, domain.ErrConflict)
			}
		}
		voter, err := s.voterRepo.FindByIdentity(ctx, req.IdentityNumber)
		if err != nil {
			return fmt.Errorf("failed to check existing voters: %w", err)
		}
		if voter != nil {
			return fmt.Errorf("identity number %s is already registered: %w", req.IdentityNumber, domain.ErrConflict)
		}
	case domain.KindCandidate:
		for i := range pending {
			if pending[i].Kind == domain.KindCandidate && pending[i].Mobile == req.Mobile {
				return fmt.Errorf("mobile %s has a pending request: %w", req.Mobile, domain.ErrConflict)
			}
		}
		candidate, err := s.candidateRepo.FindByMobile(ctx, req.Mobile)
		if err != nil {
			return fmt.Errorf("failed to check existing candidates: %w", err)
		}
		if candidate != nil {
			return fmt.Errorf("mobile %s is already registered: %w", req.Mobile, domain.ErrConflict)
		}
	}
	return nil
}

// Decide approves or rejects a pending request. Approval materializes the
// voter or candidate before removing the request, so a crash in between
// leaves a decided-but-not-removed request rather than a lost approval.
// Once removal completes, deciding the same id again is NotFound.
func (s *signupService) Decide(ctx context.Context, requestID, action string) error {
	decision := &domain.DecideRequest{RequestID: requestID, Action: action}
	if err := decision.Validate(); err != nil {
		return err
	}

	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to look up request: %w", err)
	}
	if request == nil {
		return fmt.Errorf("request %s: %w", requestID, domain.ErrNotFound)
	}

	if action == domain.ActionApprove {
		if err := s.materialize(ctx, request); err != nil {
			return err
		}
	}

	if err := s.requestRepo.Remove(ctx, requestID); err != nil {
		return fmt.Errorf("failed to remove decided request: %w", err)
	}

	subject := events.RequestRejected
	if action == domain.ActionApprove {
		subject = events.RequestApproved
	}
	if err := s.eventBus.Publish(ctx, subject, events.RequestDecidedEvent{
		RequestID: requestID,
		Kind:      request.Kind,
		Action:    action,
		DecidedAt: time.Now().UTC(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish decision event", "error", err)
	}

	s.notifyApplicant(ctx, request, action == domain.ActionApprove)

	return nil
}

func (s *signupService) materialize(ctx context.Context, request *domain.SignupRequest) error {
	switch request.Kind {
	case domain.KindVoter:
		voter := &domain.Voter{
			IdentityNumber: request.IdentityNumber,
			Name:           request.Name,
			Email:          request.Email,
			DateOfBirth:    request.DateOfBirth,
			Photo:          request.Photo,
			HasVoted:       false,
		}
		if err := s.voterRepo.Insert(ctx, voter); err != nil {
			return fmt.Errorf("failed to materialize voter: %w", err)
		}
	case domain.KindCandidate:
		passwordHash, err := argon2id.CreateHash(request.Password, argon2id.DefaultParams)
		if err != nil {
			return fmt.Errorf("failed to hash candidate credential: %w", err)
		}
		candidate := &domain.Candidate{
			ID:           newOrderedID(),
			Name:         request.Name,
			Party:        request.Party,
			Mobile:       request.Mobile,
			PasswordHash: passwordHash,
			Ideology:     request.Ideology,
			Photo:        request.Photo,
			VoteCount:    0,
		}
		if err := s.candidateRepo.Insert(ctx, candidate); err != nil {
			return fmt.Errorf("failed to materialize candidate: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown request kind %q", domain.ErrInvalidInput, request.Kind)
	}
	return nil
}

func (s *signupService) notifyApplicant(ctx context.Context, request *domain.SignupRequest, approved bool) {
	if request.Email == "" {
		return
	}
	if err := s.mailer.SendSignupDecision(request.Email, request.Name, request.Kind, approved); err != nil {
		logger.WarnContext(ctx, "Failed to send decision email",
			"error", err, "request_id", request.ID)
	}
}

func (s *signupService) ListRequests(ctx context.Context) ([]domain.SignupRequest, error) {
	return s.requestRepo.List(ctx)
}

// newOrderedID returns a time-ordered unique id. UUIDv7 encodes the wall
// clock in its high bits, so ids sort by generation time.
func newOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
