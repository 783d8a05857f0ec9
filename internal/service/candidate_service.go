package service

import (
	"context"
	"fmt"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/repository"
)

// CandidateService is the candidate self-service surface.
type CandidateService interface {
	UpdateProfile(ctx context.Context, candidateID string, req *domain.UpdateCandidateProfileRequest) error
}

type candidateService struct {
	candidateRepo repository.CandidateRepository
}

func NewCandidateService(candidateRepo repository.CandidateRepository) CandidateService {
	return &candidateService{candidateRepo: candidateRepo}
}

func (s *candidateService) UpdateProfile(ctx context.Context, candidateID string, req *domain.UpdateCandidateProfileRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.candidateRepo.UpdateProfile(ctx, candidateID, req); err != nil {
		return fmt.Errorf("failed to update candidate profile: %w", err)
	}
	return nil
}
