package service

import (
	"context"
	"fmt"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/repository"
)

// ResultsService derives the public candidate view. Vote counts stay absent
// from the output until an admin publishes results; callers must not read
// a missing count as zero.
type ResultsService interface {
	ListCandidates(ctx context.Context) ([]domain.PublicCandidate, domain.ElectionConfig, error)
	GetCandidate(ctx context.Context, id string) (*domain.PublicCandidate, error)
	GetConfig(ctx context.Context) (domain.ElectionConfig, error)
}

type resultsService struct {
	candidateRepo repository.CandidateRepository
	configRepo    repository.ConfigRepository
}

func NewResultsService(
	candidateRepo repository.CandidateRepository,
	configRepo repository.ConfigRepository,
) ResultsService {
	return &resultsService{
		candidateRepo: candidateRepo,
		configRepo:    configRepo,
	}
}

func (s *resultsService) ListCandidates(ctx context.Context) ([]domain.PublicCandidate, domain.ElectionConfig, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to read config: %w", err)
	}

	candidates, err := s.candidateRepo.List(ctx)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to list candidates: %w", err)
	}

	public := make([]domain.PublicCandidate, 0, len(candidates))
	for i := range candidates {
		public = append(public, candidates[i].ToPublic(cfg.ResultsPublished))
	}
	return public, cfg, nil
}

func (s *resultsService) GetCandidate(ctx context.Context, id string) (*domain.PublicCandidate, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	candidate, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up candidate: %w", err)
	}
	if candidate == nil {
		return nil, fmt.Errorf("candidate %s: %w", id, domain.ErrNotFound)
	}

	pub := candidate.ToPublic(cfg.ResultsPublished)
	return &pub, nil
}

func (s *resultsService) GetConfig(ctx context.Context) (domain.ElectionConfig, error) {
	return s.configRepo.Get(ctx)
}
