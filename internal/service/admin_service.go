package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/repository"
	"github.com/openballot/evoting/pkg/events"
	"github.com/openballot/evoting/pkg/logger"
)

// AdminService covers the operator surface: roster listings, sub-admin
// management, results publication and record removal.
type AdminService interface {
	ListVoters(ctx context.Context) ([]domain.Voter, error)
	ListCandidates(ctx context.Context) ([]domain.Candidate, error)
	ListSubAdmins(ctx context.Context) ([]domain.AdminInfo, error)
	CreateSubAdmin(ctx context.Context, req *domain.CreateSubAdminRequest) error
	PublishResults(ctx context.Context, publish bool) error
	DeleteEntity(ctx context.Context, req *domain.DeleteEntityRequest) error
}

type adminService struct {
	adminRepo     repository.AdminRepository
	voterRepo     repository.VoterRepository
	candidateRepo repository.CandidateRepository
	configRepo    repository.ConfigRepository
	eventBus      events.Publisher
}

func NewAdminService(
	adminRepo repository.AdminRepository,
	voterRepo repository.VoterRepository,
	candidateRepo repository.CandidateRepository,
	configRepo repository.ConfigRepository,
	eventBus events.Publisher,
) AdminService {
	return &adminService{
		adminRepo:     adminRepo,
		voterRepo:     voterRepo,
		candidateRepo: candidateRepo,
		configRepo:    configRepo,
		eventBus:      eventBus,
	}
}

func (s *adminService) ListVoters(ctx context.Context) ([]domain.Voter, error) {
	return s.voterRepo.List(ctx)
}

func (s *adminService) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	return s.candidateRepo.List(ctx)
}

func (s *adminService) ListSubAdmins(ctx context.Context) ([]domain.AdminInfo, error) {
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]domain.AdminInfo, 0, len(admins))
	for i := range admins {
		infos = append(infos, admins[i].ToInfo())
	}
	return infos, nil
}

func (s *adminService) CreateSubAdmin(ctx context.Context, req *domain.CreateSubAdminRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash credential: %w", err)
	}

	account := &domain.AdminAccount{
		ID:           req.AdminID,
		PasswordHash: hash,
		Role:         domain.RoleSubAdmin,
	}
	if err := s.adminRepo.Insert(ctx, account); err != nil {
		return fmt.Errorf("failed to create sub-admin: %w", err)
	}
	return nil
}

func (s *adminService) PublishResults(ctx context.Context, publish bool) error {
	if err := s.configRepo.SetResultsPublished(ctx, publish); err != nil {
		return fmt.Errorf("failed to update results flag: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.ResultsPublished, events.ResultsPublishedEvent{
		Published: publish,
		ChangedAt: time.Now().UTC(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish results event", "error", err)
	}
	return nil
}

func (s *adminService) DeleteEntity(ctx context.Context, req *domain.DeleteEntityRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	switch req.Type {
	case domain.KindVoter:
		return s.voterRepo.Delete(ctx, req.ID)
	case domain.KindCandidate:
		return s.candidateRepo.Delete(ctx, req.ID)
	default:
		return s.adminRepo.Delete(ctx, req.ID)
	}
}
