package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/mailer"
	"github.com/openballot/evoting/internal/otp"
	"github.com/openballot/evoting/internal/repository"
	"github.com/openballot/evoting/pkg/auth"
	"github.com/openballot/evoting/pkg/config"
	"github.com/openballot/evoting/pkg/logger"
)

// AuthService handles role-based login and the voter OTP sequence:
// Unauthenticated -> OtpIssued -> Verified, consumed on verification.
type AuthService interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	VerifyOTP(ctx context.Context, identityNumber, code string) error
}

type authService struct {
	adminRepo     repository.AdminRepository
	candidateRepo repository.CandidateRepository
	voterRepo     repository.VoterRepository
	challenges    otp.ChallengeStore
	mailer        mailer.Service
	config        *config.Config

	// genCode is swappable so tests can issue a known OTP.
	genCode func() string
}

func NewAuthService(
	adminRepo repository.AdminRepository,
	candidateRepo repository.CandidateRepository,
	voterRepo repository.VoterRepository,
	challenges otp.ChallengeStore,
	mailer mailer.Service,
	cfg *config.Config,
) AuthService {
	return &authService{
		adminRepo:     adminRepo,
		candidateRepo: candidateRepo,
		voterRepo:     voterRepo,
		challenges:    challenges,
		mailer:        mailer,
		config:        cfg,
		genCode:       otp.GenerateCode,
	}
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch req.Role {
	case domain.LoginRoleAdmin:
		return s.adminLogin(ctx, req)
	case domain.LoginRoleCandidate:
		return s.candidateLogin(ctx, req)
	default:
		return s.voterLogin(ctx, req)
	}
}

func (s *authService) adminLogin(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	account, err := s.adminRepo.FindByID(ctx, req.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("admin login: %w", domain.ErrInvalidCredential)
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Credential, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify admin credential: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("admin login: %w", domain.ErrInvalidCredential)
	}

	token, err := auth.NewAccessToken(account.ID, account.Role, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		Role:        account.Role,
		AccessToken: token,
		ExpiresIn:   int64(s.config.Auth.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *authService) candidateLogin(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	candidate, err := s.candidateRepo.FindByMobile(ctx, req.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up candidate: %w", err)
	}
	if candidate == nil {
		return nil, fmt.Errorf("candidate login: %w", domain.ErrInvalidCredential)
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Credential, candidate.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify candidate credential: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("candidate login: %w", domain.ErrInvalidCredential)
	}

	token, err := auth.NewAccessToken(candidate.ID, domain.LoginRoleCandidate, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		CandidateID: candidate.ID,
		AccessToken: token,
		ExpiresIn:   int64(s.config.Auth.AccessTokenTTL.Seconds()),
	}, nil
}

// voterLogin issues an OTP challenge. A voter who already voted may still
// log in; the vote itself is refused later by the ledger.
func (s *authService) voterLogin(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	voter, err := s.voterRepo.FindByIdentity(ctx, req.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up voter: %w", err)
	}
	if voter == nil {
		return nil, fmt.Errorf("voter not found or not approved: %w", domain.ErrNotFound)
	}

	code := s.genCode()
	if err := s.challenges.Issue(ctx, voter.IdentityNumber, code); err != nil {
		return nil, fmt.Errorf("failed to store OTP challenge: %w", err)
	}

	// Fire-and-forget delivery: the OTP is already issued, mail failure
	// must not change that or delay the response.
	go func(email, name, code string) {
		if err := s.mailer.SendVoteOTP(email, name, code); err != nil {
			logger.Warn("Failed to send OTP email", "error", err, "to", email)
		}
	}(voter.Email, voter.Name, code)

	resp := &domain.LoginResponse{
		OTPIssued: true,
		Message:   "OTP sent to registered email",
	}
	if s.config.Auth.OTPDebug {
		resp.DebugOTP = code
	}
	return resp, nil
}

func (s *authService) VerifyOTP(ctx context.Context, identityNumber, code string) error {
	req := &domain.VerifyOTPRequest{IdentityNumber: identityNumber, OTP: code}
	if err := req.Validate(); err != nil {
		return err
	}

	ok, err := s.challenges.Verify(ctx, identityNumber, code)
	if err != nil {
		return fmt.Errorf("failed to verify OTP: %w", err)
	}
	if !ok {
		return fmt.Errorf("otp for %s: %w", identityNumber, domain.ErrInvalidOTP)
	}
	return nil
}

// SeedRootAdmin creates the bootstrap admin account when the admins
// collection is empty, so a fresh deployment has a way in.
func SeedRootAdmin(ctx context.Context, adminRepo repository.AdminRepository, id, password string) error {
	admins, err := adminRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list admins: %w", err)
	}
	if len(admins) > 0 {
		return nil
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash root admin credential: %w", err)
	}

	account := &domain.AdminAccount{
		ID:           id,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := adminRepo.Insert(ctx, account); err != nil {
		return fmt.Errorf("failed to seed root admin: %w", err)
	}

	logger.Info("Seeded root admin account", "id", id, "seeded_at", time.Now().Format(time.RFC3339))
	return nil
}
