package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/store"
)

type CandidateRepository interface {
	List(ctx context.Context) ([]domain.Candidate, error)
	FindByID(ctx context.Context, id string) (*domain.Candidate, error)
	FindByMobile(ctx context.Context, mobile string) (*domain.Candidate, error)
	Insert(ctx context.Context, candidate *domain.Candidate) error
	IncrementVote(ctx context.Context, id string) error
	DecrementVote(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, req *domain.UpdateCandidateProfileRequest) error
	Delete(ctx context.Context, id string) error
}

type candidateRepository struct {
	store store.Store
}

func NewCandidateRepository(s store.Store) CandidateRepository {
	return &candidateRepository{store: s}
}

func decodeCandidates(data []byte) ([]domain.Candidate, error) {
	if data == nil {
		return nil, nil
	}
	var candidates []domain.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates collection: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) List(ctx context.Context) ([]domain.Candidate, error) {
	data, err := r.store.Read(ctx, store.CollectionCandidates)
	if err != nil {
		return nil, err
	}
	return decodeCandidates(data)
}

func (r *candidateRepository) FindByID(ctx context.Context, id string) (*domain.Candidate, error) {
	candidates, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].ID == id {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (r *candidateRepository) FindByMobile(ctx context.Context, mobile string) (*domain.Candidate, error) {
	candidates, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].Mobile == mobile {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (r *candidateRepository) Insert(ctx context.Context, candidate *domain.Candidate) error {
	return r.store.Mutate(ctx, store.CollectionCandidates, func(data []byte) ([]byte, error) {
		candidates, err := decodeCandidates(data)
		if err != nil {
			return nil, err
		}
		for i := range candidates {
			if candidates[i].ID == candidate.ID {
				return nil, fmt.Errorf("candidate %s: %w", candidate.ID, domain.ErrConflict)
			}
			if candidates[i].Mobile == candidate.Mobile {
				return nil, fmt.Errorf("candidate mobile %s: %w", candidate.Mobile, domain.ErrConflict)
			}
		}
		candidates = append(candidates, *candidate)
		return json.Marshal(candidates)
	})
}

func (r *candidateRepository) IncrementVote(ctx context.Context, id string) error {
	return r.adjustVote(ctx, id, 1)
}

// DecrementVote exists only to roll back an increment whose paired voter
// write failed; nothing else may lower a vote count.
func (r *candidateRepository) DecrementVote(ctx context.Context, id string) error {
	return r.adjustVote(ctx, id, -1)
}

func (r *candidateRepository) adjustVote(ctx context.Context, id string, delta int) error {
	return r.store.Mutate(ctx, store.CollectionCandidates, func(data []byte) ([]byte, error) {
		candidates, err := decodeCandidates(data)
		if err != nil {
			return nil, err
		}
		for i := range candidates {
			if candidates[i].ID != id {
				continue
			}
			candidates[i].VoteCount += delta
			if candidates[i].VoteCount < 0 {
				candidates[i].VoteCount = 0
			}
			return json.Marshal(candidates)
		}
		return nil, fmt.Errorf("candidate %s: %w", id, domain.ErrNotFound)
	})
}

func (r *candidateRepository) UpdateProfile(ctx context.Context, id string, req *domain.UpdateCandidateProfileRequest) error {
	return r.store.Mutate(ctx, store.CollectionCandidates, func(data []byte) ([]byte, error) {
		candidates, err := decodeCandidates(data)
		if err != nil {
			return nil, err
		}
		for i := range candidates {
			if candidates[i].ID != id {
				continue
			}
			if req.Ideology != nil {
				candidates[i].Ideology = *req.Ideology
			}
			if req.Photo != nil {
				candidates[i].Photo = *req.Photo
			}
			if req.Bio != nil {
				candidates[i].Bio = *req.Bio
			}
			if req.Manifesto != nil {
				candidates[i].Manifesto = *req.Manifesto
			}
			if req.Socials != nil {
				candidates[i].Socials = *req.Socials
			}
			if req.Education != nil {
				candidates[i].Education = *req.Education
			}
			return json.Marshal(candidates)
		}
		return nil, fmt.Errorf("candidate %s: %w", id, domain.ErrNotFound)
	})
}

func (r *candidateRepository) Delete(ctx context.Context, id string) error {
	return r.store.Mutate(ctx, store.CollectionCandidates, func(data []byte) ([]byte, error) {
		candidates, err := decodeCandidates(data)
		if err != nil {
			return nil, err
		}
		for i := range candidates {
			if candidates[i].ID == id {
				candidates = append(candidates[:i], candidates[i+1:]...)
				return json.Marshal(candidates)
			}
		}
		return nil, fmt.Errorf("candidate %s: %w", id, domain.ErrNotFound)
	})
}
