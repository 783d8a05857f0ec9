package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/store"
)

type VoterRepository interface {
	List(ctx context.Context) ([]domain.Voter, error)
	FindByIdentity(ctx context.Context, identityNumber string) (*domain.Voter, error)
	Insert(ctx context.Context, voter *domain.Voter) error
	MarkVoted(ctx context.Context, identityNumber string) error
	Delete(ctx context.Context, identityNumber string) error
}

type voterRepository struct {
	store store.Store
}

func NewVoterRepository(s store.Store) VoterRepository {
	return &voterRepository{store: s}
}

func decodeVoters(data []byte) ([]domain.Voter, error) {
	if data == nil {
		return nil, nil
	}
	var voters []domain.Voter
	if err := json.Unmarshal(data, &voters); err != nil {
		return nil, fmt.Errorf("failed to decode voters collection: %w", err)
	}
	return voters, nil
}

func (r *voterRepository) List(ctx context.Context) ([]domain.Voter, error) {
	data, err := r.store.Read(ctx, store.CollectionVoters)
	if err != nil {
		return nil, err
	}
	return decodeVoters(data)
}

func (r *voterRepository) FindByIdentity(ctx context.Context, identityNumber string) (*domain.Voter, error) {
	voters, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range voters {
		if voters[i].IdentityNumber == identityNumber {
			return &voters[i], nil
		}
	}
	return nil, nil
}

func (r *voterRepository) Insert(ctx context.Context, voter *domain.Voter) error {
	return r.store.Mutate(ctx, store.CollectionVoters, func(data []byte) ([]byte, error) {
		voters, err := decodeVoters(data)
		if err != nil {
			return nil, err
		}
		for i := range voters {
			if voters[i].IdentityNumber == voter.IdentityNumber {
				return nil, fmt.Errorf("voter %s: %w", voter.IdentityNumber, domain.ErrConflict)
			}
		}
		voters = append(voters, *voter)
		return json.Marshal(voters)
	})
}

// MarkVoted flips HasVoted under the collection lock, so two concurrent
// casts for the same voter cannot both succeed.
func (r *voterRepository) MarkVoted(ctx context.Context, identityNumber string) error {
	return r.store.Mutate(ctx, store.CollectionVoters, func(data []byte) ([]byte, error) {
		voters, err := decodeVoters(data)
		if err != nil {
			return nil, err
		}
		for i := range voters {
			if voters[i].IdentityNumber != identityNumber {
				continue
			}
			if voters[i].HasVoted {
				return nil, fmt.Errorf("voter %s: %w", identityNumber, domain.ErrAlreadyVoted)
			}
			voters[i].HasVoted = true
			return json.Marshal(voters)
		}
		return nil, fmt.Errorf("voter %s: %w", identityNumber, domain.ErrNotFound)
	})
}

func (r *voterRepository) Delete(ctx context.Context, identityNumber string) error {
	return r.store.Mutate(ctx, store.CollectionVoters, func(data []byte) ([]byte, error) {
		voters, err := decodeVoters(data)
		if err != nil {
			return nil, err
		}
		for i := range voters {
			if voters[i].IdentityNumber == identityNumber {
				voters = append(voters[:i], voters[i+1:]...)
				return json.Marshal(voters)
			}
		}
		return nil, fmt.Errorf("voter %s: %w", identityNumber, domain.ErrNotFound)
	})
}
