package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/store"
)

type RequestRepository interface {
	List(ctx context.Context) ([]domain.SignupRequest, error)
	FindByID(ctx context.Context, id string) (*domain.SignupRequest, error)
	Insert(ctx context.Context, req *domain.SignupRequest) error
	Remove(ctx context.Context, id string) error
}

type requestRepository struct {
	store store.Store
}

func NewRequestRepository(s store.Store) RequestRepository {
	return &requestRepository{store: s}
}

func decodeRequests(data []byte) ([]domain.SignupRequest, error) {
	if data == nil {
		return nil, nil
	}
	var requests []domain.SignupRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests collection: %w", err)
	}
	return requests, nil
}

func (r *requestRepository) List(ctx context.Context) ([]domain.SignupRequest, error) {
	data, err := r.store.Read(ctx, store.CollectionRequests)
	if err != nil {
		return nil, err
	}
	return decodeRequests(data)
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*domain.SignupRequest, error) {
	requests, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		if requests[i].ID == id {
			return &requests[i], nil
		}
	}
	return nil, nil
}

func (r *requestRepository) Insert(ctx context.Context, req *domain.SignupRequest) error {
	return r.store.Mutate(ctx, store.CollectionRequests, func(data []byte) ([]byte, error) {
		requests, err := decodeRequests(data)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
		return json.Marshal(requests)
	})
}

func (r *requestRepository) Remove(ctx context.Context, id string) error {
	return r.store.Mutate(ctx, store.CollectionRequests, func(data []byte) ([]byte, error) {
		requests, err := decodeRequests(data)
		if err != nil {
			return nil, err
		}
		for i := range requests {
			if requests[i].ID == id {
				requests = append(requests[:i], requests[i+1:]...)
				return json.Marshal(requests)
			}
		}
		return nil, fmt.Errorf("request %s: %w", id, domain.ErrNotFound)
	})
}
