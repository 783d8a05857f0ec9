package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/store"
)

type AdminRepository interface {
	List(ctx context.Context) ([]domain.AdminAccount, error)
	FindByID(ctx context.Context, id string) (*domain.AdminAccount, error)
	Insert(ctx context.Context, account *domain.AdminAccount) error
	Delete(ctx context.Context, id string) error
}

type adminRepository struct {
	store store.Store
}

func NewAdminRepository(s store.Store) AdminRepository {
	return &adminRepository{store: s}
}

func decodeAdmins(data []byte) ([]domain.AdminAccount, error) {
	if data == nil {
		return nil, nil
	}
	var admins []domain.AdminAccount
	if err := json.Unmarshal(data, &admins); err != nil {
		return nil, fmt.Errorf("failed to decode admins collection: %w", err)
	}
	return admins, nil
}

func (r *adminRepository) List(ctx context.Context) ([]domain.AdminAccount, error) {
	data, err := r.store.Read(ctx, store.CollectionAdmins)
	if err != nil {
		return nil, err
	}
	return decodeAdmins(data)
}

func (r *adminRepository) FindByID(ctx context.Context, id string) (*domain.AdminAccount, error) {
	admins, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range admins {
		if admins[i].ID == id {
			return &admins[i], nil
		}
	}
	return nil, nil
}

// Insert enforces id uniqueness under the collection lock: a duplicate id
// fails with Conflict and leaves the existing account untouched.
func (r *adminRepository) Insert(ctx context.Context, account *domain.AdminAccount) error {
	return r.store.Mutate(ctx, store.CollectionAdmins, func(data []byte) ([]byte, error) {
		admins, err := decodeAdmins(data)
		if err != nil {
			return nil, err
		}
		for i := range admins {
			if admins[i].ID == account.ID {
				return nil, fmt.Errorf("admin %s: %w", account.ID, domain.ErrConflict)
			}
		}
		admins = append(admins, *account)
		return json.Marshal(admins)
	})
}

func (r *adminRepository) Delete(ctx context.Context, id string) error {
	return r.store.Mutate(ctx, store.CollectionAdmins, func(data []byte) ([]byte, error) {
		admins, err := decodeAdmins(data)
		if err != nil {
			return nil, err
		}
		for i := range admins {
			if admins[i].ID == id {
				admins = append(admins[:i], admins[i+1:]...)
				return json.Marshal(admins)
			}
		}
		return nil, fmt.Errorf("admin %s: %w", id, domain.ErrNotFound)
	})
}
