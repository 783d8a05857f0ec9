package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/store"
)

type ConfigRepository interface {
	Get(ctx context.Context) (domain.ElectionConfig, error)
	SetResultsPublished(ctx context.Context, published bool) error
}

type configRepository struct {
	store store.Store
}

func NewConfigRepository(s store.Store) ConfigRepository {
	return &configRepository{store: s}
}

// Get returns the singleton config, defaulting to unpublished when the
// collection does not exist yet.
func (r *configRepository) Get(ctx context.Context) (domain.ElectionConfig, error) {
	var cfg domain.ElectionConfig

	data, err := r.store.Read(ctx, store.CollectionConfig)
	if err != nil {
		return cfg, err
	}
	if data == nil {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config collection: %w", err)
	}
	return cfg, nil
}

func (r *configRepository) SetResultsPublished(ctx context.Context, published bool) error {
	return r.store.Mutate(ctx, store.CollectionConfig, func(data []byte) ([]byte, error) {
		var cfg domain.ElectionConfig
		if data != nil {
			if err := json.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config collection: %w", err)
			}
		}
		cfg.ResultsPublished = published
		return json.Marshal(cfg)
	})
}
