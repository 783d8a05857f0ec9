package store

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openballot/evoting/pkg/logger"
)

// PostgresStore keeps each collection as one jsonb row. The per-collection
// locks serialize read-modify-write cycles within this process; the store
// assumes a single writer process, same as the file backend.
type PostgresStore struct {
	pool *pgxpool.Pool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

const collectionsSchema = `
	CREATE TABLE IF NOT EXISTS collections (
		name        text PRIMARY KEY,
		data        jsonb NOT NULL,
		updated_at  timestamptz NOT NULL DEFAULT now()
	)`

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, collectionsSchema); err != nil {
		return nil, err
	}

	return &PostgresStore{
		pool:  pool,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *PostgresStore) lockFor(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[collection] = lock
	}
	return lock
}

func (s *PostgresStore) Read(ctx context.Context, collection string) ([]byte, error) {
	lock := s.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	return s.readLocked(ctx, collection)
}

func (s *PostgresStore) readLocked(ctx context.Context, collection string) ([]byte, error) {
	const q = `SELECT data FROM collections WHERE name = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var data []byte
	err := s.pool.QueryRow(ctx, q, collection).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.WarnContext(ctx, "Collection read failed, treating as empty",
			"collection", collection, "error", err)
		return nil, nil
	}
	return data, nil
}

func (s *PostgresStore) Write(ctx context.Context, collection string, data []byte) error {
	lock := s.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	return s.writeLocked(ctx, collection, data)
}

func (s *PostgresStore) writeLocked(ctx context.Context, collection string, data []byte) error {
	const q = `
		INSERT INTO collections (name, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, q, collection, data)
	return err
}

func (s *PostgresStore) Mutate(ctx context.Context, collection string, fn func(data []byte) ([]byte, error)) error {
	lock := s.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	data, err := s.readLocked(ctx, collection)
	if err != nil {
		return err
	}

	updated, err := fn(data)
	if err != nil {
		return err
	}

	return s.writeLocked(ctx, collection, updated)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
