package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/openballot/evoting/pkg/logger"
)

// FileStore keeps each collection in <dataDir>/<collection>.json. Writes go
// through a temp file and an atomic rename, under a per-collection mutex.
type FileStore struct {
	dataDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore(dataDir string) (*FileStore, error) {
	absPath, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	return &FileStore{
		dataDir: absPath,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

func (s *FileStore) lockFor(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[collection] = lock
	}
	return lock
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dataDir, collection+".json")
}

func (s *FileStore) Read(ctx context.Context, collection string) ([]byte, error) {
	lock := s.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	return s.readLocked(ctx, collection)
}

func (s *FileStore) readLocked(ctx context.Context, collection string) ([]byte, error) {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		logger.WarnContext(ctx, "Collection read failed, treating as empty",
			"collection", collection, "error", err)
		return nil, nil
	}

	if !json.Valid(data) {
		logger.WarnContext(ctx, "Collection file is corrupt, treating as empty",
			"collection", collection)
		return nil, nil
	}

	return data, nil
}

func (s *FileStore) Write(ctx context.Context, collection string, data []byte) error {
	lock := s.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	return s.writeLocked(collection, data)
}

func (s *FileStore) writeLocked(collection string, data []byte) error {
	path := s.path(collection)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to persist collection %s: %w", collection, err)
	}

	return nil
}

func (s *FileStore) Mutate(ctx context.Context, collection string, fn func(data []byte) ([]byte, error)) error {
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

	return s.writeLocked(collection, updated)
}

func (s *FileStore) Close() error {
	return nil
}
