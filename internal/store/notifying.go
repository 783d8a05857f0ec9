package store

import (
	"context"
	"time"

	"github.com/openballot/evoting/pkg/events"
	"github.com/openballot/evoting/pkg/logger"
)

// NotifyingStore decorates a Store so every successful write broadcasts a
// DataChanged event naming the collection. Broadcast failures are logged,
// never surfaced: live updates are best-effort.
type NotifyingStore struct {
	inner Store
	bus   events.Publisher
}

func NewNotifyingStore(inner Store, bus events.Publisher) *NotifyingStore {
	return &NotifyingStore{inner: inner, bus: bus}
}

func (s *NotifyingStore) Read(ctx context.Context, collection string) ([]byte, error) {
	return s.inner.Read(ctx, collection)
}

func (s *NotifyingStore) Write(ctx context.Context, collection string, data []byte) error {
	if err := s.inner.Write(ctx, collection, data); err != nil {
		return err
	}
	s.broadcast(ctx, collection)
	return nil
}

func (s *NotifyingStore) Mutate(ctx context.Context, collection string, fn func(data []byte) ([]byte, error)) error {
	if err := s.inner.Mutate(ctx, collection, fn); err != nil {
		return err
	}
	s.broadcast(ctx, collection)
	return nil
}

func (s *NotifyingStore) broadcast(ctx context.Context, collection string) {
	event := events.DataChangedEvent{
		Collection: collection,
		Timestamp:  time.Now(),
	}
	if err := s.bus.Publish(ctx, events.DataChanged, event); err != nil {
		logger.WarnContext(ctx, "Failed to broadcast collection change",
			"collection", collection, "error", err)
	}
}

func (s *NotifyingStore) Close() error {
	return s.inner.Close()
}
