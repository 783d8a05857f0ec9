package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/openballot/evoting/pkg/events"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	subject string
	data    interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{subject: subject, data: data})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.published...)
}

// failingStore rejects every write so the decorator's no-event-on-failure
// behavior can be observed.
type failingStore struct{}

func (failingStore) Read(context.Context, string) ([]byte, error) { return nil, nil }
func (failingStore) Write(context.Context, string, []byte) error {
	return errors.New("disk full")
}
func (failingStore) Mutate(context.Context, string, func([]byte) ([]byte, error)) error {
	return errors.New("disk full")
}
func (failingStore) Close() error { return nil }

func TestNotifyingStoreWritePublishesOneEvent(t *testing.T) {
	inner, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	pub := &recordingPublisher{}
	s := NewNotifyingStore(inner, pub)
	ctx := context.Background()

	if err := s.Write(ctx, CollectionVoters, []byte(`[]`)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got := pub.events()
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 event per write, got %d", len(got))
	}
	if got[0].subject != events.DataChanged {
		t.Errorf("subject = %q, want %q", got[0].subject, events.DataChanged)
	}
	payload, ok := got[0].data.(events.DataChangedEvent)
	if !ok {
		t.Fatalf("payload type = %T, want DataChangedEvent", got[0].data)
	}
	if payload.Collection != CollectionVoters {
		t.Errorf("collection = %q, want %q", payload.Collection, CollectionVoters)
	}
	if payload.Timestamp.IsZero() {
		t.Error("expected a timestamp on the change event")
	}
}

func TestNotifyingStoreMutatePublishesOneEvent(t *testing.T) {
	inner, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	pub := &recordingPublisher{}
	s := NewNotifyingStore(inner, pub)
	ctx := context.Background()

	err = s.Mutate(ctx, CollectionCandidates, func(data []byte) ([]byte, error) {
		return json.Marshal([]string{"a"})
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	got := pub.events()
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 event per mutate, got %d", len(got))
	}
	if payload := got[0].data.(events.DataChangedEvent); payload.Collection != CollectionCandidates {
		t.Errorf("collection = %q, want %q", payload.Collection, CollectionCandidates)
	}
}

func TestNotifyingStoreFailedWritePublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewNotifyingStore(failingStore{}, pub)
	ctx := context.Background()

	if err := s.Write(ctx, CollectionVoters, []byte(`[]`)); err == nil {
		t.Fatal("expected Write to fail")
	}
	if err := s.Mutate(ctx, CollectionVoters, func(data []byte) ([]byte, error) {
		return data, nil
	}); err == nil {
		t.Fatal("expected Mutate to fail")
	}

	if got := pub.events(); len(got) != 0 {
		t.Fatalf("failed writes must publish nothing, got %d events", len(got))
	}
}

func TestNotifyingStoreMutateCallbackErrorPublishesNothing(t *testing.T) {
	inner, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	pub := &recordingPublisher{}
	s := NewNotifyingStore(inner, pub)

	err = s.Mutate(context.Background(), CollectionRequests, func([]byte) ([]byte, error) {
		return nil, errors.New("record not found")
	})
	if err == nil {
		t.Fatal("expected Mutate to surface the callback error")
	}
	if got := pub.events(); len(got) != 0 {
		t.Fatalf("failed mutate must publish nothing, got %d events", len(got))
	}
}
