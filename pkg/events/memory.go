package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryEventBus is a single-process fan-out bus used when no NATS server is
// configured. Delivery is best-effort: a subscriber that cannot keep up has
// events dropped rather than blocking publishers.
type MemoryEventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*memorySubscription
	closed bool
}

type memorySubscription struct {
	bus     *MemoryEventBus
	id      int
	subject string
	ch      chan *Message
	done    chan struct{}
}

const memorySubBuffer = 16

func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{subs: make(map[int]*memorySubscription)}
}

func (b *MemoryEventBus) Publish(_ context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	msg := &Message{
		Subject:   subject,
		Data:      payload,
		Timestamp: time.Now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("event bus closed")
	}

	for _, sub := range b.subs {
		if !subjectMatches(sub.subject, subject) {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			// Slow subscriber, drop. No backlog, no replay.
		}
	}
	return nil
}

func (b *MemoryEventBus) Subscribe(subject string, handler func(msg *Message)) (Subscription, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("event bus closed")
	}
	b.nextID++
	sub := &memorySubscription{
		bus:     b,
		id:      b.nextID,
		subject: subject,
		ch:      make(chan *Message, memorySubBuffer),
		done:    make(chan struct{}),
	}
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go func() {
		for {
			select {
			case msg := <-sub.ch:
				handler(msg)
			case <-sub.done:
				return
			}
		}
	}()

	return sub, nil
}

func (s *memorySubscription) Unsubscribe() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if _, ok := s.bus.subs[s.id]; !ok {
		return nil
	}
	delete(s.bus.subs, s.id)
	close(s.done)
	return nil
}

func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.done)
	}
	return nil
}

// subjectMatches implements exact matching plus the NATS ">" catch-all,
// which is all the subscribers in this codebase use.
func subjectMatches(pattern, subject string) bool {
	return pattern == ">" || pattern == subject
}
