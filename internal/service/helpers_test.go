package service

import (
	"context"
	"sync"

	"github.com/openballot/evoting/internal/mailer"
	"github.com/openballot/evoting/internal/repository"
	"github.com/openballot/evoting/pkg/config"
	"github.com/openballot/evoting/pkg/events"
)

// memStore keeps collections in a map, mirroring the file store's
// serialization guarantees for in-process tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Read(_ context.Context, collection string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[collection], nil
}

func (s *memStore) Write(_ context.Context, collection string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[collection] = data
	return nil
}

func (s *memStore) Mutate(_ context.Context, collection string, fn func([]byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.data[collection])
	if err != nil {
		return err
	}
	s.data[collection] = next
	return nil
}

func (s *memStore) Close() error { return nil }

type sentMail struct {
	To       string
	Kind     string
	Code     string
	Approved bool
}

// mockMailer records deliveries so tests can assert on them.
type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

var _ mailer.Service = (*mockMailer)(nil)

func (m *mockMailer) SendVoteOTP(toEmail, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: toEmail, Kind: "otp", Code: code})
	return nil
}

func (m *mockMailer) SendSignupDecision(toEmail, _, kind string, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: toEmail, Kind: kind, Approved: approved})
	return nil
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// testEnv wires every repository over one in-memory store, the way main
// assembles the real thing.
type testEnv struct {
	store      *memStore
	bus        *events.MemoryEventBus
	mailer     *mockMailer
	cfg        *config.Config
	requests   repository.RequestRepository
	voters     repository.VoterRepository
	candidates repository.CandidateRepository
	admins     repository.AdminRepository
	config     repository.ConfigRepository
}

func newTestEnv() *testEnv {
	s := newMemStore()
	return &testEnv{
		store:      s,
		bus:        events.NewMemoryEventBus(),
		mailer:     &mockMailer{},
		cfg:        config.Load(),
		requests:   repository.NewRequestRepository(s),
		voters:     repository.NewVoterRepository(s),
		candidates: repository.NewCandidateRepository(s),
		admins:     repository.NewAdminRepository(s),
		config:     repository.NewConfigRepository(s),
	}
}
