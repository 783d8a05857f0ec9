package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/openballot/evoting/internal/domain"
	"github.com/openballot/evoting/internal/mailer"
	"github.com/openballot/evoting/internal/otp"
	"github.com/openballot/evoting/internal/repository"
	"github.com/openballot/evoting/internal/service"
	"github.com/openballot/evoting/internal/store"
	"github.com/openballot/evoting/pkg/config"
	"github.com/openballot/evoting/pkg/events"
)

// newTestRouter assembles the full stack over a file store in a temp dir,
// the same wiring main performs. OTP debug stays on so tests can read the
// issued code from the login response.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	fileStore, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	bus := events.NewMemoryEventBus()
	t.Cleanup(func() { bus.Close() })
	dataStore := store.NewNotifyingStore(fileStore, bus)

	cfg := config.Load()
	cfg.Auth.OTPDebug = true

	requestRepo := repository.NewRequestRepository(dataStore)
	voterRepo := repository.NewVoterRepository(dataStore)
	candidateRepo := repository.NewCandidateRepository(dataStore)
	adminRepo := repository.NewAdminRepository(dataStore)
	configRepo := repository.NewConfigRepository(dataStore)

	ctx := t.Context()
	if err := service.SeedRootAdmin(ctx, adminRepo, "admin", "admin123"); err != nil {
		t.Fatalf("SeedRootAdmin failed: %v", err)
	}

	mail := mailer.NewDevMailer()
	challenges := otp.NewMemoryStore(0)

	h := New(
		service.NewSignupService(requestRepo, voterRepo, candidateRepo, mail, bus),
		service.NewAuthService(adminRepo, candidateRepo, voterRepo, challenges, mail, cfg),
		service.NewVoteService(voterRepo, candidateRepo, bus),
		service.NewResultsService(candidateRepo, configRepo),
		service.NewAdminService(adminRepo, voterRepo, candidateRepo, configRepo, bus),
		service.NewCandidateService(candidateRepo),
		bus,
		cfg,
	)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/vote", h.CastVote)
		r.Get("/candidates", h.ListCandidates)
		r.Get("/candidates/{id}", h.GetCandidate)
		r.Get("/config", h.GetConfig)
		r.Get("/live", h.Live)
		r.Route("/candidate", func(r chi.Router) {
			r.Use(h.RequireJWT("candidate"))
			r.Post("/profile", h.UpdateCandidateProfile)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireJWT("admin"))
			r.Get("/requests", h.ListRequests)
			r.Post("/decide", h.Decide)
			r.Get("/voters", h.ListVoters)
			r.Post("/subadmins", h.CreateSubAdmin)
			r.Post("/publish", h.PublishResults)
			r.Post("/delete", h.DeleteEntity)
		})
	})

	return r
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, token string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return resp, decoded
}

func getJSON(t *testing.T, url, token string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return resp, decoded
}

func rawString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	return s
}

func adminToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := postJSON(t, srv.URL+"/api/login", "", domain.LoginRequest{
		Role: "admin", Identifier: "admin", Credential: "admin123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login status = %d", resp.StatusCode)
	}
	return rawString(t, body["access_token"])
}

// TestElectionFlow walks the whole lifecycle: signups, admin decisions,
// OTP-gated voting, and result publication.
func TestElectionFlow(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t, srv)

	// Voter and candidate apply.
	resp, _ := postJSON(t, srv.URL+"/api/signup", "", domain.SubmitSignupRequest{
		Kind: "voter", Name: "Asha Rao", IdentityNumber: "ID-1001",
		Email: "asha@example.com", DateOfBirth: "1990-04-12",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("voter signup status = %d", resp.StatusCode)
	}
	resp, _ = postJSON(t, srv.URL+"/api/signup", "", domain.SubmitSignupRequest{
		Kind: "candidate", Name: "Ravi Menon", Party: "Unity Party",
		Mobile: "+15550001111", Password: "hunter2secret", Ideology: "roads",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("candidate signup status = %d", resp.StatusCode)
	}

	// Admin lists and approves both.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list requests failed: %v", err)
	}
	var pending []domain.SignupRequest
	if err := json.NewDecoder(listResp.Body).Decode(&pending); err != nil {
		t.Fatalf("decode pending failed: %v", err)
	}
	listResp.Body.Close()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending requests, got %d", len(pending))
	}
	for _, p := range pending {
		resp, _ = postJSON(t, srv.URL+"/api/admin/decide", token, domain.DecideRequest{
			RequestID: p.ID, Action: "approve",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("decide status = %d", resp.StatusCode)
		}
	}

	// Voter logs in, reads the debug OTP, verifies it, votes.
	resp, body := postJSON(t, srv.URL+"/api/login", "", domain.LoginRequest{
		Role: "voter", Identifier: "ID-1001",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("voter login status = %d", resp.StatusCode)
	}
	code := rawString(t, body["debug_otp"])
	if code == "" {
		t.Fatal("expected debug otp in login response")
	}

	resp, _ = postJSON(t, srv.URL+"/api/verify-otp", "", domain.VerifyOTPRequest{
		IdentityNumber: "ID-1001", OTP: code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-otp status = %d", resp.StatusCode)
	}

	// The candidate id comes from the public listing.
	resp, body = getJSON(t, srv.URL+"/api/candidates", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("candidates status = %d", resp.StatusCode)
	}
	var candidates []domain.PublicCandidate
	if err := json.Unmarshal(body["candidates"], &candidates); err != nil {
		t.Fatalf("unmarshal candidates failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].VoteCount != nil {
		t.Error("vote count visible before publication")
	}
	candidateID := candidates[0].ID

	resp, _ = postJSON(t, srv.URL+"/api/vote", "", domain.CastVoteRequest{
		IdentityNumber: "ID-1001", CandidateID: candidateID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("vote status = %d", resp.StatusCode)
	}

	// Second vote from the same voter is refused.
	resp, _ = postJSON(t, srv.URL+"/api/vote", "", domain.CastVoteRequest{
		IdentityNumber: "ID-1001", CandidateID: candidateID,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second vote status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	// Publish, then the count is visible.
	resp, _ = postJSON(t, srv.URL+"/api/admin/publish", token, domain.PublishResultsRequest{Publish: true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("publish status = %d", resp.StatusCode)
	}
	resp, body = getJSON(t, srv.URL+"/api/candidates", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("candidates status = %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body["candidates"], &candidates); err != nil {
		t.Fatalf("unmarshal candidates failed: %v", err)
	}
	if candidates[0].VoteCount == nil || *candidates[0].VoteCount != 1 {
		t.Fatalf("expected published vote count 1, got %v", candidates[0].VoteCount)
	}
}

func TestCandidateProfileUpdate(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t, srv)

	resp, _ := postJSON(t, srv.URL+"/api/signup", "", domain.SubmitSignupRequest{
		Kind: "candidate", Name: "Ravi Menon", Party: "Unity Party",
		Mobile: "+15550001111", Password: "hunter2secret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list requests failed: %v", err)
	}
	var pending []domain.SignupRequest
	if err := json.NewDecoder(listResp.Body).Decode(&pending); err != nil {
		t.Fatalf("decode pending failed: %v", err)
	}
	listResp.Body.Close()
	resp, _ = postJSON(t, srv.URL+"/api/admin/decide", token, domain.DecideRequest{
		RequestID: pending[0].ID, Action: "approve",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decide status = %d", resp.StatusCode)
	}

	resp, body := postJSON(t, srv.URL+"/api/login", "", domain.LoginRequest{
		Role: "candidate", Identifier: "+15550001111", Credential: "hunter2secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("candidate login status = %d", resp.StatusCode)
	}
	candToken := rawString(t, body["access_token"])
	candID := rawString(t, body["candidate_id"])

	// No token: rejected.
	resp, _ = postJSON(t, srv.URL+"/api/candidate/profile", "", map[string]string{"ideology": "schools"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated profile update status = %d", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/api/candidate/profile", candToken, map[string]string{"ideology": "schools"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile update status = %d", resp.StatusCode)
	}

	resp, body = getJSON(t, fmt.Sprintf("%s/api/candidates/%s", srv.URL, candID), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get candidate status = %d", resp.StatusCode)
	}
	var candidate domain.PublicCandidate
	if err := json.Unmarshal(body["candidate"], &candidate); err != nil {
		t.Fatalf("unmarshal candidate failed: %v", err)
	}
	if candidate.Ideology != "schools" {
		t.Errorf("ideology = %q, want schools", candidate.Ideology)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := getJSON(t, srv.URL+"/api/admin/voters", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestVoterLoginUnknownIdentityStatus(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/api/login", "", domain.LoginRequest{
		Role: "voter", Identifier: "ID-NOBODY",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
