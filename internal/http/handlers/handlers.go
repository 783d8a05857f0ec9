package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openballot/evoting/internal/http/response"
	"github.com/openballot/evoting/internal/service"
	"github.com/openballot/evoting/pkg/auth"
	"github.com/openballot/evoting/pkg/config"
	"github.com/openballot/evoting/pkg/events"
	"github.com/openballot/evoting/pkg/logger"
)

type claimsKey struct{}

type Handlers struct {
	signupService    service.SignupService
	authService      service.AuthService
	voteService      service.VoteService
	resultsService   service.ResultsService
	adminService     service.AdminService
	candidateService service.CandidateService
	eventBus         events.EventBus
	config           *config.Config
}

func New(
	signupService service.SignupService,
	authService service.AuthService,
	voteService service.VoteService,
	resultsService service.ResultsService,
	adminService service.AdminService,
	candidateService service.CandidateService,
	eventBus events.EventBus,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		signupService:    signupService,
		authService:      authService,
		voteService:      voteService,
		resultsService:   resultsService,
		adminService:     adminService,
		candidateService: candidateService,
		eventBus:         eventBus,
		config:           cfg,
	}
}

// RequireJWT guards a route subtree. An empty requiredRole accepts any
// valid token; the admin role always passes.
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != "admin" {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), logger.ActorIDKey, claims.Sub)
			ctx = context.WithValue(ctx, logger.ActorRoleKey, claims.Role)
			ctx = context.WithValue(ctx, claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Helper functions
func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey{}).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return false
	}
	return true
}
