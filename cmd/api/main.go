package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/openballot/evoting/internal/http/handlers"
	ratelimit "github.com/openballot/evoting/internal/http/middleware"
	"github.com/openballot/evoting/internal/mailer"
	"github.com/openballot/evoting/internal/otp"
	"github.com/openballot/evoting/internal/repository"
	"github.com/openballot/evoting/internal/service"
	"github.com/openballot/evoting/internal/store"
	"github.com/openballot/evoting/pkg/config"
	"github.com/openballot/evoting/pkg/database"
	"github.com/openballot/evoting/pkg/events"
	"github.com/openballot/evoting/pkg/logger"
	mw "github.com/openballot/evoting/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	// Event bus: NATS when configured, in-process fan-out otherwise.
	var eventBus events.EventBus
	if cfg.NATS.Enabled {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		eventBus = natsBus
	} else {
		eventBus = events.NewMemoryEventBus()
	}
	defer eventBus.Close()

	// Collection store
	var backing store.Store
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := database.Connect(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		pgStore, err := store.NewPostgresStore(ctx, pool)
		if err != nil {
			logger.Error("Failed to initialize postgres store", "error", err)
			os.Exit(1)
		}
		backing = pgStore
	default:
		fileStore, err := store.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			logger.Error("Failed to initialize file store", "error", err)
			os.Exit(1)
		}
		backing = fileStore
	}
	dataStore := store.NewNotifyingStore(backing, eventBus)
	defer dataStore.Close()

	// Optional Redis: OTP challenges, rate limiting, idempotency.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("Invalid Redis URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	var challenges otp.ChallengeStore
	if redisClient != nil {
		challenges = otp.NewRedisStore(redisClient, cfg.Auth.OTPTTL)
	} else {
		challenges = otp.NewMemoryStore(cfg.Auth.OTPTTL)
	}

	mailService := buildMailer(cfg)

	// Repositories
	requestRepo := repository.NewRequestRepository(dataStore)
	voterRepo := repository.NewVoterRepository(dataStore)
	candidateRepo := repository.NewCandidateRepository(dataStore)
	adminRepo := repository.NewAdminRepository(dataStore)
	configRepo := repository.NewConfigRepository(dataStore)

	if err := service.SeedRootAdmin(ctx, adminRepo, cfg.Auth.RootAdminID, cfg.Auth.RootAdminPass); err != nil {
		logger.Error("Failed to seed root admin", "error", err)
		os.Exit(1)
	}

	// Services
	signupService := service.NewSignupService(requestRepo, voterRepo, candidateRepo, mailService, eventBus)
	authService := service.NewAuthService(adminRepo, candidateRepo, voterRepo, challenges, mailService, cfg)
	voteService := service.NewVoteService(voterRepo, candidateRepo, eventBus)
	resultsService := service.NewResultsService(candidateRepo, configRepo)
	adminService := service.NewAdminService(adminRepo, voterRepo, candidateRepo, configRepo, eventBus)
	candidateService := service.NewCandidateService(candidateRepo)

	h := handlers.New(signupService, authService, voteService, resultsService, adminService, candidateService, eventBus, cfg)

	// Router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var throttle func(http.Handler) http.Handler
	var idempotent func(http.Handler) http.Handler
	if redisClient != nil {
		limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.RateLimitConfig{
			Requests: 10,
			Window:   time.Minute,
			KeyFunc:  ratelimit.ClientIPKeyFunc,
		})
		throttle = limiter.Middleware()
		idempotent = mw.IdempotencyMiddleware(mw.NewRedisIdempotencyStore(redisClient))
	} else {
		passthrough := func(next http.Handler) http.Handler { return next }
		throttle = passthrough
		idempotent = passthrough
	}

	r.Route("/api", func(r chi.Router) {
		// Public
		r.With(throttle, idempotent).Post("/signup", h.Signup)
		r.With(throttle).Post("/login", h.Login)
		r.Post("/verify-otp", h.VerifyOTP)
		r.With(idempotent).Post("/vote", h.CastVote)
		r.Get("/candidates", h.ListCandidates)
		r.Get("/candidates/{id}", h.GetCandidate)
		r.Get("/config", h.GetConfig)
		r.Get("/live", h.Live)

		// Candidate self-service
		r.Route("/candidate", func(r chi.Router) {
			r.Use(h.RequireJWT("candidate"))
			r.Post("/profile", h.UpdateCandidateProfile)
		})

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireJWT("admin"))
			r.Get("/requests", h.ListRequests)
			r.Post("/decide", h.Decide)
			r.Get("/voters", h.ListVoters)
			r.Get("/candidates", h.ListAllCandidates)
			r.Get("/subadmins", h.ListSubAdmins)
			r.Post("/subadmins", h.CreateSubAdmin)
			r.Post("/publish", h.PublishResults)
			r.Post("/delete", h.DeleteEntity)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting voting API", "port", cfg.Server.Port, "store", cfg.Storage.Driver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.SMTPFromName, cfg.Email.SMTPFrom)
	}
	return mailer.NewSMTPMailer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPass,
		cfg.Email.SMTPUseTLS,
	)
}
