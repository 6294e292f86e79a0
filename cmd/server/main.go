package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artemk/movebid/internal/cache"
	"github.com/artemk/movebid/internal/config"
	"github.com/artemk/movebid/internal/database"
	"github.com/artemk/movebid/internal/handler"
	"github.com/artemk/movebid/internal/identity"
	"github.com/artemk/movebid/internal/middleware"
	"github.com/artemk/movebid/internal/repository"
	"github.com/artemk/movebid/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize New Relic (optional)
	var nrApp *newrelic.Application
	if cfg.NewRelicEnabled && cfg.NewRelicLicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelicAppName),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
			newrelic.ConfigInfoLogger(os.Stdout),
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize New Relic: %v", err)
		} else if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		} else {
			log.Println("New Relic connected")
		}
	}

	// Initialize PostgreSQL
	db, err := database.NewPostgres(
		cfg.DatabaseURL,
		cfg.DBMaxConnections,
		cfg.DBMaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// Initialize Redis
	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	log.Println("Connected to Redis")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	contractRepo := repository.NewContractRepository(db.DB)
	offerRepo := repository.NewOfferRepository(db.DB)

	// Initialize identity provider
	signer := identity.NewSigner(cfg.JWTSecret, 24*time.Hour)
	principalCache := cache.NewPrincipalCache(redis.Client)
	identityProvider := identity.NewStoreProvider(signer, userRepo, principalCache)

	// Initialize services
	offerService := service.NewOfferService(offerRepo, contractRepo, userRepo)
	contractService := service.NewContractService(contractRepo, offerRepo, userRepo)
	matchStore := repository.NewMatchStore(db.DB)
	matchingService := service.NewMatchingService(matchStore, offerRepo, userRepo, offerService)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo)
	contractHandler := handler.NewContractHandler(contractService)
	offerHandler := handler.NewOfferHandler(offerService, matchingService)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-User-ID"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// New Relic middleware
	if nrApp != nil {
		r.Use(middleware.NewRelicMiddleware(nrApp))
	}

	// Rate limiter
	rateLimiter := middleware.NewRateLimiter(redis.Client, cfg.RateLimitPerMinute, time.Minute)
	r.Use(rateLimiter.Handler)

	// Idempotency middleware
	idempotencyMw := middleware.NewIdempotencyMiddleware(redis.Client)
	r.Use(idempotencyMw.Handler)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := db.Health(ctx); err != nil {
			http.Error(w, "database unhealthy", http.StatusServiceUnavailable)
			return
		}
		if err := redis.Health(ctx); err != nil {
			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","services":{"database":"up","redis":"up"}}`))
	})

	// API v1 routes
	authenticator := middleware.NewAuthenticator(identityProvider, cfg.AuthRequired)
	r.Route("/v1", func(r chi.Router) {
		r.Use(authenticator.Handler)
		userHandler.RegisterRoutes(r)
		contractHandler.RegisterRoutes(r)
		offerHandler.RegisterRoutes(r)
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Println("API endpoints:")
	log.Println("  POST   /v1/users                   - Create user")
	log.Println("  POST   /v1/contracts               - Post a contract")
	log.Println("  GET    /v1/contracts/{id}          - Get contract")
	log.Println("  POST   /v1/contracts/{id}/cancel   - Cancel contract")
	log.Println("  POST   /v1/offers                  - Bid on a contract")
	log.Println("  POST   /v1/offers/{id}/accept      - Accept an offer")
	log.Println("  POST   /v1/offers/{id}/reject      - Reject an offer")
	log.Println("  PUT    /v1/offers/{id}/status      - Update offer status")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
