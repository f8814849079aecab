package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agora/internal/auth"
	"agora/internal/config"
	"agora/internal/handler"
	"agora/internal/middleware"
	"agora/internal/observability"
	"agora/internal/repository"
	authService "agora/internal/service/auth"
	graphService "agora/internal/service/ideagraph"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// devUserID acts for every request in dev when no JWKS endpoint is configured
const devUserID = "dev-user"

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, logCloser, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreDriver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	types := config.DefaultTypeRegistry()
	if cfg.TypologyFile != "" {
		if types, err = config.LoadTypeRegistry(cfg.TypologyFile); err != nil {
			log.Fatalf("Failed to load typology: %v", err)
		}
		logger.Info("typology loaded", "file", cfg.TypologyFile)
	}

	repos, storeCloser, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer storeCloser.Close()

	services, err := graphService.SetupServices(repos, types, nil, logger)
	if err != nil {
		log.Fatalf("Failed to setup services: %v", err)
	}

	metrics := observability.NewMetrics()
	if err := services.Hooks.Register("metrics", metrics.ChangeHook()); err != nil {
		log.Fatalf("Failed to register metrics hook: %v", err)
	}
	if cfg.Debug {
		if err := services.Hooks.Register("log", graphService.LogHook(logger)); err != nil {
			log.Fatalf("Failed to register log hook: %v", err)
		}
	}

	authorizer := authService.NewDiscussionAuthorizer(repos)

	handlers := handler.Handlers{
		Discussions: handler.NewDiscussionHandler(services.Discussions, services.Graph, services.Analysis, authorizer, logger),
		Ideas:       handler.NewIdeaHandler(services.Ideas, services.Graph, services.Ancestry, authorizer, logger),
		Links:       handler.NewLinkHandler(services.Links, authorizer, logger),
		Syntheses:   handler.NewSynthesisHandler(services.Syntheses, authorizer, logger),
	}
	mux := handler.NewRouter(handlers, metrics.Instrument)
	mux.Handle("GET /metrics", metrics.Handler())

	logger.Info("services initialized")

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	var h http.Handler = mux
	switch {
	case cfg.JWKSURL != "":
		verifier, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
		h = middleware.AuthMiddleware(verifier, logger)(h)
	case cfg.Environment == "dev":
		logger.Warn("DEV MODE: no JWKS_URL configured, every request acts as a fixed user", "user_id", devUserID)
		h = middleware.StaticUserMiddleware(devUserID)(h)
	default:
		log.Fatalf("JWKS_URL is required outside dev")
	}
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
