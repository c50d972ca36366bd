package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopify-oauth-app/internal/application"
	"shopify-oauth-app/internal/config"
	apiinfra "shopify-oauth-app/internal/infrastructure/api"
	"shopify-oauth-app/internal/infrastructure/metrics"
	"shopify-oauth-app/internal/infrastructure/repository"
	shopifyinfra "shopify-oauth-app/internal/infrastructure/shopify"
	"shopify-oauth-app/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, foundDotenv, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	if !foundDotenv {
		logger.Warn().Msg(".env file not found, using process environment")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("level", cfg.LogLevel).Msg("Unknown LOG_LEVEL, keeping default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionRepo, closeStore, err := newSessionRepository(ctx, cfg.Session, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Session.Backend).Msg("Failed to initialize session store")
	}
	defer closeStore()

	verifier, err := shopifyinfra.NewSignatureVerifier(cfg.SignatureScheme, cfg.SecretKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize signature verifier")
	}

	client := shopifyinfra.NewClient(
		cfg.APIKey,
		cfg.SecretKey,
		cfg.Scope,
		cfg.RedirectURI,
		shopifyinfra.WithTimeout(cfg.HTTPTimeout),
		shopifyinfra.WithLogger(logger),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	oauthService := application.NewOAuthService(client, verifier, metrics.New(reg), logger, cfg.FlowVariant)

	renderer, err := apiinfra.NewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load templates")
	}

	router := apiinfra.NewRouter(apiinfra.Dependencies{
		Service:        oauthService,
		Sessions:       apiinfra.NewSessionManager(sessionRepo, cfg.Session.CookieName, cfg.Session.CookieSecure, cfg.Session.TTL, logger),
		Renderer:       renderer,
		Gatherer:       reg,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("flow", cfg.FlowVariant).
			Str("signature", cfg.SignatureScheme).
			Str("sessions", cfg.Session.Backend).
			Msg("Starting OAuth server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// newSessionRepository opens the configured session backend. The returned
// func releases its connection.
func newSessionRepository(ctx context.Context, cfg config.SessionConfig, logger zerolog.Logger) (ports.SessionRepository, func(), error) {
	switch cfg.Backend {
	case config.BackendRedis:
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("Using Redis session store")
		return repository.NewRedisSessionRepository(rdb, repository.DefaultRedisKeyPrefix), func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close Redis client")
			}
		}, nil

	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
			}
		}
		repo, err := repository.NewMongoSessionRepository(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			disconnect()
			return nil, nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("Using MongoDB session store")
		return repo, disconnect, nil

	default:
		repo := repository.NewMemorySessionRepository()
		repo.StartCleanup(ctx, repository.DefaultCleanupInterval)
		logger.Info().Msg("Using in-memory session store")
		return repo, func() {}, nil
	}
}
