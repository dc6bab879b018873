// README: Entry point; loads config, wires the planner and optional infra, serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripplanner/internal/ai"
	"tripplanner/internal/config"
	httptransport "tripplanner/internal/http"
	"tripplanner/internal/http/handlers"
	"tripplanner/internal/http/middleware"
	"tripplanner/internal/infra"
	"tripplanner/internal/itinerary"
	"tripplanner/internal/maps"
	"tripplanner/internal/modules/aiusage"
)

const (
	serviceName = "tripplanner"
	version     = "1.0.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	gin.SetMode(ginMode(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, closeCompleter, err := ai.NewCompleter(ctx, providerConfig(cfg))
	if err != nil {
		return fmt.Errorf("ai provider: %w", err)
	}
	defer func() { _ = closeCompleter() }()
	log.Info("ai provider ready", zap.String("model", completer.Name()))

	svcOpts := []itinerary.Option{}
	if cfg.Maps.APIKey != "" {
		opts, err := mapsOptions(cfg, log)
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, opts...)
	}

	planner := itinerary.NewService(completer, log, itinerary.Options{
		ShortTripMaxDays: cfg.Planner.ShortTripMaxDays,
		ChunkSize:        cfg.Planner.ChunkSize,
		Concurrency:      cfg.Planner.Concurrency,
		MaxTripDays:      cfg.Planner.MaxTripDays,
		Retry: itinerary.RetryPolicy{
			MaxRetries: cfg.Planner.MaxRetries,
			Base:       cfg.Planner.RetryBase,
		},
	}, svcOpts...)

	deps := httptransport.RouterDeps{
		Planner:        planner,
		Logger:         log,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		RequestTimeout: cfg.Planner.RequestTimeout,
		Health:         handlers.Health{Service: serviceName, Version: version, Model: completer.Name()},
		Limiter:        middleware.NewLocalLimiter(cfg.RateLimit.PerMinute),
	}

	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := infra.ApplyMigrations(ctx, pool, migrationsDir()); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		deps.Quota = aiusage.NewService(aiusage.NewStore(pool, cfg.Quota.MonthlyTokens), log)
		log.Info("quota enabled", zap.Int("monthly_tokens", cfg.Quota.MonthlyTokens))
	}

	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, using in-process rate limits", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			deps.Limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimit.PerMinute)
		}
	}

	if cfg.Firebase.ProjectID != "" {
		verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return fmt.Errorf("firebase init: %w", err)
		}
		deps.Verifier = verifier
		log.Info("firebase auth enabled", zap.String("project", cfg.Firebase.ProjectID))
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func ginMode(cfg config.Config) string {
	if cfg.IsProduction() {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}

func providerConfig(cfg config.Config) ai.ProviderConfig {
	return ai.ProviderConfig{
		Provider: cfg.AI.Provider,
		OpenAI: ai.OpenAIConfig{
			APIKey:  cfg.AI.OpenAIKey,
			BaseURL: cfg.AI.OpenAIBaseURL,
			Model:   cfg.AI.OpenAIModel,
			Timeout: cfg.AI.Timeout,
		},
		Gemini: ai.GeminiConfig{
			APIKey:   cfg.AI.GeminiKey,
			Model:    cfg.AI.GeminiModel,
			JSONMode: cfg.AI.GeminiJSON,
		},
	}
}

func mapsOptions(cfg config.Config, log *zap.Logger) ([]itinerary.Option, error) {
	opts := maps.Options{
		Language:  cfg.Maps.Language,
		Region:    cfg.Maps.Region,
		MinRating: float32(cfg.Maps.MinRating),
	}
	places, err := maps.NewPlacesService(cfg.Maps.APIKey, opts)
	if err != nil {
		return nil, err
	}

	var travel itinerary.TravelEstimator
	if cfg.Maps.Routes {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.TravelMode, opts)
		if err != nil {
			return nil, err
		}
		travel = routes
	}
	log.Info("maps enrichment enabled", zap.Bool("routes", cfg.Maps.Routes))

	return []itinerary.Option{
		itinerary.WithPlaceLookup(places),
		itinerary.WithEnricher(itinerary.NewEnricher(places, travel, cfg.Planner.Concurrency, log)),
	}, nil
}

func migrationsDir() string {
	if dir := os.Getenv("TRIP_MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	if root, err := infra.RepoRoot(); err == nil {
		return filepath.Join(root, "migrations")
	}
	return "migrations"
}
