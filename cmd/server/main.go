package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/reviewpulse/internal/analytics"
	"github.com/pscheid92/reviewpulse/internal/app"
	"github.com/pscheid92/reviewpulse/internal/classifier"
	"github.com/pscheid92/reviewpulse/internal/config"
	"github.com/pscheid92/reviewpulse/internal/coordination"
	"github.com/pscheid92/reviewpulse/internal/database"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/logging"
	"github.com/pscheid92/reviewpulse/internal/metrics"
	"github.com/pscheid92/reviewpulse/internal/redis"
	"github.com/pscheid92/reviewpulse/internal/scraper"
	"github.com/pscheid92/reviewpulse/internal/server"
	"github.com/pscheid92/reviewpulse/internal/store"
	"github.com/pscheid92/reviewpulse/internal/version"
	"github.com/pscheid92/reviewpulse/internal/websocket"
	goredis "github.com/redis/go-redis/v9"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupStore selects the PostgreSQL review store when DATABASE_URL is set and
// falls back to the in-memory store otherwise. The returned pool is nil in the
// in-memory case.
func setupStore(cfg *config.Config) (domain.ReviewStore, *pgxpool.Pool) {
	if cfg.DatabaseURL == "" {
		slog.Info("No DATABASE_URL configured, using in-memory review store")
		return store.NewMemoryStore(cfg.StoreCapacity), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return database.NewReviewRepo(pool, cfg.StoreCapacity), pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupClassifier(cfg *config.Config) domain.Classifier {
	if cfg.ClassifierURL != "" {
		slog.Info("Using external classifier service", "url", cfg.ClassifierURL)
		return classifier.NewHTTPClassifier(cfg.ClassifierURL)
	}
	slog.Info("No CLASSIFIER_URL configured, using built-in keyword classifier")
	return classifier.NewKeywordClassifier(cfg.EmotionLabels)
}

func runGracefulShutdown(srv *server.Server, hub *websocket.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Stop()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version)
	metrics.BuildInfo.WithLabelValues(version.Version, version.Commit, runtime.Version()).Set(1)

	reviewStore, pool := setupStore(cfg)
	if pool != nil {
		defer pool.Close()
	}

	var (
		redisClient *goredis.Client
		cache       domain.AnalyticsCache
	)
	if cfg.RedisURL != "" {
		redisClient = setupRedis(context.Background(), cfg)
		defer func() { _ = redisClient.Close() }()
		cache = redis.NewAnalyticsCache(redisClient, cfg.AnalyticsCacheTTL)
	}

	gateway := classifier.NewGateway(setupClassifier(cfg), clock)
	harvester := scraper.NewHTTPHarvester(cfg.MaxReviewsPerHarvest)
	hub := websocket.NewHub()

	opts := analytics.Options{
		WindowDays: cfg.TrendWindowDays,
		Location:   cfg.Location,
		DenseTrend: cfg.DenseTrend,
	}
	appSvc := app.NewService(reviewStore, gateway, harvester, cache, hub, clock, opts)

	// With Redis available, peer instances learn about appends via pub/sub so
	// their websocket clients stay current too.
	if redisClient != nil {
		instanceID := uuid.New()
		appSvc.SetRefreshNotifier(coordination.NewNotifier(redisClient, instanceID))

		listener := coordination.NewRefreshListener(redisClient, instanceID, appSvc.OnPeerRefresh)
		listenerCtx, stopListener := context.WithCancel(context.Background())
		defer stopListener()
		go listener.Start(listenerCtx)
	}

	srv := server.NewServer(cfg, appSvc, hub, pool, redisClient)

	done := runGracefulShutdown(srv, hub)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
