package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openhouse_backend/internal/adapters/storage"
	"openhouse_backend/internal/events"
	apphttp "openhouse_backend/internal/http"
	"openhouse_backend/internal/http/router"
	"openhouse_backend/internal/leads"
	leadadapters "openhouse_backend/internal/leads/adapters"
	"openhouse_backend/internal/notification"
	"openhouse_backend/internal/notification/sse"
	"openhouse_backend/internal/openhouses"
	openhouserepo "openhouse_backend/internal/openhouses/repository"
	"openhouse_backend/internal/scheduler"
	"openhouse_backend/migrations"
	"openhouse_backend/platform/config"
	"openhouse_backend/platform/db"
	"openhouse_backend/platform/logger"
	"openhouse_backend/platform/redisclient"
	"openhouse_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.MigrationsEnabled {
		if err := db.RunMigrations(ctx, pool, migrations.FS); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	rdb, closeRedis := initRedis(ctx, cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	followUps, closeScheduler := initFollowUpScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	flyers := initStorage(ctx, cfg, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	stream := sse.New(log)
	defer stream.Close()

	notificationModule := notification.New(followUps, cfg.GetFollowUpDelay(), stream, log)
	notificationModule.RegisterHandlers(eventBus)

	openHousesModule := openhouses.NewModule(pool, flyers, eventBus, val, cfg, log)

	// Anti-Corruption Layer: leads reads open houses through its own port
	eventReader := leadadapters.NewOpenHouseReaderAdapter(openhouserepo.New(pool))
	leadsModule, err := leads.NewModule(pool, eventReader, rdb, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  pool,
		Context: ctx,
		Modules: []apphttp.Module{
			openHousesModule,
			leadsModule,
			notificationModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Open SSE streams never finish on their own.
		stream.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRedis connects to Redis when configured. The returned client is nil
// when REDIS_URL is unset; a Redis visit tracker then fails config validation
// before we get here.
func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) (redis.Cmdable, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; follow-up emails disabled")
		return nil, nil
	}

	var client *redis.Client
	if err := withRetry(ctx, log, "redis connection", 5, time.Second, func() error {
		c, err := redisclient.New(ctx, cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
		if err != nil {
			return err
		}
		client = c
		return nil
	}); err != nil {
		if cfg.GetVisitTracker() == config.VisitTrackerRedis {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		log.Warn("redis unavailable; continuing without it", "error", err)
		return nil, nil
	}

	return client, func() { _ = client.Close() }
}

func initFollowUpScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.FollowUpScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize follow-up scheduler client", "error", err)
		return nil, nil
	}

	return client, func() { _ = client.Close() }
}

// initStorage returns a nil Store, not a typed nil, when MinIO is disabled.
func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.Store {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; flyers disabled")
		return nil
	}

	store, err := storage.NewMinIOStore(cfg)
	if err != nil {
		log.Error("failed to initialize flyer storage", "error", err)
		panic("failed to initialize flyer storage: " + err.Error())
	}

	if err := withRetry(ctx, log, "ensure flyers bucket", 5, 2*time.Second, func() error {
		return openhouses.EnsureStorage(ctx, store)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", store.Bucket())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}

	log.Info("flyer storage initialized", "bucket", store.Bucket())
	return store
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
