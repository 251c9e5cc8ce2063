// Command scheduler runs the asynq worker that sends open-house follow-up
// emails. It shares Postgres, Redis and the flyer bucket with the API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"openhouse_backend/internal/adapters/storage"
	"openhouse_backend/internal/email"
	"openhouse_backend/internal/events"
	leadrepo "openhouse_backend/internal/leads/repository"
	"openhouse_backend/internal/openhouses"
	"openhouse_backend/internal/scheduler"
	"openhouse_backend/platform/config"
	"openhouse_backend/platform/db"
	"openhouse_backend/platform/logger"
	"openhouse_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("scheduler exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.GetRedisURL() == "" {
		return fmt.Errorf("REDIS_URL is required for the scheduler")
	}
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if !cfg.GetEmailEnabled() {
		log.Warn("SMTP not configured; follow-up emails will be logged and dropped")
	}
	sender := email.NewSender(cfg)

	flyers, err := flyerStore(cfg)
	if err != nil {
		return err
	}

	// The worker only needs the open-house service for lookups and flyer
	// links; nothing subscribes to its events here.
	openHouses := openhouses.NewModule(pool, flyers, events.NewInMemoryBus(log), validator.New(), cfg, log)
	followUps := scheduler.NewFollowUpHandler(leadrepo.New(pool), openHouses.Service(), sender, log)

	worker, err := scheduler.NewWorker(cfg, followUps, log)
	if err != nil {
		return fmt.Errorf("init worker: %w", err)
	}
	worker.Run(ctx)
	return nil
}

// flyerStore returns a nil Store, not a typed nil, when MinIO is disabled.
// Follow-ups then go out without a flyer link.
func flyerStore(cfg *config.Config) (storage.Store, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, nil
	}
	store, err := storage.NewMinIOStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("init flyer storage: %w", err)
	}
	return store, nil
}
