package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/dealflow/internal/analytics"
	"github.com/hugh/dealflow/internal/database"
	"github.com/hugh/dealflow/internal/jobs"
	"github.com/hugh/dealflow/internal/store/sqlstore"
	"github.com/hugh/dealflow/pkg/config"
	"github.com/hugh/dealflow/pkg/queue"
	"github.com/hugh/dealflow/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting dealflow worker", "concurrency", cfg.Worker.Concurrency)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})

	store := sqlstore.New(db)
	aggregator := analytics.NewAggregator(store.Analytics, logger,
		analytics.WithCache(analytics.NewRedisCache(redisClient, "dealflow:"), cfg.Analytics.CacheTTL()))

	srv := queue.NewServer(&cfg.Redis, cfg.Worker.Concurrency)

	handler := jobs.NewHandler(aggregator, store.Accounts, logger)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	scheduler := queue.NewScheduler(&cfg.Redis)
	entryID, err := jobs.RegisterSweep(scheduler, cfg.Analytics.RefreshCron)
	if err != nil {
		logger.Error("failed to register analytics sweep", "error", err)
		os.Exit(1)
	}
	if next, err := util.NextCronTime(cfg.Analytics.RefreshCron, time.Now()); err == nil {
		logger.Info("analytics sweep scheduled", "entry_id", entryID, "cron", cfg.Analytics.RefreshCron, "next_run", next)
	}

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(mux); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	logger.Info("worker started, waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")

	scheduler.Shutdown()
	srv.Shutdown()

	redisClient.Close()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
