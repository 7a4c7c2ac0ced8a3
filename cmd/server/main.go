package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/dealflow/internal/activities"
	"github.com/hugh/dealflow/internal/analytics"
	"github.com/hugh/dealflow/internal/api"
	"github.com/hugh/dealflow/internal/auth"
	"github.com/hugh/dealflow/internal/contacts"
	"github.com/hugh/dealflow/internal/database"
	"github.com/hugh/dealflow/internal/deals"
	"github.com/hugh/dealflow/internal/jobs"
	"github.com/hugh/dealflow/internal/organizations"
	"github.com/hugh/dealflow/internal/store/sqlstore"
	"github.com/hugh/dealflow/internal/tasks"
	"github.com/hugh/dealflow/internal/tenancy"
	"github.com/hugh/dealflow/pkg/config"
	"github.com/hugh/dealflow/pkg/crypto"
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

	logger.Info("starting dealflow server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Redis is optional: without it analytics are computed on every request
	// and no refresh jobs are queued.
	var redisClient redis.UniversalClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient.Close()
		redisClient = nil
	}

	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
	}

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		logger.Error("failed to create encryptor", "error", err)
		os.Exit(1)
	}
	if cfg.Encryption.Key == "" {
		logger.Warn("ENCRYPTION_KEY not set, using generated key - contact details will be unreadable after restart")
	}

	store := sqlstore.New(db)
	tx := store.Transactor()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(store.Accounts, tx, jwtService, logger)

	contactService := contacts.NewService(store.Contacts, encryptor, tx, logger)
	activityService := activities.NewService(store.Activities, store.Deals, logger)

	var dealOpts []deals.Option
	var analyticsOpts []analytics.Option
	if redisClient != nil {
		dealOpts = append(dealOpts, deals.WithNotifier(jobs.NewEnqueuer(asynqClient, logger)))
		analyticsOpts = append(analyticsOpts,
			analytics.WithCache(analytics.NewRedisCache(redisClient, "dealflow:"), cfg.Analytics.CacheTTL()))
	}

	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		JWTService:     jwtService,
		AuthService:    authService,
		Organizations:  organizations.NewService(store.Accounts, tx, logger),
		Resolver:       tenancy.NewResolver(store.Accounts),
		Contacts:       contactService,
		Activities:     activityService,
		Deals:          deals.NewService(store.Deals, contactService, activityService, tx, logger, dealOpts...),
		Tasks:          tasks.NewService(store.Tasks, store.Deals, activityService, tx, logger),
		Analytics:      analytics.NewAggregator(store.Analytics, logger, analyticsOpts...),
		AllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitReqs:  cfg.RateLimit.Requests,
		RateLimitSecs:  cfg.RateLimit.WindowSeconds,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
