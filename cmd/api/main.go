package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-planner/backend/config"
	"github.com/pageza/alchemorsel-planner/backend/internal/api"
	"github.com/pageza/alchemorsel-planner/backend/internal/database"
	"github.com/pageza/alchemorsel-planner/backend/internal/logging"
	"github.com/pageza/alchemorsel-planner/backend/internal/metrics"
	"github.com/pageza/alchemorsel-planner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
	"github.com/pageza/alchemorsel-planner/backend/internal/router"
	"github.com/pageza/alchemorsel-planner/backend/internal/server"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
)

var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "alchemorsel-planner",
		Environment: string(cfg.Environment),
		Version:     version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, "migrations", logger); err != nil {
		return err
	}

	collector := metrics.New()
	engine := planner.NewEngine(nil, cfg.PlannerOptions(), logger.Named("planner"))
	dishService := service.NewDishService(db)
	preferenceService := service.NewPreferenceService(db)
	feedbackService := service.NewFeedbackService(db)
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	opts := service.PlanServiceOptions{
		CacheTTL:    cfg.Cache.TTL,
		Preferences: preferenceService,
		Metrics:     collector,
		Logger:      logger.Named("plans"),
	}

	var redisClient *redis.Client
	var planLimiter middleware.Limiter = middleware.NewLocalRateLimiter(cfg.RateLimit.LocalRPS, cfg.RateLimit.LocalBurst)
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			// Plans still work without Redis; only caching and the shared
			// limiter are lost.
			logger.Warn("Redis unavailable, using in-process rate limiting and no plan cache", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			opts.Cache = service.NewRedisPlanCache(redisClient)
			planLimiter = middleware.NewPlanCreationRateLimiter(redisClient, cfg.RateLimit.Window, cfg.RateLimit.Limit)
		}
	}

	if cfg.Archive.Enabled {
		s3cfg, err := config.NewS3Config(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		opts.Archive = service.NewS3Archive(s3cfg, cfg.Archive)
		logger.Info("Plan archive enabled", zap.String("bucket", cfg.Archive.Bucket))
	}

	planService := service.NewPlanService(engine, dishService, service.NewPlanStore(db), opts)
	defer planService.Wait()

	handler := router.SetupRouter(router.Dependencies{
		PlanHandler:       api.NewPlanHandler(planService, cfg.Planner.MaxDays, logger),
		DishHandler:       api.NewDishHandler(dishService, logger),
		HealthHandler:     api.NewHealthHandler(db, redisClient, version),
		PreferenceHandler: api.NewPreferenceHandler(preferenceService, logger),
		FeedbackHandler:   api.NewFeedbackHandler(feedbackService, dishService, logger),
		Tokens:            tokens,
		PlanLimiter:       planLimiter,
		Metrics:           collector,
		Logger:            logger,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
	})

	return server.New(cfg.Server, handler, logger).Run(ctx)
}
