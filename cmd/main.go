package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tiertok/tiertok-backend/internal/clients/aiserver"
	redisclient "github.com/tiertok/tiertok-backend/internal/clients/redis"
	"github.com/tiertok/tiertok-backend/internal/db"
	"github.com/tiertok/tiertok-backend/internal/handlers"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/observability"
	"github.com/tiertok/tiertok-backend/internal/repos"
	"github.com/tiertok/tiertok-backend/internal/server"
	"github.com/tiertok/tiertok-backend/internal/services"
	"github.com/tiertok/tiertok-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "tiertok-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	poolID := int64(utils.GetEnvAsInt("PROFIT_POOL_ID", 1, log))
	poolFund := utils.GetEnvAsFloat("PROFIT_POOL_DEFAULT_FUND", 0, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.SeedPool(poolID, poolFund); err != nil {
		log.Warn("Profit pool seed failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	videoRepo := repos.NewVideoRepo(thePG, log)
	categoryRepo := repos.NewCategoryPoolRepo(thePG, log)
	poolRepo := repos.NewProfitPoolRepo(thePG, log)
	runRepo := repos.NewDistributionRunRepo(thePG, log)
	interactionRepo := repos.NewInteractionEventRepo(thePG, log)

	// Clients
	aiClient, err := aiserver.NewClient(log)
	if err != nil {
		log.Error("Could not init AI server client", "error", err)
		os.Exit(1)
	}
	var runLock services.RunLock
	runLock, err = redisclient.NewRunLock(log)
	if err != nil {
		log.Warn("Redis run lock unavailable, using in-process lock", "error", err)
		runLock = services.NewLocalRunLock()
	}

	// Services
	log.Info("Setting up Services from main...")
	scorer := services.NewEngagementScorer(services.LoadScoringConfig(log))
	videoService := services.NewVideoService(thePG, log, videoRepo, categoryRepo, aiClient)
	analyticsService := services.NewVideoAnalyticsService(thePG, log, videoRepo, categoryRepo)
	interactionService := services.NewInteractionService(thePG, log, interactionRepo, videoRepo)
	distributionService := services.NewDistributionService(
		thePG,
		log,
		videoRepo,
		categoryRepo,
		poolRepo,
		runRepo,
		videoService,
		aiClient,
		scorer,
		runLock,
	)
	distributionService.StartScheduler(ctx)
	interactionService.StartJanitor(ctx)

	// Handlers
	log.Info("Setting up handlers from main...")
	videoHandler := handlers.NewVideoHandler(log, videoService, analyticsService)
	poolHandler := handlers.NewPoolHandler(log, poolRepo, distributionService, poolID)
	categoryHandler := handlers.NewCategoryHandler(log, categoryRepo, videoRepo)
	interactionHandler := handlers.NewInteractionHandler(log, interactionService)
	userHandler := handlers.NewUserHandler(log, userRepo)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		VideoHandler:       videoHandler,
		PoolHandler:        poolHandler,
		CategoryHandler:    categoryHandler,
		InteractionHandler: interactionHandler,
		UserHandler:        userHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
