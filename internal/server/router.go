package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tiertok/tiertok-backend/internal/handlers"
)

type RouterConfig struct {
	VideoHandler       *handlers.VideoHandler
	PoolHandler        *handlers.PoolHandler
	CategoryHandler    *handlers.CategoryHandler
	InteractionHandler *handlers.InteractionHandler
	UserHandler        *handlers.UserHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("tiertok-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Videos
		api.POST("/videos", cfg.VideoHandler.CreateVideo)
		api.GET("/videos/:id", cfg.VideoHandler.GetVideo)
		api.GET("/videos/:id/analytics", cfg.VideoHandler.GetVideoAnalytics)
		api.POST("/videos/:id/categorize", cfg.VideoHandler.CategorizeVideo)
		// Interactions
		api.POST("/videos/:id/interactions", cfg.InteractionHandler.RecordInteraction)
		api.GET("/videos/:id/interactions", cfg.InteractionHandler.ListInteractions)
		// Pool
		api.GET("/pool", cfg.PoolHandler.GetPool)
		api.POST("/pool/distribute", cfg.PoolHandler.Distribute)
		api.GET("/pool/runs/latest", cfg.PoolHandler.GetLatestRun)
		api.GET("/pool/runs/:id", cfg.PoolHandler.GetRun)
		// Categories
		api.GET("/categories", cfg.CategoryHandler.ListCategories)
		api.GET("/categories/:id", cfg.CategoryHandler.GetCategory)
		// Users
		api.POST("/users", cfg.UserHandler.CreateUser)
		api.GET("/users/:id", cfg.UserHandler.GetUser)
	}

	return router
}
