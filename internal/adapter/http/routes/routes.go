package routes

import (
	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/helper"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type HandlersConfig struct {
	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.Logger) *gin.Engine {
	return SetupRouterWithConfig(handlers, metrics, logger, config.GetDefaultConfig())
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.Logger, cfg *config.AppConfig) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	router := gin.New()

	setupMiddleware(router, metrics, logger, cfg)

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	router.NoRoute(func(c *gin.Context) {
		helper.SendNotFoundError(c, "No route matches "+c.Request.URL.Path)
	})

	setupRoutes(router, handlers)

	return router
}

func setupMiddleware(router *gin.Engine, metrics *telemetry.AppMetrics, logger *config.Logger, cfg *config.AppConfig) {
	router.Use(middleware.NewHTTPSEnforcer(cfg.EnforceHTTPS, logger.Logger.Logger).HTTPSMiddleware())

	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(middleware.RequestID())
	router.Use(middleware.LoggingMiddleware(logger))

	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, logger.Logger.Logger, metrics)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}
}

func setupRoutes(router *gin.Engine, handlers HandlersConfig) {
	if handlers.HealthHandler != nil {
		router.GET("/health", handlers.HealthHandler.Health)
	}

	if handlers.TodoHandler != nil {
		router.GET("/todos", handlers.TodoHandler.GetAllTodos)
		router.POST("/todo", handlers.TodoHandler.CreateTodo)
		router.PUT("/todo/:id", handlers.TodoHandler.UpdateTodo)
		router.DELETE("/todo/:id", handlers.TodoHandler.DeleteTodo)
	}
}

// SetupRouterForTests wires the routes without telemetry, rate limiting or
// HTTPS enforcement.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	router.NoRoute(func(c *gin.Context) {
		helper.SendNotFoundError(c, "No route matches "+c.Request.URL.Path)
	})

	setupRoutes(router, handlers)

	return router
}
