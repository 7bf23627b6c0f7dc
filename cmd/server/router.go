package main

import (
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/handlers"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "github.com/Vincent-alt-spec/lego-builder-generator/docs" // Swagger docs
)

type routerDeps struct {
	logger       *zap.Logger
	service      handlers.BuildService
	health       map[string]handlers.Pinger
	apiLimiter   middleware.Limiter
	buildLimiter middleware.Limiter
	breaker      *middleware.CircuitBreaker
	release      bool
}

func newRouter(d routerDeps) (*gin.Engine, error) {
	if d.release {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := handlers.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("legobuilder"))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(d.logger, "/health", "/metrics"))
	router.Use(middleware.CORS())
	router.SetHTMLTemplate(tmpl)

	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthHandler := handlers.NewHealthHandler(d.health)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/deep", healthHandler.DeepHealth)

	// Browser form
	formHandler := handlers.NewFormHandler(d.service, d.logger)
	router.GET("/", formHandler.Index)
	router.POST("/build",
		middleware.RateLimitMiddleware(d.buildLimiter),
		middleware.CircuitBreakerMiddleware(d.breaker),
		formHandler.Submit,
	)

	buildHandler := handlers.NewBuildHandler(d.service, d.logger)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware(d.apiLimiter))
	{
		v1.GET("/sets/:set/inventory", buildHandler.GetInventory)

		// Generation routes: stricter rate limit + circuit breaker
		builds := v1.Group("/builds")
		builds.Use(middleware.RateLimitMiddleware(d.buildLimiter))
		builds.Use(middleware.CircuitBreakerMiddleware(d.breaker))
		{
			builds.POST("", buildHandler.CreateBuild)
		}
	}

	return router, nil
}
