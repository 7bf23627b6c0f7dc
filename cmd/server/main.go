package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/builder"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/config"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/generation"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/handlers"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/middleware"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/store"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/telemetry"
	"go.uber.org/zap"
)

// @title			LEGO Alternate Build Generator API
// @version		0.1.0
// @description	Turns the parts of a LEGO set into an AI-generated alternate build.
// @host			localhost:8080
// @BasePath		/api/v1
// @schemes		http
func main() {
	ctx := context.Background()

	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("lego builder starting",
		zap.String("version", handlers.Version),
		zap.String("environment", cfg.Environment),
	)

	shutdownTelemetry, err := telemetry.InitTracer(ctx, "legobuilder", cfg.OTLPEndpoint)
	if err != nil {
		// collector might be down; tracing is optional
		logger.Error("failed to initialize telemetry", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTelemetry(ctx); err != nil {
				logger.Error("failed to shutdown telemetry", zap.Error(err))
			}
		}()
	}

	catalogClient := catalog.NewClient(catalog.Options{
		BaseURL:  cfg.RebrickableBaseURL,
		APIKey:   cfg.RebrickableAPIKey,
		PageSize: cfg.CatalogPageSize,
		Timeout:  cfg.CatalogTimeout,
	}, logger.Named("catalog"))

	generator := generation.NewClient(generation.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.Model,
		Timeout: cfg.GenerationTimeout,
	}, logger.Named("generation"))

	service := builder.NewService(catalogClient, generator, logger.Named("builder"))

	deps := routerDeps{
		logger:  logger,
		service: service,
		health: map[string]handlers.Pinger{
			"catalog":    catalogClient,
			"generation": generator,
			"redis":      nil,
		},
		apiLimiter:   middleware.NewDefaultRateLimiter(),
		buildLimiter: middleware.NewStrictRateLimiter(),
		breaker:      middleware.NewCircuitBreaker(),
		release:      cfg.IsProduction(),
	}

	if cfg.RedisURL != "" {
		rdb, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis, using in-process rate limits", zap.Error(err))
		} else {
			defer rdb.Close()
			logger.Info("connected to redis")
			deps.health["redis"] = rdb
			deps.apiLimiter = middleware.NewSharedRateLimiter(rdb, "api", 100, time.Minute, middleware.NewDefaultRateLimiter(), logger)
			deps.buildLimiter = middleware.NewSharedRateLimiter(rdb, "build", 10, time.Minute, middleware.NewStrictRateLimiter(), logger)
		}
	}

	deps.breaker.OnStateChange = func(from, to middleware.CircuitState) {
		logger.Warn("generation circuit changed state",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}

	router, err := newRouter(deps)
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	// Generation can take a while; the write timeout covers build plus guidance.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CatalogTimeout + 2*cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server exited gracefully")
}
