package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "github.com/houi19lb/Gstore-theme-sub001/cmd/server/docs" // swagger docs
	"github.com/houi19lb/Gstore-theme-sub001/internal/infra/tracing"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/config"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/middleware"
)

// App represents the application.
type App struct {
	config *config.Config
	deps   *Dependencies
	router *gin.Engine
	logger *zap.Logger

	shutdownTracing tracing.ShutdownFunc
	cleanup         func()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	shutdownTracing, err := tracing.Setup(cfg.Tracing, nil, deps.Logger)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	app := &App{
		config:          cfg,
		deps:            deps,
		logger:          deps.Logger,
		shutdownTracing: shutdownTracing,
		cleanup:         cleanup,
	}
	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID(a.logger))
	r.Use(otelgin.Middleware(a.config.Tracing.ServiceName))
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.deps.Metrics, "/metrics", "/healthz"))
	r.Use(middleware.CORS(a.config.Server.AllowOrigins))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// registerRoutes registers all HTTP routes.
func (a *App) registerRoutes() {
	root := a.router.Group("")
	a.deps.HealthHandler.RegisterRoutes(root)

	// Provider notifications authenticate with the shared webhook secret.
	a.deps.WebhookHandler.RegisterRoutes(root)

	v1 := a.router.Group("/api/v1")
	storefront := v1.Group("")
	storefront.Use(middleware.Idempotency(a.deps.Redis, middleware.DefaultIdempotencyConfig()))
	a.deps.ChargeHandler.RegisterRoutes(storefront)

	admin := v1.Group("/admin")
	admin.Use(a.deps.OperatorAuth.Require())
	a.deps.ChargeHandler.RegisterAdminRoutes(admin)
}

// Start starts background workers.
func (a *App) Start() {
	if a.config.Poller.Enabled {
		a.deps.Scheduler.Start()
	}
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Router returns the HTTP router.
func (a *App) Router() http.Handler {
	return a.router
}

// Stop stops the application and releases resources.
func (a *App) Stop(ctx context.Context) {
	a.deps.Scheduler.Stop()

	if err := a.shutdownTracing(ctx); err != nil {
		a.logger.Warn("tracing shutdown failed", zap.Error(err))
	}

	_ = a.logger.Sync()

	a.cleanup()
}
