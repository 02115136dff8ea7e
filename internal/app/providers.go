package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/houi19lb/Gstore-theme-sub001/internal/domain/charge"

	// Inbound adapters
	healthhttp "github.com/houi19lb/Gstore-theme-sub001/internal/adapter/inbound/http/health"
	paymenthttp "github.com/houi19lb/Gstore-theme-sub001/internal/adapter/inbound/http/payment"

	// Ports
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"

	// Outbound adapters
	"github.com/houi19lb/Gstore-theme-sub001/internal/adapter/outbound/gateway"
	"github.com/houi19lb/Gstore-theme-sub001/internal/adapter/outbound/postgres"
	redisadapter "github.com/houi19lb/Gstore-theme-sub001/internal/adapter/outbound/redis"
	s3adapter "github.com/houi19lb/Gstore-theme-sub001/internal/adapter/outbound/s3"

	// Infrastructure
	"github.com/houi19lb/Gstore-theme-sub001/internal/infra/events"
	"github.com/houi19lb/Gstore-theme-sub001/internal/infra/httpclient"
	"github.com/houi19lb/Gstore-theme-sub001/internal/infra/scheduler"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/cache"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/config"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/database"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/logger"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/metrics"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/middleware"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideZapLogger,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideHTTPClient,
	ProvideMetrics,
	ProvideEventBus,
	wire.Bind(new(outbound.EventPublisherPort), new(*events.Bus)),
)

// ProvideZapLogger creates a zap logger instance.
func ProvideZapLogger(cfg *config.Config) *zap.Logger {
	return logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideDatabase creates a database connection and migrates the schema when enabled.
func ProvideDatabase(cfg *config.Config, zapLog *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			zapLog.Warn("close database failed", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

// ProvideRedisClient creates a Redis client. Redis is optional.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		zapLog.Warn("Redis connection failed, continuing without sweep lock and idempotency", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = cache.Close(client) }
}

// ProvideHTTPClient creates a shared HTTP client with connection pooling.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics() *metrics.Metrics {
	return metrics.New("gstore", prometheus.DefaultRegisterer)
}

// ProvideEventBus creates the domain event bus with its subscribers.
func ProvideEventBus(zapLog *zap.Logger) *events.Bus {
	bus := events.NewBus(zapLog)
	registerEventHandlers(bus, zapLog)
	return bus
}

// ===== Charge Domain Providers =====

// ChargeSet provides charge domain dependencies.
var ChargeSet = wire.NewSet(
	postgres.NewOrderAdapter,
	postgres.NewOrderNoteAdapter,
	postgres.NewChargeArtifactAdapter,
	postgres.NewWebhookEventAdapter,
	postgres.NewCommerceAdapter,
	ProvideGateways,
	ProvideGatewaySettings,
	ProvideSweepLock,
	ProvidePayloadArchive,
	ProvideChargeConfig,
	charge.NewChargeDomain,
	ProvideScheduler,
)

// ProvideGateways creates the remote clients of every gateway variant.
func ProvideGateways(cfg *config.Config, httpClient *http.Client, m *metrics.Metrics, zapLog *zap.Logger) []outbound.ChargeGatewayPort {
	return gateway.NewGateways(cfg.Gateways, httpClient, m, zapLog)
}

// ProvideGatewaySettings exposes gateway configuration to the domain.
func ProvideGatewaySettings(cfg *config.Config) outbound.GatewaySettingsPort {
	return gateway.NewStaticSettings(cfg.Gateways)
}

// ProvideSweepLock creates the distributed sweep lock when Redis is available.
func ProvideSweepLock(redis goredis.UniversalClient) outbound.SweepLockPort {
	if redis == nil {
		return nil
	}
	return redisadapter.NewSweepLock(redis)
}

// ProvidePayloadArchive creates the raw webhook archive when a bucket is configured.
func ProvidePayloadArchive(cfg *config.Config) (outbound.PayloadArchivePort, error) {
	if !cfg.Archive.Enabled() {
		return nil, nil
	}
	client, err := s3adapter.NewClient(context.Background(), cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("init payload archive: %w", err)
	}
	return s3adapter.NewPayloadArchiveAdapter(client, cfg.Archive.Bucket, cfg.Archive.Prefix), nil
}

// ProvideChargeConfig maps application configuration to the charge domain.
func ProvideChargeConfig(cfg *config.Config) *charge.Config {
	chargeCfg := charge.DefaultConfig()
	if cfg.Store.Name != "" {
		chargeCfg.StoreName = cfg.Store.Name
	}
	chargeCfg.ConfirmationURL = cfg.Store.ConfirmationURL
	chargeCfg.PublicURL = cfg.Store.PublicURL
	if cfg.Poller.Window > 0 {
		chargeCfg.PollWindow = cfg.Poller.Window
	}
	if cfg.Poller.BatchSize > 0 {
		chargeCfg.PollBatchSize = cfg.Poller.BatchSize
	}
	if cfg.Poller.LockTTL > 0 {
		chargeCfg.PollLockTTL = cfg.Poller.LockTTL
	}
	return chargeCfg
}

// ProvideScheduler creates the polling fallback scheduler.
func ProvideScheduler(cfg *config.Config, domain charge.ChargeDomain, m *metrics.Metrics, zapLog *zap.Logger) *scheduler.Scheduler {
	return scheduler.New(domain, model.AllGatewayKinds, &scheduler.Config{
		Interval:   cfg.Poller.Interval,
		RunTimeout: cfg.Poller.LockTTL,
	}, m, zapLog)
}

// ===== HTTP Providers =====

// HTTPSet provides HTTP handlers and middleware.
var HTTPSet = wire.NewSet(
	paymenthttp.NewChargeHandler,
	paymenthttp.NewWebhookHandler,
	ProvideHealthHandler,
	ProvideOperatorAuth,
)

// ProvideHealthHandler creates the health handler over the live connections.
func ProvideHealthHandler(db *gorm.DB, redis goredis.UniversalClient) *healthhttp.Handler {
	checkers := map[string]healthhttp.Checker{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if redis != nil {
		checkers["redis"] = func(ctx context.Context) error { return redis.Ping(ctx).Err() }
	}
	return healthhttp.NewHandler(checkers)
}

// ProvideOperatorAuth creates the operator token validator.
func ProvideOperatorAuth(cfg *config.Config) *middleware.OperatorAuth {
	return middleware.NewOperatorAuth(cfg.Operator.JWTSecret, cfg.Operator.Issuer)
}

// AppSet is the complete provider set.
var AppSet = wire.NewSet(
	InfraSet,
	ChargeSet,
	HTTPSet,
)
