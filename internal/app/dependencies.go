package app

import (
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/houi19lb/Gstore-theme-sub001/internal/domain/charge"

	// Inbound adapters
	healthhttp "github.com/houi19lb/Gstore-theme-sub001/internal/adapter/inbound/http/health"
	paymenthttp "github.com/houi19lb/Gstore-theme-sub001/internal/adapter/inbound/http/payment"

	// Infrastructure
	"github.com/houi19lb/Gstore-theme-sub001/internal/infra/events"
	"github.com/houi19lb/Gstore-theme-sub001/internal/infra/scheduler"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/config"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/metrics"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/middleware"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      goredis.UniversalClient
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	EventBus   *events.Bus

	// Domains
	ChargeDomain charge.ChargeDomain
	Scheduler    *scheduler.Scheduler

	// HTTP Handlers
	ChargeHandler  *paymenthttp.ChargeHandler
	WebhookHandler *paymenthttp.WebhookHandler
	HealthHandler  *healthhttp.Handler
	OperatorAuth   *middleware.OperatorAuth
}
