package gateway

import (
	"net/http"

	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/config"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/metrics"
	"go.uber.org/zap"
)

// OptionsFromConfig maps a gateway configuration section to client options.
func OptionsFromConfig(kind model.GatewayKind, cfg config.GatewayConfig) Options {
	return Options{
		Kind:                kind,
		BaseURL:             cfg.BaseURL(),
		Token:               cfg.Token,
		BearerPrefix:        cfg.BearerPrefix,
		Debug:               cfg.Debug,
		Timeout:             cfg.Timeout,
		FailureThreshold:    cfg.Breaker.FailureThreshold,
		OpenTimeout:         cfg.Breaker.OpenTimeout,
		MaxHalfOpenRequests: cfg.Breaker.MaxHalfOpenRequests,
	}
}

// NewGateways builds one adapter per supported gateway.
func NewGateways(cfg config.GatewaysConfig, httpClient *http.Client, m *metrics.Metrics, log *zap.Logger) []outbound.ChargeGatewayPort {
	return []outbound.ChargeGatewayPort{
		NewLinkCheckoutGateway(NewClient(OptionsFromConfig(model.GatewayLinkCheckout, cfg.LinkCheckout), httpClient, m, log)),
		NewPixGateway(NewClient(OptionsFromConfig(model.GatewayPix, cfg.Pix), httpClient, m, log)),
	}
}
