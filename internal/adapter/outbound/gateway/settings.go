package gateway

import (
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/config"
)

// StaticSettings serves gateway settings loaded at startup.
type StaticSettings struct {
	settings map[model.GatewayKind]model.GatewaySettings
}

// NewStaticSettings creates settings from configuration.
func NewStaticSettings(cfg config.GatewaysConfig) *StaticSettings {
	return &StaticSettings{settings: map[model.GatewayKind]model.GatewaySettings{
		model.GatewayLinkCheckout: settingsFromConfig(cfg.LinkCheckout),
		model.GatewayPix:          settingsFromConfig(cfg.Pix),
	}}
}

// Settings returns the settings of a gateway. Unknown kinds get zero settings.
func (s *StaticSettings) Settings(kind model.GatewayKind) model.GatewaySettings {
	return s.settings[kind]
}

func settingsFromConfig(cfg config.GatewayConfig) model.GatewaySettings {
	return model.GatewaySettings{
		Token:               cfg.Token,
		WebhookSecret:       cfg.WebhookSecret,
		MaxInstallments:     cfg.MaxInstallments,
		InstallmentRule:     cfg.InstallmentRule,
		ForwardFees:         cfg.ForwardFees,
		PixExpiration:       cfg.PixExpiration,
		Description:         cfg.Description,
		InternalDescription: cfg.InternalDescription,
	}
}

var _ outbound.GatewaySettingsPort = (*StaticSettings)(nil)
