package charge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/houi19lb/Gstore-theme-sub001/internal/domain/charge")

// ChargeDomain creates provider charges and reconciles provider status into orders.
type ChargeDomain interface {
	// CreateCharge creates a provider artifact for an order and moves it to pending.
	CreateCharge(ctx context.Context, orderID uuid.UUID, kind model.GatewayKind) (*CreateChargeResult, error)

	// HandleWebhook authenticates a notification and reconciles the order it refers to.
	HandleWebhook(ctx context.Context, kind model.GatewayKind, n Notification) (*WebhookResult, error)

	// Reconcile applies a provider snapshot to the artifact and its order.
	Reconcile(ctx context.Context, artifact *model.ChargeArtifact, snapshot *model.ChargeSnapshot, manual bool) (*ReconcileResult, error)

	// Refresh consults the provider on behalf of an operator.
	Refresh(ctx context.Context, orderID uuid.UUID, kind model.GatewayKind) error

	// Sweep polls recent pending charges of a gateway that has no webhook secret.
	Sweep(ctx context.Context, kind model.GatewayKind) (*SweepResult, error)
}

// Config holds charge domain configuration.
type Config struct {
	StoreName string
	// ConfirmationURL is the order-received page template; "{order}" is
	// replaced by the order number.
	ConfirmationURL string
	// PublicURL is this service's external base URL.
	PublicURL string

	PollWindow    time.Duration
	PollBatchSize int
	PollLockTTL   time.Duration
}

// DefaultConfig returns default charge domain configuration.
func DefaultConfig() *Config {
	return &Config{
		StoreName:     "Gstore",
		PollWindow:    24 * time.Hour,
		PollBatchSize: 50,
		PollLockTTL:   10 * time.Minute,
	}
}

// chargeDomain implements ChargeDomain.
type chargeDomain struct {
	orderDB        outbound.OrderDatabasePort
	noteDB         outbound.OrderNotePort
	artifactDB     outbound.ChargeArtifactDatabasePort
	webhookDB      outbound.WebhookEventDatabasePort
	commerce       outbound.CommercePort
	gateways       map[model.GatewayKind]outbound.ChargeGatewayPort
	settings       outbound.GatewaySettingsPort
	eventPublisher outbound.EventPublisherPort
	archive        outbound.PayloadArchivePort
	sweepLock      outbound.SweepLockPort
	config         *Config
	now            func() time.Time
	logger         *zap.Logger
}

// NewChargeDomain creates a new charge domain service.
// archive and sweepLock are optional.
func NewChargeDomain(
	orderDB outbound.OrderDatabasePort,
	noteDB outbound.OrderNotePort,
	artifactDB outbound.ChargeArtifactDatabasePort,
	webhookDB outbound.WebhookEventDatabasePort,
	commerce outbound.CommercePort,
	gateways []outbound.ChargeGatewayPort,
	settings outbound.GatewaySettingsPort,
	eventPublisher outbound.EventPublisherPort,
	archive outbound.PayloadArchivePort,
	sweepLock outbound.SweepLockPort,
	config *Config,
	logger *zap.Logger,
) ChargeDomain {
	if config == nil {
		config = DefaultConfig()
	}
	if config.PollBatchSize <= 0 {
		config.PollBatchSize = 50
	}
	if config.PollWindow <= 0 {
		config.PollWindow = 24 * time.Hour
	}

	registry := make(map[model.GatewayKind]outbound.ChargeGatewayPort, len(gateways))
	for _, g := range gateways {
		registry[g.Kind()] = g
	}

	return &chargeDomain{
		orderDB:        orderDB,
		noteDB:         noteDB,
		artifactDB:     artifactDB,
		webhookDB:      webhookDB,
		commerce:       commerce,
		gateways:       registry,
		settings:       settings,
		eventPublisher: eventPublisher,
		archive:        archive,
		sweepLock:      sweepLock,
		config:         config,
		now:            time.Now,
		logger:         logger.Named("charge"),
	}
}

func (d *chargeDomain) gateway(kind model.GatewayKind) (outbound.ChargeGatewayPort, error) {
	g, ok := d.gateways[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotAvailable, kind)
	}
	return g, nil
}

// addNote appends an order note. A failed note never fails the operation.
func (d *chargeDomain) addNote(ctx context.Context, orderID uuid.UUID, format string, args ...any) {
	body := fmt.Sprintf(format, args...)
	if err := d.noteDB.AddNote(ctx, orderID, body); err != nil {
		d.logger.Error("failed to add order note",
			zap.String("order_id", orderID.String()),
			zap.String("note", body),
			zap.Error(err))
	}
}

func (d *chargeDomain) publish(ctx context.Context, event interface{}) {
	if d.eventPublisher == nil {
		return
	}
	if err := d.eventPublisher.Publish(ctx, event); err != nil {
		d.logger.Error("failed to publish event", zap.Error(err))
	}
}

func (d *chargeDomain) confirmationURL(orderNumber string) string {
	return strings.ReplaceAll(d.config.ConfirmationURL, "{order}", orderNumber)
}

func (d *chargeDomain) notificationURL(kind model.GatewayKind) string {
	if d.config.PublicURL == "" {
		return ""
	}
	return strings.TrimRight(d.config.PublicURL, "/") + "/webhooks/" + kind.String()
}

// gatewayLabel is the human-readable gateway name used in order notes.
func gatewayLabel(kind model.GatewayKind) string {
	switch kind {
	case model.GatewayLinkCheckout:
		return "LinkCheckout"
	case model.GatewayPix:
		return "Pix"
	default:
		return string(kind)
	}
}
