package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
)

// ChargeArtifactDatabasePort defines charge artifact persistence operations.
type ChargeArtifactDatabasePort interface {
	// Upsert creates the artifact or replaces the one stored for (order, kind).
	Upsert(ctx context.Context, artifact *model.ChargeArtifact) error

	// Update saves artifact fields.
	Update(ctx context.Context, artifact *model.ChargeArtifact) error

	// FindByOrder finds the artifact of a kind attached to an order.
	FindByOrder(ctx context.Context, orderID uuid.UUID, kind model.GatewayKind) (*model.ChargeArtifact, error)

	// FindByProviderRef finds an artifact by the provider's primary identifier.
	FindByProviderRef(ctx context.Context, kind model.GatewayKind, ref string) (*model.ChargeArtifact, error)

	// FindBySecondaryRef finds an artifact by the provider's alternate identifier.
	FindBySecondaryRef(ctx context.Context, kind model.GatewayKind, ref string) (*model.ChargeArtifact, error)

	// ListPollable lists artifacts of pending orders created after since, newest first.
	ListPollable(ctx context.Context, kind model.GatewayKind, since time.Time, limit int) ([]*model.ChargeArtifact, error)
}

// WebhookEventDatabasePort defines webhook event persistence operations.
type WebhookEventDatabasePort interface {
	// Create creates a new webhook event record.
	Create(ctx context.Context, event *model.WebhookEvent) error

	// MarkProcessed marks a webhook event as processed.
	MarkProcessed(ctx context.Context, id uuid.UUID, orderID *uuid.UUID, processErr error) error
}

// ChargeGatewayPort is the Remote Client of one gateway variant.
type ChargeGatewayPort interface {
	// Kind returns the gateway variant.
	Kind() model.GatewayKind

	// Create issues POST <base>/ with the built payload.
	Create(ctx context.Context, payload map[string]any) (*model.ChargeSnapshot, error)

	// Consult issues GET <base>/<ref>.
	Consult(ctx context.Context, ref string) (*model.ChargeSnapshot, error)

	// ParseNotification decodes a webhook body.
	ParseNotification(body []byte) (*model.ChargeSnapshot, error)
}

// GatewaySettingsPort provides gateway configuration, including webhook secrets.
type GatewaySettingsPort interface {
	// Settings returns the settings of a gateway.
	Settings(kind model.GatewayKind) model.GatewaySettings
}

// SweepLockPort guards a polling sweep across replicas.
type SweepLockPort interface {
	// TryLock acquires key for ttl. Returns false if someone else holds it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Unlock releases key.
	Unlock(ctx context.Context, key string) error
}

// PayloadArchivePort stores raw provider payloads for audit.
type PayloadArchivePort interface {
	// Archive stores body under a key derived from the gateway and reference.
	Archive(ctx context.Context, kind model.GatewayKind, ref string, body []byte) error
}
