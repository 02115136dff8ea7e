package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// chargeArtifactAdapter implements outbound.ChargeArtifactDatabasePort.
type chargeArtifactAdapter struct {
	db *gorm.DB
}

// NewChargeArtifactAdapter creates a new charge artifact database adapter.
func NewChargeArtifactAdapter(db *gorm.DB) outbound.ChargeArtifactDatabasePort {
	return &chargeArtifactAdapter{db: db}
}

func (a *chargeArtifactAdapter) Upsert(ctx context.Context, artifact *model.ChargeArtifact) error {
	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}, {Name: "kind"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"provider_ref", "secondary_ref", "link_url", "smart_url", "qr_code_image",
				"emv", "provider_status", "state", "expires_at", "last_raw_payload", "updated_at",
			}),
		}).
		Create(artifact).Error
	if err != nil {
		return fmt.Errorf("upsert charge artifact: %w", err)
	}
	return nil
}

// Update writes the provider metadata columns. The state column only moves
// while the stored state is not terminal.
func (a *chargeArtifactAdapter) Update(ctx context.Context, artifact *model.ChargeArtifact) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.ChargeArtifact{}).
			Where("id = ?", artifact.ID).
			Updates(map[string]interface{}{
				"provider_ref":     artifact.ProviderRef,
				"secondary_ref":    artifact.SecondaryRef,
				"link_url":         artifact.LinkURL,
				"smart_url":        artifact.SmartURL,
				"qr_code_image":    artifact.QRCodeImage,
				"emv":              artifact.EMV,
				"provider_status":  artifact.ProviderStatus,
				"expires_at":       artifact.ExpiresAt,
				"last_raw_payload": artifact.LastRawPayload,
				"updated_at":       artifact.UpdatedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("update charge artifact: %w", err)
		}

		err = tx.Model(&model.ChargeArtifact{}).
			Where("id = ? AND state NOT IN ?", artifact.ID, terminalChargeStates).
			Update("state", artifact.State).Error
		if err != nil {
			return fmt.Errorf("update charge artifact state: %w", err)
		}
		return nil
	})
}

var terminalChargeStates = []model.ChargeState{model.ChargeStatePaid, model.ChargeStateExpired}

func (a *chargeArtifactAdapter) FindByOrder(ctx context.Context, orderID uuid.UUID, kind model.GatewayKind) (*model.ChargeArtifact, error) {
	return a.first(ctx, "order_id = ? AND kind = ?", orderID, kind)
}

func (a *chargeArtifactAdapter) FindByProviderRef(ctx context.Context, kind model.GatewayKind, ref string) (*model.ChargeArtifact, error) {
	return a.first(ctx, "kind = ? AND provider_ref = ?", kind, ref)
}

func (a *chargeArtifactAdapter) FindBySecondaryRef(ctx context.Context, kind model.GatewayKind, ref string) (*model.ChargeArtifact, error) {
	return a.first(ctx, "kind = ? AND secondary_ref = ?", kind, ref)
}

func (a *chargeArtifactAdapter) ListPollable(ctx context.Context, kind model.GatewayKind, since time.Time, limit int) ([]*model.ChargeArtifact, error) {
	var artifacts []*model.ChargeArtifact
	query := a.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = charge_artifacts.order_id").
		Where("charge_artifacts.kind = ?", kind).
		Where("orders.status = ?", model.OrderStatusPending).
		Where("orders.created_at >= ?", since).
		Order("orders.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&artifacts).Error; err != nil {
		return nil, fmt.Errorf("list pollable charge artifacts: %w", err)
	}
	return artifacts, nil
}

func (a *chargeArtifactAdapter) first(ctx context.Context, query string, args ...interface{}) (*model.ChargeArtifact, error) {
	var artifact model.ChargeArtifact
	err := a.db.WithContext(ctx).Where(query, args...).First(&artifact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find charge artifact: %w", err)
	}
	return &artifact, nil
}

// Compile-time check
var _ outbound.ChargeArtifactDatabasePort = (*chargeArtifactAdapter)(nil)
