package charge

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// CreateChargeResult is the outcome of a successful charge creation.
type CreateChargeResult struct {
	RedirectURL string
	Artifact    *model.ChargeArtifact
}

// payableStatuses are the order statuses that accept a new charge. A pending
// order is payable only while it has no artifact for the gateway.
var payableStatuses = map[model.OrderStatus]bool{
	model.OrderStatusCreated: true,
	model.OrderStatusPending: true,
	model.OrderStatusFailed:  true,
}

func (d *chargeDomain) CreateCharge(ctx context.Context, orderID uuid.UUID, kind model.GatewayKind) (*CreateChargeResult, error) {
	ctx, span := tracer.Start(ctx, "charge.CreateCharge")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID.String()),
		attribute.String("gateway", kind.String()),
	)

	result, err := d.createCharge(ctx, orderID, kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (d *chargeDomain) createCharge(ctx context.Context, orderID uuid.UUID, kind model.GatewayKind) (*CreateChargeResult, error) {
	gateway, err := d.gateway(kind)
	if err != nil {
		return nil, err
	}

	order, err := d.orderDB.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !payableStatuses[order.Status] {
		return nil, ErrOrderNotPayable
	}
	if order.Status == model.OrderStatusPending {
		existing, err := d.artifactDB.FindByOrder(ctx, order.ID, kind)
		if err != nil {
			return nil, fmt.Errorf("get charge artifact: %w", err)
		}
		if existing != nil {
			return nil, ErrOrderNotPayable
		}
	}

	label := gatewayLabel(kind)
	log := d.logger.With(
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.Number),
		zap.String("gateway", kind.String()),
	)

	settings := d.settings.Settings(kind)
	if !settings.HasCredential() {
		cfgErr := &apperrors.ConfigurationError{Gateway: kind.String(), Setting: "API token"}
		log.Error("gateway credential missing")
		d.addNote(ctx, order.ID, "%s: payment not created, API token is not configured.", label)
		return nil, cfgErr
	}

	payload, err := BuildPayload(kind, PayloadInput{
		Order:           order,
		Settings:        settings,
		StoreName:       d.config.StoreName,
		ReturnURL:       d.confirmationURL(order.Number),
		NotificationURL: d.notificationURL(kind),
		Now:             d.now(),
	})
	if err != nil {
		return nil, err
	}

	snapshot, err := gateway.Create(ctx, payload)
	if err != nil {
		log.Error("create charge failed", zap.Error(err))
		d.addNote(ctx, order.ID, "%s: payment creation failed: %s", label, err.Error())
		return nil, err
	}

	// Pix may answer with the transaction token only; the QR code is
	// fetched with an immediate consult before the artifact is stored.
	if kind == model.GatewayPix && !snapshot.HasDisplayData() && snapshot.ProviderRef != "" {
		consulted, consultErr := gateway.Consult(ctx, snapshot.ProviderRef)
		if consultErr != nil {
			log.Warn("follow-up consult failed", zap.Error(consultErr))
		} else {
			snapshot = mergeSnapshots(snapshot, consulted)
		}
	}

	if snapshot.ProviderRef == "" {
		err := &apperrors.DomainError{Message: "invalid response"}
		log.Error("provider returned no charge reference")
		d.addNote(ctx, order.ID, "%s: payment creation failed: provider returned no charge reference.", label)
		return nil, err
	}
	if kind == model.GatewayLinkCheckout && !snapshot.HasDisplayData() {
		log.Error("provider returned no checkout url", zap.String("provider_ref", snapshot.ProviderRef))
		d.addNote(ctx, order.ID, "%s: payment creation failed: provider returned no checkout URL.", label)
		return nil, ErrMissingDisplayData
	}

	artifact, err := d.storeArtifact(ctx, order.ID, kind, snapshot)
	if err != nil {
		return nil, err
	}

	switch kind {
	case model.GatewayPix:
		d.addNote(ctx, order.ID, "%s: charge created (transaction %s).", label, artifact.ProviderRef)
	default:
		d.addNote(ctx, order.ID, "%s: payment link created (link %s).", label, artifact.ProviderRef)
	}

	d.applyCommerceEffects(ctx, order, log)

	if order.Status != model.OrderStatusPending {
		moved, err := d.orderDB.TransitionStatus(ctx, order.ID, model.OrderStatusPending,
			model.StatusesAllowingTransitionTo(model.OrderStatusPending))
		if err != nil {
			return nil, fmt.Errorf("mark order pending: %w", err)
		}
		if !moved {
			log.Warn("order status changed concurrently, left as is")
		}
	}

	log.Info("charge created", zap.String("provider_ref", artifact.ProviderRef))

	redirect := d.confirmationURL(order.Number)
	if kind == model.GatewayLinkCheckout {
		redirect = artifact.RedirectTarget()
	}

	return &CreateChargeResult{RedirectURL: redirect, Artifact: artifact}, nil
}

// storeArtifact replaces any artifact of the same kind previously attached to the order.
func (d *chargeDomain) storeArtifact(ctx context.Context, orderID uuid.UUID, kind model.GatewayKind, snapshot *model.ChargeSnapshot) (*model.ChargeArtifact, error) {
	now := d.now()
	artifact := &model.ChargeArtifact{
		ID:        uuid.New(),
		OrderID:   orderID,
		Kind:      kind,
		State:     model.ChargeStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	existing, err := d.artifactDB.FindByOrder(ctx, orderID, kind)
	if err != nil {
		return nil, fmt.Errorf("get charge artifact: %w", err)
	}
	if existing != nil {
		artifact.ID = existing.ID
		artifact.CreatedAt = existing.CreatedAt
	}

	artifact.Merge(snapshot)
	if err := d.artifactDB.Upsert(ctx, artifact); err != nil {
		return nil, fmt.Errorf("save charge artifact: %w", err)
	}
	return artifact, nil
}

// applyCommerceEffects runs once the artifact exists. Failures are recorded
// but do not undo the charge the customer is about to pay.
func (d *chargeDomain) applyCommerceEffects(ctx context.Context, order *model.Order, log *zap.Logger) {
	if d.commerce == nil {
		return
	}
	if err := d.commerce.ReduceStock(ctx, order); err != nil {
		log.Error("reduce stock failed", zap.Error(err))
		d.addNote(ctx, order.ID, "Stock could not be reduced: %s", err.Error())
	}
	if err := d.commerce.ClearCart(ctx, order); err != nil {
		log.Warn("clear cart failed", zap.Error(err))
	}
}

// mergeSnapshots overlays b on a, keeping a's values where b is empty.
func mergeSnapshots(a, b *model.ChargeSnapshot) *model.ChargeSnapshot {
	merged := *a
	if b.ProviderRef != "" {
		merged.ProviderRef = b.ProviderRef
	}
	if b.SecondaryRef != "" {
		merged.SecondaryRef = b.SecondaryRef
	}
	if b.Status != "" {
		merged.Status = b.Status
	}
	if b.LinkURL != "" {
		merged.LinkURL = b.LinkURL
	}
	if b.SmartCheckoutURL != "" {
		merged.SmartCheckoutURL = b.SmartCheckoutURL
	}
	if b.QRCodeImage != "" {
		merged.QRCodeImage = b.QRCodeImage
	}
	if b.EMV != "" {
		merged.EMV = b.EMV
	}
	if b.ExpiresAt != nil {
		merged.ExpiresAt = b.ExpiresAt
	}
	if b.Intent != nil {
		merged.Intent = b.Intent
	}
	if len(b.Raw) > 0 {
		merged.Raw = b.Raw
	}
	return &merged
}
