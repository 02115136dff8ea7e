package charge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReconcileResult describes what a reconciliation did.
type ReconcileResult struct {
	OrderID      uuid.UUID
	Action       Action
	Transitioned bool
	Backfilled   bool
}

func (d *chargeDomain) Reconcile(ctx context.Context, artifact *model.ChargeArtifact, snapshot *model.ChargeSnapshot, manual bool) (*ReconcileResult, error) {
	ctx, span := tracer.Start(ctx, "charge.Reconcile")
	defer span.End()

	status := ClassifyStatus(snapshot.Status)
	span.SetAttributes(
		attribute.String("order.id", artifact.OrderID.String()),
		attribute.String("gateway", artifact.Kind.String()),
		attribute.String("provider.status", status.Raw),
		attribute.Bool("manual", manual),
	)

	order, err := d.orderDB.FindByID(ctx, artifact.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, &apperrors.NotFoundError{Resource: "order", Key: artifact.OrderID.String()}
	}

	r := &reconciliation{
		d:        d,
		order:    order,
		artifact: artifact,
		snapshot: snapshot,
		status:   status,
		prefix:   fmt.Sprintf("%s %s", gatewayLabel(artifact.Kind), source(manual)),
		manual:   manual,
		log: d.logger.With(
			zap.String("order_id", order.ID.String()),
			zap.String("gateway", artifact.Kind.String()),
			zap.String("provider_status", status.Raw),
			zap.Bool("manual", manual),
		),
	}
	result := &ReconcileResult{OrderID: order.ID, Action: status.Action}

	// Snapshot is merged after the terminal-state checks read the stored state.
	var transitionErr error
	switch status.Action {
	case ActionMarkPaid:
		result.Transitioned, result.Backfilled, transitionErr = r.markPaid(ctx)
	case ActionCancel:
		result.Transitioned, transitionErr = r.cancel(ctx)
	default:
		r.passthrough(ctx)
	}
	// A paid order pins the artifact to paid, whatever a stale result says.
	if order.Status.IsPaid() {
		artifact.State = model.ChargeStatePaid
	}

	// Metadata is last-write-wins and saved whatever happened to the order.
	artifact.Merge(snapshot)
	artifact.UpdatedAt = d.now()
	if err := d.artifactDB.Update(ctx, artifact); err != nil {
		return result, errors.Join(transitionErr, fmt.Errorf("update charge artifact: %w", err))
	}

	if transitionErr != nil {
		span.RecordError(transitionErr)
		return result, transitionErr
	}
	return result, nil
}

// Refresh consults the provider and reconciles with manual wording.
// Failures are recorded as order notes; the returned error is for logging only.
func (d *chargeDomain) Refresh(ctx context.Context, orderID uuid.UUID, kind model.GatewayKind) error {
	ctx, span := tracer.Start(ctx, "charge.Refresh")
	defer span.End()

	label := gatewayLabel(kind)
	gateway, err := d.gateway(kind)
	if err != nil {
		return err
	}

	artifact, err := d.artifactDB.FindByOrder(ctx, orderID, kind)
	if err != nil {
		return fmt.Errorf("get charge artifact: %w", err)
	}
	if artifact == nil {
		d.addNote(ctx, orderID, "%s manual consult: no charge found for this order.", label)
		return ErrArtifactNotFound
	}

	snapshot, err := gateway.Consult(ctx, artifact.ProviderRef)
	if err != nil {
		d.logger.Warn("manual consult failed",
			zap.String("order_id", orderID.String()),
			zap.String("provider_ref", artifact.ProviderRef),
			zap.Error(err))
		d.addNote(ctx, orderID, "%s manual consult failed: %s", label, err.Error())
		return err
	}

	if _, err := d.Reconcile(ctx, artifact, snapshot, true); err != nil {
		d.addNote(ctx, orderID, "%s manual consult could not be applied: %s", label, err.Error())
		return err
	}
	return nil
}

// reconciliation carries the state of one Reconcile call.
type reconciliation struct {
	d        *chargeDomain
	order    *model.Order
	artifact *model.ChargeArtifact
	snapshot *model.ChargeSnapshot
	status   VendorStatus
	prefix   string
	manual   bool
	log      *zap.Logger
}

func (r *reconciliation) note(ctx context.Context, format string, args ...any) {
	r.d.addNote(ctx, r.order.ID, r.prefix+": "+format, args...)
}

// markPaid performs the guarded Pending -> Paid transition. Paid -> Paid is a no-op.
func (r *reconciliation) markPaid(ctx context.Context) (transitioned, backfilled bool, err error) {
	switch {
	case r.order.Status.IsPaid() || r.artifact.State == model.ChargeStatePaid:
		r.note(ctx, "payment confirmation received (%s), order already paid.", r.status.Raw)
		r.artifact.State = model.ChargeStatePaid
		return false, false, nil
	case r.artifact.State == model.ChargeStateExpired:
		r.log.Warn("payment reported for an expired charge")
		r.note(ctx, "payment confirmation received (%s) after the charge expired; review manually.", r.status.Raw)
		return false, false, nil
	case !r.order.Status.CanTransitionTo(model.OrderStatusPaid):
		r.log.Warn("payment reported for an order that cannot be paid", zap.String("order_status", r.order.Status.String()))
		r.note(ctx, "payment confirmation received (%s) but order is %s; review manually.", r.status.Raw, r.order.Status)
		return false, false, nil
	}

	if r.artifact.Kind == model.GatewayLinkCheckout && !r.snapshot.Intent.IsEmpty() {
		backfilled, err = r.backfill(ctx)
		if err != nil {
			return false, false, err
		}
	}

	won, err := r.d.orderDB.MarkPaid(ctx, r.order.ID, r.artifact.ProviderRef, r.d.now())
	if err != nil {
		return false, backfilled, fmt.Errorf("mark order paid: %w", err)
	}
	r.artifact.State = model.ChargeStatePaid
	if !won {
		// Another path completed the payment between our read and write.
		r.note(ctx, "payment confirmation received (%s), order already paid.", r.status.Raw)
		return false, backfilled, nil
	}

	r.log.Info("order paid", zap.String("provider_ref", r.artifact.ProviderRef))
	r.note(ctx, "payment confirmed (%s), reference %s.", r.status.Raw, r.artifact.ProviderRef)
	r.d.publish(ctx, &PaymentCompletedEvent{
		ID:          uuid.New(),
		OrderID:     r.order.ID,
		OrderNumber: r.order.Number,
		Gateway:     r.artifact.Kind,
		ProviderRef: r.artifact.ProviderRef,
		Amount:      r.order.Total,
		Manual:      r.manual,
		Timestamp:   r.d.now(),
	})
	return true, backfilled, nil
}

// cancel performs the guarded transition to cancelled for an expired charge.
func (r *reconciliation) cancel(ctx context.Context) (bool, error) {
	if r.order.Status.IsClosed() || r.artifact.State.IsTerminal() {
		r.note(ctx, "charge expired, order already %s.", r.order.Status)
		if !r.order.Status.IsPaid() && r.artifact.State != model.ChargeStatePaid {
			r.artifact.State = model.ChargeStateExpired
		}
		return false, nil
	}

	won, err := r.d.orderDB.TransitionStatus(ctx, r.order.ID, model.OrderStatusCancelled,
		model.StatusesAllowingTransitionTo(model.OrderStatusCancelled))
	if err != nil {
		return false, fmt.Errorf("cancel order: %w", err)
	}
	if !won {
		r.note(ctx, "charge expired, order status changed concurrently.")
		return false, nil
	}

	r.artifact.State = model.ChargeStateExpired
	r.log.Info("order cancelled, charge expired")
	r.note(ctx, "charge expired, order cancelled.")
	r.d.publish(ctx, &OrderCancelledEvent{
		ID:          uuid.New(),
		OrderID:     r.order.ID,
		OrderNumber: r.order.Number,
		Gateway:     r.artifact.Kind,
		ProviderRef: r.artifact.ProviderRef,
		Timestamp:   r.d.now(),
	})
	return true, nil
}

func (r *reconciliation) passthrough(ctx context.Context) {
	if r.status.Raw == "" {
		r.note(ctx, "notification without status, charge data updated.")
		return
	}
	r.note(ctx, "provider status %q.", r.status.Raw)
	if r.artifact.State == model.ChargeStateCreated {
		r.artifact.State = model.ChargeStatePending
	}
}

// backfill copies customer data collected by the hosted checkout into empty billing fields.
func (r *reconciliation) backfill(ctx context.Context) (bool, error) {
	billing, meta, changed := applyIntent(r.order.Billing, r.order.BillingMeta, r.snapshot.Intent)
	if !changed {
		return false, nil
	}
	if err := r.d.orderDB.UpdateBilling(ctx, r.order.ID, billing, meta); err != nil {
		return false, fmt.Errorf("backfill billing: %w", err)
	}
	r.order.Billing = billing
	r.order.BillingMeta = meta
	r.note(ctx, "customer data collected at checkout was copied to the order.")
	return true, nil
}

// applyIntent fills empty billing fields from intent.
func applyIntent(b model.BillingDetails, meta map[string]string, intent *model.CollectedIntent) (model.BillingDetails, map[string]string, bool) {
	changed := false
	set := func(dst *string, v string) {
		v = strings.TrimSpace(v)
		if v != "" && strings.TrimSpace(*dst) == "" {
			*dst = v
			changed = true
		}
	}

	if intent.Name != "" && b.FullName() == "" {
		first, last, _ := strings.Cut(strings.TrimSpace(intent.Name), " ")
		set(&b.FirstName, first)
		set(&b.LastName, last)
	}
	set(&b.Email, intent.Email)
	set(&b.Phone, intent.Phone)
	set(&b.Address1, intent.Address.Street)
	set(&b.Number, intent.Address.Number)
	set(&b.Address2, intent.Address.Complement)
	set(&b.Neighborhood, intent.Address.Neighborhood)
	set(&b.City, intent.Address.City)
	set(&b.State, intent.Address.State)
	set(&b.Postcode, intent.Address.Postcode)
	set(&b.Country, intent.Address.Country)

	out := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	if kind, doc := ClassifyDocument(intent.Document); kind != DocumentUnknown {
		if existing, _ := ExtractDocument(meta); existing == DocumentUnknown {
			out["billing_"+string(kind)] = doc
			changed = true
		}
	}

	return b, out, changed
}

func source(manual bool) string {
	if manual {
		return "manual consult"
	}
	return "automatic notification"
}
