package charge

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// Notification is an inbound webhook delivery.
type Notification struct {
	// Token is the shared secret presented in a header or query parameter.
	// When empty, a "token" field in the body is used instead.
	Token string
	Body  []byte
}

// WebhookResult is the outcome of an accepted notification.
type WebhookResult struct {
	OrderID   uuid.UUID
	Reconcile *ReconcileResult
}

var notificationSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"properties": {
		"id":                {"type": ["string", "number"]},
		"transaction_token": {"type": ["string", "number"]},
		"movement_id":       {"type": ["string", "number"]},
		"status":            {"type": ["string", "null"]},
		"token":             {"type": ["string", "null"]}
	}
}`)

func (d *chargeDomain) HandleWebhook(ctx context.Context, kind model.GatewayKind, n Notification) (*WebhookResult, error) {
	ctx, span := tracer.Start(ctx, "charge.HandleWebhook")
	defer span.End()

	gateway, err := d.gateway(kind)
	if err != nil {
		return nil, err
	}

	fields, err := decodeNotification(n.Body)

	settings := d.settings.Settings(kind)
	if settings.PushEnabled() {
		token := n.Token
		if token == "" && fields != nil {
			token = stringField(fields, "token")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(settings.WebhookSecret)) != 1 {
			d.logger.Warn("webhook authentication failed", zap.String("gateway", kind.String()))
			return nil, &apperrors.AuthenticationError{Gateway: kind.String()}
		}
	}
	if err != nil {
		return nil, err
	}

	key, secondary := lookupKey(kind, fields)
	if key == "" {
		return nil, ErrMissingIdentifier
	}

	log := d.logger.With(zap.String("gateway", kind.String()), zap.String("lookup_key", key))

	var artifact *model.ChargeArtifact
	if secondary {
		artifact, err = d.artifactDB.FindBySecondaryRef(ctx, kind, key)
	} else {
		artifact, err = d.artifactDB.FindByProviderRef(ctx, kind, key)
	}
	if err != nil {
		return nil, fmt.Errorf("find charge artifact: %w", err)
	}
	if artifact == nil {
		log.Info("webhook for unknown charge")
		return nil, &apperrors.NotFoundError{Resource: "order", Key: key}
	}

	if d.archive != nil {
		if err := d.archive.Archive(ctx, kind, key, n.Body); err != nil {
			log.Warn("archive webhook payload failed", zap.Error(err))
		}
	}

	event := d.recordDelivery(ctx, kind, key, n.Body, log)

	snapshot, err := gateway.ParseNotification(n.Body)
	if err != nil {
		d.finishDelivery(ctx, event, artifact.OrderID, err, log)
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	result, err := d.Reconcile(ctx, artifact, snapshot, false)
	d.finishDelivery(ctx, event, artifact.OrderID, err, log)
	if err != nil {
		return nil, err
	}

	return &WebhookResult{OrderID: artifact.OrderID, Reconcile: result}, nil
}

func (d *chargeDomain) recordDelivery(ctx context.Context, kind model.GatewayKind, key string, body []byte, log *zap.Logger) *model.WebhookEvent {
	if d.webhookDB == nil {
		return nil
	}
	event := &model.WebhookEvent{
		ID:        uuid.New(),
		Gateway:   kind,
		LookupKey: key,
		Body:      string(body),
		CreatedAt: d.now(),
	}
	if err := d.webhookDB.Create(ctx, event); err != nil {
		log.Warn("record webhook delivery failed", zap.Error(err))
		return nil
	}
	return event
}

func (d *chargeDomain) finishDelivery(ctx context.Context, event *model.WebhookEvent, orderID uuid.UUID, processErr error, log *zap.Logger) {
	if event == nil {
		return
	}
	if err := d.webhookDB.MarkProcessed(ctx, event.ID, &orderID, processErr); err != nil {
		log.Warn("mark webhook delivery processed failed", zap.Error(err))
	}
}

// decodeNotification validates the body shape and returns its top-level fields.
func decodeNotification(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrInvalidPayload
	}

	result, err := gojsonschema.Validate(notificationSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return fields, nil
}

// lookupKey returns the identifier used to find the artifact and whether it
// is the secondary (movement) reference.
func lookupKey(kind model.GatewayKind, fields map[string]any) (string, bool) {
	if kind == model.GatewayLinkCheckout {
		return stringField(fields, "id"), false
	}
	if v := stringField(fields, "transaction_token"); v != "" {
		return v, false
	}
	if v := stringField(fields, "id"); v != "" {
		return v, false
	}
	if v := stringField(fields, "movement_id"); v != "" {
		return v, true
	}
	return "", false
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
