package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
)

// PixGateway implements ChargeGatewayPort for Pix QR charges.
type PixGateway struct {
	client *Client
}

// NewPixGateway creates a new Pix gateway adapter.
func NewPixGateway(client *Client) *PixGateway {
	return &PixGateway{client: client}
}

// Kind returns the gateway kind.
func (g *PixGateway) Kind() model.GatewayKind {
	return model.GatewayPix
}

// Create creates a Pix charge. The response may omit the QR code.
func (g *PixGateway) Create(ctx context.Context, payload map[string]any) (*model.ChargeSnapshot, error) {
	resp, err := g.client.Do(ctx, "create", http.MethodPost, "/", payload)
	if err != nil {
		return nil, err
	}
	return decodePix(resp.Body)
}

// Consult fetches a charge by transaction token.
func (g *PixGateway) Consult(ctx context.Context, ref string) (*model.ChargeSnapshot, error) {
	resp, err := g.client.Do(ctx, "consult", http.MethodGet, "/"+url.PathEscape(ref), nil)
	if err != nil {
		return nil, err
	}
	return decodePix(resp.Body)
}

// ParseNotification decodes a webhook body, which shares the consult schema.
func (g *PixGateway) ParseNotification(body []byte) (*model.ChargeSnapshot, error) {
	return decodePix(body)
}

type pixCharge struct {
	TransactionToken flexString `json:"transaction_token"`
	ID               flexString `json:"id"`
	MovementID       flexString `json:"movement_id"`
	Status           string     `json:"status"`
	QRCode           string     `json:"qr_code"`
	QRCodeImage      string     `json:"qr_code_image"`
	EMV              string     `json:"emv"`
	ExpiresAt        string     `json:"expires_at"`
}

func decodePix(body []byte) (*model.ChargeSnapshot, error) {
	var charge pixCharge
	if err := json.Unmarshal(body, &charge); err != nil {
		return nil, &apperrors.DomainError{Message: fmt.Sprintf("%s: %v", invalidResponse, err)}
	}

	snapshot := &model.ChargeSnapshot{
		Kind:         model.GatewayPix,
		ProviderRef:  firstNonEmpty(charge.TransactionToken.String(), charge.ID.String()),
		SecondaryRef: charge.MovementID.String(),
		Status:       charge.Status,
		QRCodeImage:  charge.QRCodeImage,
		EMV:          firstNonEmpty(charge.EMV, charge.QRCode),
		Raw:          body,
	}
	if charge.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, charge.ExpiresAt); err == nil {
			snapshot.ExpiresAt = &t
		}
	}
	return snapshot, nil
}

var _ outbound.ChargeGatewayPort = (*PixGateway)(nil)
