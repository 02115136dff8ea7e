package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
)

// LinkCheckoutGateway implements ChargeGatewayPort for hosted payment links.
type LinkCheckoutGateway struct {
	client *Client
}

// NewLinkCheckoutGateway creates a new LinkCheckout gateway adapter.
func NewLinkCheckoutGateway(client *Client) *LinkCheckoutGateway {
	return &LinkCheckoutGateway{client: client}
}

// Kind returns the gateway kind.
func (g *LinkCheckoutGateway) Kind() model.GatewayKind {
	return model.GatewayLinkCheckout
}

// Create creates a payment link.
func (g *LinkCheckoutGateway) Create(ctx context.Context, payload map[string]any) (*model.ChargeSnapshot, error) {
	resp, err := g.client.Do(ctx, "create", http.MethodPost, "/", payload)
	if err != nil {
		return nil, err
	}
	return decodeLinkCheckout(resp.Body)
}

// Consult fetches the current state of a payment link.
func (g *LinkCheckoutGateway) Consult(ctx context.Context, ref string) (*model.ChargeSnapshot, error) {
	resp, err := g.client.Do(ctx, "consult", http.MethodGet, "/"+url.PathEscape(ref), nil)
	if err != nil {
		return nil, err
	}
	return decodeLinkCheckout(resp.Body)
}

// ParseNotification decodes a webhook body, which shares the consult schema.
func (g *LinkCheckoutGateway) ParseNotification(body []byte) (*model.ChargeSnapshot, error) {
	return decodeLinkCheckout(body)
}

type linkCheckoutLink struct {
	ID               flexString          `json:"id"`
	LinkURL          string              `json:"link_url"`
	SmartCheckoutURL string              `json:"smart_checkout_url"`
	Status           string              `json:"status"`
	PaymentIntent    *linkCheckoutIntent `json:"payment_intent"`
}

type linkCheckoutIntent struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
	Address  struct {
		Street       string `json:"street"`
		Number       string `json:"number"`
		Complement   string `json:"complement"`
		Neighborhood string `json:"neighborhood"`
		City         string `json:"city"`
		State        string `json:"state"`
		Postcode     string `json:"postcode"`
		Country      string `json:"country"`
	} `json:"address"`
}

func decodeLinkCheckout(body []byte) (*model.ChargeSnapshot, error) {
	var link linkCheckoutLink
	if err := json.Unmarshal(body, &link); err != nil {
		return nil, &apperrors.DomainError{Message: fmt.Sprintf("%s: %v", invalidResponse, err)}
	}

	snapshot := &model.ChargeSnapshot{
		Kind:             model.GatewayLinkCheckout,
		ProviderRef:      link.ID.String(),
		Status:           link.Status,
		LinkURL:          link.LinkURL,
		SmartCheckoutURL: link.SmartCheckoutURL,
		Raw:              body,
	}
	if pi := link.PaymentIntent; pi != nil {
		snapshot.Intent = &model.CollectedIntent{
			Name:     pi.Name,
			Email:    pi.Email,
			Phone:    pi.Phone,
			Document: pi.Document,
			Address: model.CollectedAddress{
				Street:       pi.Address.Street,
				Number:       pi.Address.Number,
				Complement:   pi.Address.Complement,
				Neighborhood: pi.Address.Neighborhood,
				City:         pi.Address.City,
				State:        pi.Address.State,
				Postcode:     pi.Address.Postcode,
				Country:      pi.Address.Country,
			},
		}
	}
	return snapshot, nil
}

var _ outbound.ChargeGatewayPort = (*LinkCheckoutGateway)(nil)
