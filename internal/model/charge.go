package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GatewayKind identifies a payment gateway variant.
type GatewayKind string

const (
	GatewayLinkCheckout GatewayKind = "linkcheckout"
	GatewayPix          GatewayKind = "pix"
)

// AllGatewayKinds lists every supported gateway variant.
var AllGatewayKinds = []GatewayKind{GatewayLinkCheckout, GatewayPix}

// String returns the string representation of the kind.
func (k GatewayKind) String() string {
	return string(k)
}

// IsValid checks if the kind is supported.
func (k GatewayKind) IsValid() bool {
	return k == GatewayLinkCheckout || k == GatewayPix
}

// ParseGatewayKind parses a path or config value into a GatewayKind.
func ParseGatewayKind(s string) (GatewayKind, error) {
	k := GatewayKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown gateway %q", s)
	}
	return k, nil
}

// ChargeState is the canonical state of a charge artifact.
type ChargeState string

const (
	ChargeStateCreated ChargeState = "created"
	ChargeStatePending ChargeState = "pending"
	ChargeStatePaid    ChargeState = "paid"
	ChargeStateExpired ChargeState = "expired"
)

// IsTerminal returns true once the engine stops acting on the artifact.
func (s ChargeState) IsTerminal() bool {
	return s == ChargeStatePaid || s == ChargeStateExpired
}

// ChargeArtifact is the provider-hosted payment artifact attached to an order.
// There is at most one per (order, kind); a new charge overwrites it in place.
type ChargeArtifact struct {
	ID             uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID   `json:"order_id" gorm:"type:uuid;not null;uniqueIndex:idx_artifact_order_kind"`
	Kind           GatewayKind `json:"kind" gorm:"not null;uniqueIndex:idx_artifact_order_kind;uniqueIndex:idx_artifact_ref"`
	ProviderRef    string      `json:"provider_ref" gorm:"not null;uniqueIndex:idx_artifact_ref"`
	SecondaryRef   string      `json:"secondary_ref,omitempty" gorm:"index"`
	LinkURL        string      `json:"link_url,omitempty"`
	SmartURL       string      `json:"smart_checkout_url,omitempty"`
	QRCodeImage    string      `json:"qr_code_image,omitempty" gorm:"type:text"`
	EMV            string      `json:"emv,omitempty" gorm:"type:text"`
	ProviderStatus string      `json:"provider_status"`
	State          ChargeState `json:"state" gorm:"not null;default:created"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty"`
	LastRawPayload string      `json:"-" gorm:"type:text"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (ChargeArtifact) TableName() string {
	return "charge_artifacts"
}

// RedirectTarget returns the richest checkout URL known for the artifact.
func (a *ChargeArtifact) RedirectTarget() string {
	if a.SmartURL != "" {
		return a.SmartURL
	}
	return a.LinkURL
}

// Merge copies provider data from a snapshot onto the artifact.
// Empty snapshot fields never erase stored values.
func (a *ChargeArtifact) Merge(s *ChargeSnapshot) {
	if s == nil {
		return
	}
	if s.ProviderRef != "" {
		a.ProviderRef = s.ProviderRef
	}
	if s.SecondaryRef != "" {
		a.SecondaryRef = s.SecondaryRef
	}
	if s.LinkURL != "" {
		a.LinkURL = s.LinkURL
	}
	if s.SmartCheckoutURL != "" {
		a.SmartURL = s.SmartCheckoutURL
	}
	if s.QRCodeImage != "" {
		a.QRCodeImage = s.QRCodeImage
	}
	if s.EMV != "" {
		a.EMV = s.EMV
	}
	if s.Status != "" {
		a.ProviderStatus = s.Status
	}
	if s.ExpiresAt != nil {
		a.ExpiresAt = s.ExpiresAt
	}
	if len(s.Raw) > 0 {
		a.LastRawPayload = string(s.Raw)
	}
}

// ChargeSnapshot is a provider response or notification normalized across variants.
type ChargeSnapshot struct {
	Kind             GatewayKind
	ProviderRef      string
	SecondaryRef     string
	Status           string
	LinkURL          string
	SmartCheckoutURL string
	QRCodeImage      string
	EMV              string
	ExpiresAt        *time.Time
	Intent           *CollectedIntent
	Raw              []byte
}

// HasDisplayData reports whether the snapshot carries something to show the customer.
func (s *ChargeSnapshot) HasDisplayData() bool {
	switch s.Kind {
	case GatewayPix:
		return s.QRCodeImage != "" || s.EMV != ""
	default:
		return s.LinkURL != "" || s.SmartCheckoutURL != ""
	}
}

// CollectedIntent is customer data gathered by the provider's hosted flow.
type CollectedIntent struct {
	Name     string
	Email    string
	Phone    string
	Document string
	Address  CollectedAddress
}

// CollectedAddress is the address part of a CollectedIntent.
type CollectedAddress struct {
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	Postcode     string
	Country      string
}

// IsEmpty reports whether the provider collected anything usable.
func (i *CollectedIntent) IsEmpty() bool {
	if i == nil {
		return true
	}
	return i.Name == "" && i.Email == "" && i.Phone == "" && i.Document == "" && i.Address == CollectedAddress{}
}

// GatewaySettings is the per-gateway configuration consumed by the engine.
type GatewaySettings struct {
	Token               string
	WebhookSecret       string
	MaxInstallments     int
	InstallmentRule     string
	ForwardFees         bool
	PixExpiration       time.Duration
	Description         string
	InternalDescription string
}

// HasCredential reports whether an API token is configured.
func (s GatewaySettings) HasCredential() bool {
	return strings.TrimSpace(s.Token) != ""
}

// PushEnabled reports whether webhooks authenticate with a shared secret.
// Polling is suppressed when push is enabled.
func (s GatewaySettings) PushEnabled() bool {
	return strings.TrimSpace(s.WebhookSecret) != ""
}
