package charge

import (
	"fmt"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/shopspring/decimal"
)

const (
	// MaxDescriptionLength is the provider ceiling for customer-facing descriptions.
	MaxDescriptionLength = 25
	// MaxInternalDescriptionLength is the Pix ceiling for the internal description.
	MaxInternalDescriptionLength = 12

	brazilCountryCode   = "55"
	nationalPhoneDigits = 11
)

// PayloadInput is everything a provider request body is derived from.
type PayloadInput struct {
	Order           *model.Order
	Settings        model.GatewaySettings
	StoreName       string
	ReturnURL       string
	NotificationURL string
	Now             time.Time
}

// BuildPayload builds the create request body for a gateway variant.
func BuildPayload(kind model.GatewayKind, in PayloadInput) (map[string]any, error) {
	switch kind {
	case model.GatewayLinkCheckout:
		return BuildLinkCheckoutPayload(in), nil
	case model.GatewayPix:
		return BuildPixPayload(in), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotAvailable, kind)
	}
}

// BuildLinkCheckoutPayload builds the payment link request body.
func BuildLinkCheckoutPayload(in PayloadInput) map[string]any {
	order := in.Order
	billing := order.Billing

	customer := map[string]any{
		"email": billing.Email,
		"phone": NormalizePhone(billing.Phone),
	}
	// Without an address the customer has not gone through checkout yet; the
	// hosted flow collects identity and it is backfilled on payment.
	if billing.HasAddress() {
		customer["name"] = billing.FullName()
		if kind, doc := ExtractDocument(order.BillingMeta); kind != DocumentUnknown {
			customer["document"] = doc
			customer["document_type"] = string(kind)
		}
	}

	payload := map[string]any{
		"amount":           FormatAmount(order.Total),
		"description":      Truncate(description(in), MaxDescriptionLength),
		"reference":        order.Number,
		"max_installments": ResolveInstallments(in.Settings, order.Total),
		"redirect_url":     in.ReturnURL,
		"notification_url": in.NotificationURL,
		"customer":         customer,
	}
	if in.Settings.ForwardFees {
		payload["pass_fee_to_customer"] = true
	}
	if billing.HasAddress() {
		payload["address"] = map[string]any{
			"street":       billing.Address1,
			"number":       billing.Number,
			"complement":   billing.Address2,
			"neighborhood": billing.Neighborhood,
			"city":         billing.City,
			"state":        billing.State,
			"postcode":     Digits(billing.Postcode),
			"country":      billing.Country,
		}
	}

	return Compact(payload)
}

// BuildPixPayload builds the Pix charge request body.
func BuildPixPayload(in PayloadInput) map[string]any {
	order := in.Order
	billing := order.Billing

	payer := map[string]any{
		"email": billing.Email,
		"phone": NormalizePhone(billing.Phone),
	}
	if billing.HasAddress() {
		payer["name"] = billing.FullName()
		if kind, doc := ClassifyDocument(order.BillingMeta[genericDocumentKey]); kind != DocumentUnknown {
			payer["document"] = doc
		}
	}

	internal := in.Settings.InternalDescription
	if internal == "" {
		internal = "Order " + order.Number
	}

	payload := map[string]any{
		"value":                FormatAmount(order.Total),
		"description":          Truncate(description(in), MaxDescriptionLength),
		"internal_description": Truncate(internal, MaxInternalDescriptionLength),
		"external_reference":   order.Number,
		"notification_url":     in.NotificationURL,
		"payer":                payer,
	}
	if in.Settings.PixExpiration > 0 {
		payload["expires_at"] = in.Now.Add(in.Settings.PixExpiration).UTC().Format(time.RFC3339)
	}

	return Compact(payload)
}

func description(in PayloadInput) string {
	if in.Settings.Description != "" {
		return in.Settings.Description
	}
	return fmt.Sprintf("Order #%s - %s", in.Order.Number, in.StoreName)
}

// FormatAmount renders an amount with exactly two fraction digits.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Truncate cuts s to at most max characters.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// NormalizePhone keeps digits and strips a leading country code only when the
// number is longer than a national number, so area code 55 survives.
func NormalizePhone(phone string) string {
	digits := Digits(phone)
	if len(digits) > nationalPhoneDigits && digits[:len(brazilCountryCode)] == brazilCountryCode {
		return digits[len(brazilCountryCode):]
	}
	return digits
}

// ResolveInstallments returns the installment count offered for an order total.
// A configured rule is a govaluate expression over "total"; a rule that fails
// to evaluate yields zero, which omits the field.
func ResolveInstallments(settings model.GatewaySettings, total decimal.Decimal) int {
	if settings.InstallmentRule == "" {
		return settings.MaxInstallments
	}

	expr, err := govaluate.NewEvaluableExpression(settings.InstallmentRule)
	if err != nil {
		return 0
	}
	value, _ := total.Float64()
	result, err := expr.Evaluate(map[string]interface{}{"total": value})
	if err != nil {
		return 0
	}

	switch v := result.(type) {
	case float64:
		if v < 0 {
			return 0
		}
		return int(v)
	case bool:
		if v {
			return settings.MaxInstallments
		}
		return 0
	default:
		return 0
	}
}

// Compact drops nil, empty and zero entries, recursing into nested objects.
func Compact(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
		case int:
			if val == 0 {
				continue
			}
		case bool:
			if !val {
				continue
			}
		case map[string]any:
			nested := Compact(val)
			if len(nested) == 0 {
				continue
			}
			v = nested
		}
		out[k] = v
	}
	return out
}
