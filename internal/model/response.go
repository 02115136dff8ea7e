package model

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// WebhookResponse is returned to the provider after a delivery is accepted.
type WebhookResponse struct {
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}

// CreateChargeResponse is returned to the storefront after a charge is created.
type CreateChargeResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// RefreshResponse acknowledges a manual refresh request.
type RefreshResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports dependency health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}
