package inbound

import "github.com/gin-gonic/gin"

// ChargeHttpPort defines HTTP handler interface for charge operations.
type ChargeHttpPort interface {
	// CreateCharge handles POST /orders/:id/charges/:kind
	// Creates a provider charge and returns where the customer goes next.
	CreateCharge(c *gin.Context)

	// RefreshCharge handles POST /admin/orders/:id/charges/:kind/refresh
	// Consults the provider and reconciles the order (operator only).
	RefreshCharge(c *gin.Context)
}

// WebhookHttpPort defines HTTP handler interface for provider notifications.
type WebhookHttpPort interface {
	// HandleLinkCheckoutWebhook handles POST|PUT /webhooks/linkcheckout
	HandleLinkCheckoutWebhook(c *gin.Context)

	// HandlePixWebhook handles POST|PUT /webhooks/pix
	HandlePixWebhook(c *gin.Context)
}
