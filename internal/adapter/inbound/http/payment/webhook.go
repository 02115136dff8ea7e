package paymenthttp

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/houi19lb/Gstore-theme-sub001/internal/domain/charge"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/inbound"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/logger"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/metrics"
	"go.uber.org/zap"
)

// WebhookSecretHeader carries the shared webhook secret.
const WebhookSecretHeader = "X-Gstore-Webhook"

// maxWebhookBody bounds the size of a notification body.
const maxWebhookBody = 1 << 20

// WebhookHandler handles provider notification HTTP requests.
type WebhookHandler struct {
	domain  charge.ChargeDomain
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(domain charge.ChargeDomain, m *metrics.Metrics, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{domain: domain, metrics: m, logger: log.Named("webhook")}
}

// RegisterRoutes registers webhook routes.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/linkcheckout", h.HandleLinkCheckoutWebhook)
		webhooks.PUT("/linkcheckout", h.HandleLinkCheckoutWebhook)
		webhooks.POST("/pix", h.HandlePixWebhook)
		webhooks.PUT("/pix", h.HandlePixWebhook)
	}
}

// HandleLinkCheckoutWebhook handles POST|PUT /webhooks/linkcheckout.
//
//	@Summary	Receive a LinkCheckout notification
//	@Tags		Webhooks
//	@Accept		json
//	@Produce	json
//	@Param		X-Gstore-Webhook	header		string	false	"Shared webhook secret"
//	@Param		token				query		string	false	"Shared webhook secret"
//	@Success	200					{object}	model.WebhookResponse
//	@Failure	400					{object}	model.ErrorResponse
//	@Failure	401					{object}	model.ErrorResponse
//	@Failure	404					{object}	model.ErrorResponse
//	@Router		/webhooks/linkcheckout [post]
func (h *WebhookHandler) HandleLinkCheckoutWebhook(c *gin.Context) {
	h.handle(c, model.GatewayLinkCheckout)
}

// HandlePixWebhook handles POST|PUT /webhooks/pix.
//
//	@Summary	Receive a Pix notification
//	@Tags		Webhooks
//	@Accept		json
//	@Produce	json
//	@Param		X-Gstore-Webhook	header		string	false	"Shared webhook secret"
//	@Param		token				query		string	false	"Shared webhook secret"
//	@Success	200					{object}	model.WebhookResponse
//	@Failure	400					{object}	model.ErrorResponse
//	@Failure	401					{object}	model.ErrorResponse
//	@Failure	404					{object}	model.ErrorResponse
//	@Router		/webhooks/pix [post]
func (h *WebhookHandler) HandlePixWebhook(c *gin.Context) {
	h.handle(c, model.GatewayPix)
}

func (h *WebhookHandler) handle(c *gin.Context, kind model.GatewayKind) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.metrics.RecordWebhookDelivery(kind.String(), http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    "invalid_payload",
			Message: "Failed to read request body",
		})
		return
	}

	token := c.GetHeader(WebhookSecretHeader)
	if token == "" {
		token = c.Query("token")
	}

	result, err := h.domain.HandleWebhook(c.Request.Context(), kind, charge.Notification{
		Token: token,
		Body:  body,
	})
	if err != nil {
		status := handleWebhookError(c, err)
		h.metrics.RecordWebhookDelivery(kind.String(), status)
		if status >= http.StatusInternalServerError {
			logger.FromContextOr(c.Request.Context(), h.logger).Error("webhook processing failed",
				zap.String("gateway", kind.String()),
				zap.Error(err))
		}
		return
	}

	h.metrics.RecordWebhookDelivery(kind.String(), http.StatusOK)
	if result.Reconcile != nil {
		h.metrics.RecordReconcile(kind.String(), result.Reconcile.Action.String(), result.Reconcile.Transitioned)
	}

	c.JSON(http.StatusOK, model.WebhookResponse{
		Message: "Notification processed",
		OrderID: result.OrderID.String(),
	})
}

// Compile-time check
var _ inbound.WebhookHttpPort = (*WebhookHandler)(nil)
