package paymenthttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/domain/charge"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/inbound"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/logger"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/metrics"
	"go.uber.org/zap"
)

// ChargeHandler handles charge HTTP requests.
type ChargeHandler struct {
	domain  charge.ChargeDomain
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewChargeHandler creates a new charge handler.
func NewChargeHandler(domain charge.ChargeDomain, m *metrics.Metrics, log *zap.Logger) *ChargeHandler {
	return &ChargeHandler{domain: domain, metrics: m, logger: log.Named("charge_http")}
}

// RegisterRoutes registers storefront charge routes.
func (h *ChargeHandler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("/:id/charges/:kind", h.CreateCharge)
	}
}

// RegisterAdminRoutes registers operator routes. The caller applies authentication.
func (h *ChargeHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("/:id/charges/:kind/refresh", h.RefreshCharge)
	}
}

// CreateCharge handles POST /orders/:id/charges/:kind.
//
//	@Summary	Create a provider charge for an order
//	@Tags		Charges
//	@Produce	json
//	@Param		id		path		string	true	"Order ID"
//	@Param		kind	path		string	true	"Gateway"	Enums(linkcheckout, pix)
//	@Success	201		{object}	model.CreateChargeResponse
//	@Failure	400		{object}	model.ErrorResponse
//	@Failure	404		{object}	model.ErrorResponse
//	@Failure	409		{object}	model.ErrorResponse
//	@Failure	502		{object}	model.ErrorResponse
//	@Failure	503		{object}	model.ErrorResponse
//	@Router		/api/v1/orders/{id}/charges/{kind} [post]
func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	orderID, kind, ok := parseChargePath(c)
	if !ok {
		return
	}

	result, err := h.domain.CreateCharge(c.Request.Context(), orderID, kind)
	if err != nil {
		h.metrics.RecordChargeCreated(kind.String(), "failure")
		logger.FromContextOr(c.Request.Context(), h.logger).Warn("create charge failed",
			zap.String("order_id", orderID.String()),
			zap.String("gateway", kind.String()),
			zap.Error(err))
		handleChargeError(c, err)
		return
	}

	h.metrics.RecordChargeCreated(kind.String(), "success")
	c.JSON(http.StatusCreated, model.CreateChargeResponse{RedirectURL: result.RedirectURL})
}

// RefreshCharge handles POST /admin/orders/:id/charges/:kind/refresh.
//
//	@Summary	Consult the provider and reconcile an order
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Order ID"
//	@Param		kind	path		string	true	"Gateway"	Enums(linkcheckout, pix)
//	@Success	202		{object}	model.RefreshResponse
//	@Failure	400		{object}	model.ErrorResponse
//	@Failure	401		{object}	model.ErrorResponse
//	@Router		/api/v1/admin/orders/{id}/charges/{kind}/refresh [post]
func (h *ChargeHandler) RefreshCharge(c *gin.Context) {
	orderID, kind, ok := parseChargePath(c)
	if !ok {
		return
	}

	// Failures are recorded as order notes by the domain; the operator
	// always gets 202 once the path is valid.
	if err := h.domain.Refresh(c.Request.Context(), orderID, kind); err != nil {
		logger.FromContextOr(c.Request.Context(), h.logger).Warn("manual refresh failed",
			zap.String("order_id", orderID.String()),
			zap.String("gateway", kind.String()),
			zap.Error(err))
	}

	c.JSON(http.StatusAccepted, model.RefreshResponse{Message: "Charge refresh requested"})
}

func parseChargePath(c *gin.Context) (uuid.UUID, model.GatewayKind, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    "invalid_id",
			Message: "Invalid order ID",
		})
		return uuid.Nil, "", false
	}

	kind, err := model.ParseGatewayKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    "invalid_gateway",
			Message: "Unknown payment gateway",
		})
		return uuid.Nil, "", false
	}

	return orderID, kind, true
}

// Compile-time check
var _ inbound.ChargeHttpPort = (*ChargeHandler)(nil)
