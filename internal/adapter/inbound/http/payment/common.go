package paymenthttp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/houi19lb/Gstore-theme-sub001/internal/domain/charge"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
)

// handleWebhookError maps notification errors to HTTP responses and returns the status written.
func handleWebhookError(c *gin.Context, err error) int {
	var statusCode int
	var errorCode string
	var message string

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errorCode = "unauthorized"
		message = "Webhook authentication failed"

	case errors.Is(err, charge.ErrInvalidPayload):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_payload"
		message = "Invalid notification payload"

	case errors.Is(err, charge.ErrMissingIdentifier):
		statusCode = http.StatusBadRequest
		errorCode = "missing_identifier"
		message = "Notification has no charge identifier"

	case errors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorCode = "order_not_found"
		message = "Order not found"

	case errors.Is(err, charge.ErrGatewayNotAvailable):
		statusCode = http.StatusServiceUnavailable
		errorCode = "gateway_unavailable"
		message = "Payment gateway not available"

	default:
		statusCode = http.StatusInternalServerError
		errorCode = "internal_error"
		message = "Internal server error"
	}

	c.JSON(statusCode, model.ErrorResponse{
		Code:    errorCode,
		Message: message,
	})
	return statusCode
}

// handleChargeError maps charge domain and provider errors to HTTP responses.
// Provider failures carry the customer-safe message.
func handleChargeError(c *gin.Context, err error) {
	var statusCode int
	var errorCode string
	var message string

	switch {
	case errors.Is(err, charge.ErrOrderNotFound):
		statusCode = http.StatusNotFound
		errorCode = "order_not_found"
		message = "Order not found"

	case errors.Is(err, charge.ErrArtifactNotFound):
		statusCode = http.StatusNotFound
		errorCode = "charge_not_found"
		message = "No charge found for this order"

	case errors.Is(err, charge.ErrOrderNotPayable):
		statusCode = http.StatusConflict
		errorCode = "order_not_payable"
		message = "Order cannot be paid in its current status"

	case errors.Is(err, charge.ErrGatewayNotAvailable):
		statusCode = http.StatusServiceUnavailable
		errorCode = "gateway_unavailable"
		message = "Payment gateway not available"

	case errors.Is(err, charge.ErrMissingDisplayData):
		statusCode = http.StatusBadGateway
		errorCode = "provider_error"
		message = "The payment provider returned no checkout data. Please try again."

	case errors.Is(err, apperrors.ErrConfiguration):
		statusCode = http.StatusServiceUnavailable
		errorCode = "gateway_not_configured"
		message = apperrors.CustomerMessage(err)

	case errors.Is(err, apperrors.ErrTransport), errors.Is(err, apperrors.ErrProviderDomain):
		statusCode = apperrors.GetStatusCode(err)
		errorCode = "provider_error"
		message = apperrors.CustomerMessage(err)

	default:
		statusCode = http.StatusInternalServerError
		errorCode = "internal_error"
		message = "Internal server error"
	}

	c.JSON(statusCode, model.ErrorResponse{
		Code:    errorCode,
		Message: message,
	})
}
