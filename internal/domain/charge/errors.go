package charge

import "errors"

var (
	// ErrOrderNotFound is returned when the order of a charge does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderNotPayable is returned when the order status does not accept a new charge.
	ErrOrderNotPayable = errors.New("order cannot be paid in its current status")

	// ErrGatewayNotAvailable is returned when no client is registered for a gateway kind.
	ErrGatewayNotAvailable = errors.New("gateway not available")

	// ErrArtifactNotFound is returned when an order has no charge artifact for the gateway.
	ErrArtifactNotFound = errors.New("charge artifact not found")

	// ErrMissingIdentifier is returned when a notification carries no lookup key.
	ErrMissingIdentifier = errors.New("notification has no charge identifier")

	// ErrInvalidPayload is returned when a notification body is not a JSON object.
	ErrInvalidPayload = errors.New("invalid notification payload")

	// ErrMissingDisplayData is returned when the provider returned nothing to show the customer.
	ErrMissingDisplayData = errors.New("provider returned no checkout data")
)
