package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
)

// OrderDatabasePort defines the order operations the payment engine needs.
type OrderDatabasePort interface {
	// FindByID finds an order with its lines. Returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// TransitionStatus moves the order to status only if its current status is in from.
	// Returns false when no row matched.
	TransitionStatus(ctx context.Context, id uuid.UUID, to model.OrderStatus, from []model.OrderStatus) (bool, error)

	// MarkPaid sets the order paid if it is not paid yet.
	// Returns false when another caller already completed the payment.
	MarkPaid(ctx context.Context, id uuid.UUID, paymentRef string, paidAt time.Time) (bool, error)

	// UpdateBilling overwrites billing details and metadata.
	UpdateBilling(ctx context.Context, id uuid.UUID, billing model.BillingDetails, meta map[string]string) error
}

// OrderNotePort defines the append-only order audit trail.
type OrderNotePort interface {
	// AddNote appends a note to an order.
	AddNote(ctx context.Context, orderID uuid.UUID, body string) error
}

// CommercePort defines the store side effects of a created charge.
type CommercePort interface {
	// ReduceStock decrements reserved stock for the order lines not reduced yet.
	ReduceStock(ctx context.Context, order *model.Order) error

	// ClearCart empties the cart the order was created from.
	ClearCart(ctx context.Context, order *model.Order) error
}
