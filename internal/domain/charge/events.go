package charge

import (
	"time"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// Event types published by the charge domain.
const (
	EventPaymentCompleted = "payment.completed"
	EventOrderCancelled   = "order.cancelled"
)

// PaymentCompletedEvent is published exactly once per order, by the caller
// whose paid transition won.
type PaymentCompletedEvent struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	Gateway     model.GatewayKind
	ProviderRef string
	Amount      decimal.Decimal
	Manual      bool
	Timestamp   time.Time
}

func (e *PaymentCompletedEvent) EventID() uuid.UUID     { return e.ID }
func (e *PaymentCompletedEvent) EventType() string      { return EventPaymentCompleted }
func (e *PaymentCompletedEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e *PaymentCompletedEvent) AggregateID() uuid.UUID { return e.OrderID }
func (e *PaymentCompletedEvent) AggregateType() string  { return "order" }

// OrderCancelledEvent is published when an expired charge cancels its order.
type OrderCancelledEvent struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	Gateway     model.GatewayKind
	ProviderRef string
	Timestamp   time.Time
}

func (e *OrderCancelledEvent) EventID() uuid.UUID     { return e.ID }
func (e *OrderCancelledEvent) EventType() string      { return EventOrderCancelled }
func (e *OrderCancelledEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e *OrderCancelledEvent) AggregateID() uuid.UUID { return e.OrderID }
func (e *OrderCancelledEvent) AggregateType() string  { return "order" }
