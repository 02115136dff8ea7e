package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a store order.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusFailed    OrderStatus = "failed"
)

// String returns the string representation of the status.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid order status.
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsPaid reports whether a payment has already been completed for the order.
// Refunded orders were paid before being refunded.
func (s OrderStatus) IsPaid() bool {
	return s == OrderStatusPaid || s == OrderStatusCompleted || s == OrderStatusRefunded
}

// IsClosed reports whether the order can no longer be cancelled.
func (s OrderStatus) IsClosed() bool {
	return s == OrderStatusCancelled || s.IsPaid()
}

// CanTransitionTo checks if a transition from the current status to target is valid.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, a := range orderTransitions[s] {
		if a == target {
			return true
		}
	}
	return false
}

// StatusesAllowingTransitionTo returns every status that may move to target.
func StatusesAllowingTransitionTo(target OrderStatus) []OrderStatus {
	var from []OrderStatus
	for _, s := range orderStatusOrder {
		if s.CanTransitionTo(target) {
			from = append(from, s)
		}
	}
	return from
}

var orderStatusOrder = []OrderStatus{
	OrderStatusCreated,
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefunded,
	OrderStatusFailed,
}

// orderTransitions defines valid state transitions.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:   {OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusPaid:      {OrderStatusCompleted, OrderStatusRefunded},
	OrderStatusCompleted: {OrderStatusRefunded},
	OrderStatusCancelled: {},
	OrderStatusRefunded:  {},
	OrderStatusFailed:    {OrderStatusPending, OrderStatusPaid, OrderStatusCancelled},
}

// Order is the subset of a store order read and mutated by the payment engine.
type Order struct {
	ID          uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	Number      string            `json:"number" gorm:"uniqueIndex;not null"`
	CustomerID  *uuid.UUID        `json:"customer_id,omitempty" gorm:"type:uuid;index"`
	CartToken   string            `json:"-" gorm:"index"`
	Status      OrderStatus       `json:"status" gorm:"not null;default:created;index"`
	Currency    string            `json:"currency" gorm:"not null;default:BRL"`
	Total       decimal.Decimal   `json:"total" gorm:"type:numeric(12,2);not null"`
	Billing     BillingDetails    `json:"billing" gorm:"embedded;embeddedPrefix:billing_"`
	BillingMeta map[string]string `json:"billing_meta,omitempty" gorm:"serializer:json;type:jsonb"`
	PaidAt      *time.Time        `json:"paid_at,omitempty"`
	PaymentRef  string            `json:"payment_ref,omitempty"`
	Lines       []OrderLine       `json:"lines,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time         `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Order) TableName() string {
	return "orders"
}

// BillingDetails holds the customer's billing identity and address.
type BillingDetails struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Company      string `json:"company,omitempty"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address1     string `json:"address_1"`
	Address2     string `json:"address_2,omitempty"`
	Number       string `json:"number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

// FullName joins first and last name.
func (b BillingDetails) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(b.FirstName) + " " + strings.TrimSpace(b.LastName))
}

// HasAddress reports whether any address line was collected.
func (b BillingDetails) HasAddress() bool {
	for _, v := range []string{b.Address1, b.Address2, b.City, b.State, b.Postcode} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// OrderLine is a purchased product line.
type OrderLine struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `json:"product_id" gorm:"type:uuid;not null"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`
	StockReduced bool            `json:"stock_reduced" gorm:"default:false"`
}

// TableName returns the table name for GORM.
func (OrderLine) TableName() string {
	return "order_lines"
}

// OrderNote is an append-only audit entry on an order.
type OrderNote struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for GORM.
func (OrderNote) TableName() string {
	return "order_notes"
}

// Product holds the stock counter decremented when a charge is created.
// A nil Stock means stock is not managed for the product.
type Product struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SKU       string    `json:"sku" gorm:"index"`
	Name      string    `json:"name"`
	Stock     *int      `json:"stock,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Product) TableName() string {
	return "products"
}

// CartItem is a line in a customer's active cart.
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CartToken string    `json:"cart_token" gorm:"not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for GORM.
func (CartItem) TableName() string {
	return "cart_items"
}
