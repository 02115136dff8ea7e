package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"gorm.io/gorm"
)

// orderAdapter implements outbound.OrderDatabasePort.
type orderAdapter struct {
	db *gorm.DB
}

// NewOrderAdapter creates a new order database adapter.
func NewOrderAdapter(db *gorm.DB) outbound.OrderDatabasePort {
	return &orderAdapter{db: db}
}

func (a *orderAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := a.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

// TransitionStatus is a compare-and-set on the status column, so concurrent
// callers racing on the same transition see exactly one winner.
func (a *orderAdapter) TransitionStatus(ctx context.Context, id uuid.UUID, to model.OrderStatus, from []model.OrderStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	result := a.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("transition order status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (a *orderAdapter) MarkPaid(ctx context.Context, id uuid.UUID, paymentRef string, paidAt time.Time) (bool, error) {
	result := a.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, model.StatusesAllowingTransitionTo(model.OrderStatusPaid)).
		Updates(map[string]interface{}{
			"status":      model.OrderStatusPaid,
			"payment_ref": paymentRef,
			"paid_at":     paidAt,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("mark order paid: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (a *orderAdapter) UpdateBilling(ctx context.Context, id uuid.UUID, billing model.BillingDetails, meta map[string]string) error {
	order := model.Order{ID: id, Billing: billing, BillingMeta: meta, UpdatedAt: time.Now()}
	err := a.db.WithContext(ctx).
		Model(&order).
		Select(billingColumns).
		Updates(&order).Error
	if err != nil {
		return fmt.Errorf("update order billing: %w", err)
	}
	return nil
}

// billingColumns are written as a whole so struct updates keep empty values.
var billingColumns = []string{
	"billing_first_name", "billing_last_name", "billing_company", "billing_email",
	"billing_phone", "billing_address1", "billing_address2", "billing_number",
	"billing_neighborhood", "billing_city", "billing_state", "billing_postcode",
	"billing_country", "billing_meta", "updated_at",
}

// Compile-time check
var _ outbound.OrderDatabasePort = (*orderAdapter)(nil)
