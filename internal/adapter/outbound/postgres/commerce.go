package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"gorm.io/gorm"
)

// commerceAdapter implements outbound.CommercePort against the store schema.
type commerceAdapter struct {
	db *gorm.DB
}

// NewCommerceAdapter creates a new commerce adapter.
func NewCommerceAdapter(db *gorm.DB) outbound.CommercePort {
	return &commerceAdapter{db: db}
}

// ReduceStock decrements managed stock once per order line, in one transaction.
func (a *commerceAdapter) ReduceStock(ctx context.Context, order *model.Order) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range order.Lines {
			if line.StockReduced || line.Quantity <= 0 {
				continue
			}
			// Lines flip first so a retried charge never reduces twice.
			res := tx.Model(&model.OrderLine{}).
				Where("id = ? AND stock_reduced = ?", line.ID, false).
				Update("stock_reduced", true)
			if res.Error != nil {
				return fmt.Errorf("mark line %s reduced: %w", line.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			err := tx.Model(&model.Product{}).
				Where("id = ? AND stock IS NOT NULL", line.ProductID).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", line.Quantity),
					"updated_at": time.Now(),
				}).Error
			if err != nil {
				return fmt.Errorf("reduce stock of product %s: %w", line.ProductID, err)
			}
		}
		return nil
	})
}

func (a *commerceAdapter) ClearCart(ctx context.Context, order *model.Order) error {
	if order.CartToken == "" {
		return nil
	}
	err := a.db.WithContext(ctx).
		Where("cart_token = ?", order.CartToken).
		Delete(&model.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Compile-time check
var _ outbound.CommercePort = (*commerceAdapter)(nil)
