package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"gorm.io/gorm"
)

// orderNoteAdapter implements outbound.OrderNotePort.
type orderNoteAdapter struct {
	db *gorm.DB
}

// NewOrderNoteAdapter creates a new order note database adapter.
func NewOrderNoteAdapter(db *gorm.DB) outbound.OrderNotePort {
	return &orderNoteAdapter{db: db}
}

func (a *orderNoteAdapter) AddNote(ctx context.Context, orderID uuid.UUID, body string) error {
	note := &model.OrderNote{
		ID:        uuid.New(),
		OrderID:   orderID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := a.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("add order note: %w", err)
	}
	return nil
}

// Compile-time check
var _ outbound.OrderNotePort = (*orderNoteAdapter)(nil)
