package model

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent records an authenticated webhook delivery.
type WebhookEvent struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Gateway     GatewayKind `json:"gateway" gorm:"not null;index"`
	LookupKey   string      `json:"lookup_key" gorm:"index"`
	OrderID     *uuid.UUID  `json:"order_id,omitempty" gorm:"type:uuid;index"`
	Body        string      `json:"body" gorm:"type:text"`
	Processed   bool        `json:"processed" gorm:"default:false"`
	ProcessedAt *time.Time  `json:"processed_at,omitempty"`
	Error       *string     `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TableName returns the table name for GORM.
func (WebhookEvent) TableName() string {
	return "gateway_webhook_events"
}
