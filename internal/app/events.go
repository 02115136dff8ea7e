package app

import (
	"context"

	"github.com/houi19lb/Gstore-theme-sub001/internal/domain/charge"
	"github.com/houi19lb/Gstore-theme-sub001/internal/infra/events"
	"go.uber.org/zap"
)

// registerEventHandlers subscribes the audit log to charge domain events.
func registerEventHandlers(bus *events.Bus, zapLog *zap.Logger) {
	audit := zapLog.Named("audit")

	bus.Register(events.NewHandlerFunc(
		[]string{charge.EventPaymentCompleted, charge.EventOrderCancelled},
		func(ctx context.Context, e events.Event) error {
			switch ev := e.(type) {
			case *charge.PaymentCompletedEvent:
				audit.Info("order paid",
					zap.String("order_id", ev.OrderID.String()),
					zap.String("order_number", ev.OrderNumber),
					zap.String("gateway", ev.Gateway.String()),
					zap.String("provider_ref", ev.ProviderRef),
					zap.String("amount", ev.Amount.StringFixed(2)),
					zap.Bool("manual", ev.Manual))
			case *charge.OrderCancelledEvent:
				audit.Info("order cancelled",
					zap.String("order_id", ev.OrderID.String()),
					zap.String("order_number", ev.OrderNumber),
					zap.String("gateway", ev.Gateway.String()),
					zap.String("provider_ref", ev.ProviderRef))
			}
			return nil
		},
	))
}
