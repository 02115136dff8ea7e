package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct {
	id        uuid.UUID
	eventType string
}

func (e testEvent) EventID() uuid.UUID     { return e.id }
func (e testEvent) EventType() string      { return e.eventType }
func (e testEvent) OccurredAt() time.Time  { return time.Time{} }
func (e testEvent) AggregateID() uuid.UUID { return e.id }
func (e testEvent) AggregateType() string  { return "order" }

func TestBus_Publish(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls []string
	bus.Register(NewHandlerFunc([]string{"payment.completed"}, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	}))
	bus.Register(NewHandlerFunc([]string{"payment.completed", "order.cancelled"}, func(ctx context.Context, e Event) error {
		calls = append(calls, "second:"+e.EventType())
		return nil
	}))

	err := bus.Publish(context.Background(), testEvent{id: uuid.New(), eventType: "payment.completed"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second:payment.completed"}, calls)

	calls = nil
	assert.NoError(t, bus.Publish(context.Background(), testEvent{id: uuid.New(), eventType: "order.cancelled"}))
	assert.Equal(t, []string{"second:order.cancelled"}, calls)
}

func TestBus_PublishWithoutHandlers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	assert.NoError(t, bus.Publish(context.Background(), testEvent{id: uuid.New(), eventType: "unknown"}))
}

func TestBus_PublishRejectsNonEvents(t *testing.T) {
	bus := NewBus(zap.NewNop())

	assert.Error(t, bus.Publish(context.Background(), "payment.completed"))
}
