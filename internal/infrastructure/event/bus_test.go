package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/proxima/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	base := shared.NewBaseDomainEvent(eventType, "Test", uuid.New())
	return &base
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers events to matching handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"invoice.finalized"}}
		bus.Subscribe(handler)

		err := bus.Publish(ctx, newTestEvent("invoice.finalized"))
		require.NoError(t, err)
		assert.Len(t, handler.received, 1)
	})

	t.Run("does not deliver events of other types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"invoice.finalized"}}
		bus.Subscribe(handler)

		err := bus.Publish(ctx, newTestEvent("payment.recorded"))
		require.NoError(t, err)
		assert.Empty(t, handler.received)
	})

	t.Run("handler with no event types receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		err := bus.Publish(ctx,
			newTestEvent("invoice.finalized"),
			newTestEvent("payment.recorded"),
		)
		require.NoError(t, err)
		assert.Len(t, handler.received, 2)
	})

	t.Run("failing handler does not fail publish", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{"stock.adjusted"}, err: errors.New("boom")}
		healthy := &recordingHandler{types: []string{"stock.adjusted"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(ctx, newTestEvent("stock.adjusted"))
		require.NoError(t, err)
		assert.Len(t, healthy.received, 1)
	})

	t.Run("panicking handler does not crash the bus", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(&recordingHandler{types: []string{"stock.adjusted"}, panics: true})

		err := bus.Publish(ctx, newTestEvent("stock.adjusted"))
		require.NoError(t, err)
	})
}
