package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/cache"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type saleCompletedTestEvent struct {
	shared.BaseDomainEvent
	SaleNumber string
}

func newSaleCompletedTestEvent() *saleCompletedTestEvent {
	return &saleCompletedTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("sale.completed", "Sale", uuid.New()),
		SaleNumber:      "SL-2025-000001",
	}
}

func TestIdempotentHandlerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers a first-time event", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		event := newSaleCompletedTestEvent()
		inner.On("Handle", mock.Anything, event).Return(nil).Once()

		handler := NewIdempotentHandler(inner, store, zap.NewNop())
		require.NoError(t, handler.Handle(ctx, event))

		inner.AssertExpectations(t)
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsProcessed)
	})

	t.Run("skips a redelivered event", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		event := newSaleCompletedTestEvent()
		inner.On("Handle", mock.Anything, event).Return(nil).Once()

		handler := NewIdempotentHandler(inner, store, zap.NewNop())
		require.NoError(t, handler.Handle(ctx, event))
		require.NoError(t, handler.Handle(ctx, event))

		inner.AssertNumberOfCalls(t, "Handle", 1)
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsDuplicate)
	})

	t.Run("processes anyway when the store errors", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).
			Return(false, errors.New("redis unreachable"))

		inner := new(MockEventHandler)
		event := newSaleCompletedTestEvent()
		inner.On("Handle", mock.Anything, event).Return(nil).Once()

		handler := NewIdempotentHandler(inner, store, zap.NewNop())
		require.NoError(t, handler.Handle(ctx, event))

		inner.AssertExpectations(t)
	})

	t.Run("propagates handler failures", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		event := newSaleCompletedTestEvent()
		inner.On("Handle", mock.Anything, event).Return(errors.New("notification failed"))

		handler := NewIdempotentHandler(inner, store, zap.NewNop())
		err := handler.Handle(ctx, event)
		require.Error(t, err)
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsFailed)
	})

	t.Run("bypasses the store when disabled", func(t *testing.T) {
		store := new(MockIdempotencyStore)

		inner := new(MockEventHandler)
		event := newSaleCompletedTestEvent()
		inner.On("Handle", mock.Anything, event).Return(nil).Twice()

		handler := NewIdempotentHandler(inner, store, zap.NewNop(),
			WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))
		require.NoError(t, handler.Handle(ctx, event))
		require.NoError(t, handler.Handle(ctx, event))

		store.AssertNotCalled(t, "MarkProcessed")
		inner.AssertExpectations(t)
	})
}

func TestIdempotentHandlerEventTypes(t *testing.T) {
	inner := new(MockEventHandler)
	inner.On("EventTypes").Return([]string{"sale.completed", "invoice.issued"})

	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	handler := NewIdempotentHandler(inner, store, zap.NewNop())
	assert.Equal(t, []string{"sale.completed", "invoice.issued"}, handler.EventTypes())
}
