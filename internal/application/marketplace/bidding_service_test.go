package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

func inr(amount int64) valueobject.Money {
	return valueobject.NewMoneyINR(decimal.NewFromInt(amount))
}

func newListedServiceBatch(t *testing.T, farmerID uuid.UUID) *marketplace.Batch {
	t.Helper()
	batch := newServiceBatch(t, farmerID)
	require.NoError(t, batch.List())
	batch.ClearDomainEvents()
	return batch
}

func TestBiddingServiceOpenBidding(t *testing.T) {
	ctx := context.Background()
	farmerID := uuid.New()

	t.Run("seller opens window", func(t *testing.T) {
		batch := newListedServiceBatch(t, farmerID)
		batchRepo := new(MockBatchRepository)
		service := NewBiddingService(batchRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		batchRepo.On("SaveWithLockAndEvents", ctx, batch, mock.Anything).Return(nil)

		resp, err := service.OpenBidding(ctx, farmerID, batch.ID, OpenBiddingRequest{
			ClosesAt: time.Now().Add(24 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, marketplace.BatchStatusBidding.String(), resp.Status)
	})

	t.Run("non-seller cannot open", func(t *testing.T) {
		batch := newListedServiceBatch(t, farmerID)
		batchRepo := new(MockBatchRepository)
		service := NewBiddingService(batchRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)

		_, err := service.OpenBidding(ctx, uuid.New(), batch.ID, OpenBiddingRequest{
			ClosesAt: time.Now().Add(24 * time.Hour),
		})
		assert.ErrorIs(t, err, shared.ErrOwnershipMismatch)
	})

	t.Run("omitted closing time gets the default window", func(t *testing.T) {
		batch := newListedServiceBatch(t, farmerID)
		batchRepo := new(MockBatchRepository)
		service := NewBiddingServiceWithConfig(batchRepo, BiddingWindowConfig{
			MinWindow:     time.Hour,
			DefaultWindow: 48 * time.Hour,
		})

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		batchRepo.On("SaveWithLockAndEvents", ctx, batch, mock.Anything).Return(nil)

		resp, err := service.OpenBidding(ctx, farmerID, batch.ID, OpenBiddingRequest{})
		require.NoError(t, err)
		require.NotNil(t, resp.BiddingClosesAt)
		assert.WithinDuration(t, time.Now().Add(48*time.Hour), *resp.BiddingClosesAt, time.Minute)
	})

	t.Run("window shorter than minimum is rejected", func(t *testing.T) {
		batch := newListedServiceBatch(t, farmerID)
		batchRepo := new(MockBatchRepository)
		service := NewBiddingServiceWithConfig(batchRepo, BiddingWindowConfig{
			MinWindow:     time.Hour,
			DefaultWindow: 48 * time.Hour,
		})

		_, err := service.OpenBidding(ctx, farmerID, batch.ID, OpenBiddingRequest{
			ClosesAt: time.Now().Add(10 * time.Minute),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CLOSING_DATE", domainErr.Code)
	})
}

func TestBiddingServicePlaceBid(t *testing.T) {
	ctx := context.Background()
	farmerID := uuid.New()

	biddingBatch := func(t *testing.T) *marketplace.Batch {
		batch := newListedServiceBatch(t, farmerID)
		require.NoError(t, batch.OpenBidding(time.Now().Add(24*time.Hour), time.Now()))
		batch.ClearDomainEvents()
		return batch
	}

	t.Run("places bid on open window", func(t *testing.T) {
		batch := biddingBatch(t)
		bidderID := uuid.New()
		batchRepo := new(MockBatchRepository)
		service := NewBiddingService(batchRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		batchRepo.On("SaveWithLockAndEvents", ctx, batch, mock.Anything).Return(nil)

		resp, err := service.PlaceBid(ctx, bidderID, batch.ID, PlaceBidRequest{
			AmountPerKg: decimal.NewFromInt(30),
		})
		require.NoError(t, err)
		assert.Equal(t, bidderID, resp.BidderID)
		assert.Equal(t, marketplace.BidStatusPending.String(), resp.Status)
	})

	t.Run("bid on closed window fails without saving", func(t *testing.T) {
		batch := newListedServiceBatch(t, farmerID)
		batchRepo := new(MockBatchRepository)
		service := NewBiddingService(batchRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)

		_, err := service.PlaceBid(ctx, uuid.New(), batch.ID, PlaceBidRequest{
			AmountPerKg: decimal.NewFromInt(30),
		})
		assert.ErrorIs(t, err, shared.ErrBiddingClosed)
		batchRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBiddingCloseoutService(t *testing.T) {
	ctx := context.Background()
	farmerID := uuid.New()

	dueBatch := func(t *testing.T, withBid bool) *marketplace.Batch {
		batch := newListedServiceBatch(t, farmerID)
		opened := time.Now().Add(-48 * time.Hour)
		require.NoError(t, batch.OpenBidding(opened.Add(24*time.Hour), opened))
		if withBid {
			_, err := batch.PlaceBid(uuid.New(), inr(30), opened.Add(time.Hour))
			require.NoError(t, err)
		}
		batch.ClearDomainEvents()
		return batch
	}

	t.Run("closes due windows and counts winners", func(t *testing.T) {
		withWinner := dueBatch(t, true)
		withoutBids := dueBatch(t, false)

		batchRepo := new(MockBatchRepository)
		service := NewBiddingCloseoutService(batchRepo, zap.NewNop())

		batchRepo.On("FindDueForBiddingClose", ctx, mock.AnythingOfType("time.Time")).
			Return([]*marketplace.Batch{withWinner, withoutBids}, nil)
		batchRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*marketplace.Batch"), mock.Anything).Return(nil)

		stats, err := service.CloseDue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, stats.TotalDue)
		assert.Equal(t, 2, stats.Closed)
		assert.Equal(t, 1, stats.WithWinner)
		assert.Equal(t, 0, stats.Failed)
		assert.Equal(t, marketplace.BatchStatusInTransaction, withWinner.Status)
		assert.Equal(t, marketplace.BatchStatusListed, withoutBids.Status)
	})

	t.Run("concurrent close is skipped not failed", func(t *testing.T) {
		batch := dueBatch(t, true)

		batchRepo := new(MockBatchRepository)
		service := NewBiddingCloseoutService(batchRepo, zap.NewNop())

		batchRepo.On("FindDueForBiddingClose", ctx, mock.AnythingOfType("time.Time")).
			Return([]*marketplace.Batch{batch}, nil)
		batchRepo.On("SaveWithLockAndEvents", ctx, batch, mock.Anything).Return(shared.ErrConcurrencyConflict)

		stats, err := service.CloseDue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, stats.TotalDue)
		assert.Equal(t, 0, stats.Closed)
		assert.Equal(t, 0, stats.Failed)
	})

	t.Run("empty pass", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		service := NewBiddingCloseoutService(batchRepo, zap.NewNop())

		batchRepo.On("FindDueForBiddingClose", ctx, mock.AnythingOfType("time.Time")).
			Return([]*marketplace.Batch{}, nil)

		stats, err := service.CloseDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalDue)
	})
}
