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

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// MockBatchRepository is a mock implementation of BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*marketplace.Batch, error) {
	args := m.Called(ctx, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*marketplace.Batch], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*marketplace.Batch]), args.Error(1)
}

func (m *MockBatchRepository) FindByFarmer(ctx context.Context, farmerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*marketplace.Batch], error) {
	args := m.Called(ctx, farmerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*marketplace.Batch]), args.Error(1)
}

func (m *MockBatchRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*marketplace.Batch], error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*marketplace.Batch]), args.Error(1)
}

func (m *MockBatchRepository) FindByStatus(ctx context.Context, status marketplace.BatchStatus, filter shared.Filter) (*shared.Paginated[*marketplace.Batch], error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*marketplace.Batch]), args.Error(1)
}

func (m *MockBatchRepository) FindDueForBiddingClose(ctx context.Context, now time.Time) ([]*marketplace.Batch, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*marketplace.Batch), args.Error(1)
}

func (m *MockBatchRepository) Save(ctx context.Context, batch *marketplace.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) SaveWithLockAndEvents(ctx context.Context, batch *marketplace.Batch, events []shared.DomainEvent) error {
	args := m.Called(ctx, batch, events)
	return args.Error(0)
}

func (m *MockBatchRepository) ExistsByBatchNumber(ctx context.Context, batchNumber string) (bool, error) {
	args := m.Called(ctx, batchNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchRepository) GenerateBatchNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBatchRepository) CountByStatus(ctx context.Context, status marketplace.BatchStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOwnershipHistoryRepository is a mock implementation of OwnershipHistoryRepository
type MockOwnershipHistoryRepository struct {
	mock.Mock
}

func (m *MockOwnershipHistoryRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]trade.OwnershipRecord, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.OwnershipRecord), args.Error(1)
}

func (m *MockOwnershipHistoryRepository) LineageForBatch(ctx context.Context, batchID uuid.UUID) (*trade.Lineage, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Lineage), args.Error(1)
}

func (m *MockOwnershipHistoryRepository) Save(ctx context.Context, record *trade.OwnershipRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockOwnershipHistoryRepository) SaveWithBatch(ctx context.Context, record *trade.OwnershipRecord, batch *marketplace.Batch, events []shared.DomainEvent) error {
	args := m.Called(ctx, record, batch, events)
	return args.Error(0)
}

func newServiceBatch(t *testing.T, farmerID uuid.UUID) *marketplace.Batch {
	t.Helper()
	batch, err := marketplace.NewBatch(farmerID, "KN-2026-000001", "Wheat", "Sharbati",
		decimal.NewFromInt(1000), valueobject.NewMoneyINR(decimal.NewFromInt(25)))
	require.NoError(t, err)
	batch.ClearDomainEvents()
	return batch
}

func TestBatchServiceCreate(t *testing.T) {
	ctx := context.Background()
	farmerID := uuid.New()

	t.Run("creates and saves batch", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		service := NewBatchService(batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("GenerateBatchNumber", ctx).Return("KN-2026-000042", nil)
		batchRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*marketplace.Batch"), mock.Anything).Return(nil)

		resp, err := service.Create(ctx, farmerID, CreateBatchRequest{
			CropName:   "Wheat",
			Variety:    "Sharbati",
			QuantityKg: decimal.NewFromInt(1000),
			PricePerKg: decimal.NewFromInt(25),
		})
		require.NoError(t, err)

		assert.Equal(t, "KN-2026-000042", resp.BatchNumber)
		assert.Equal(t, marketplace.BatchStatusCreated.String(), resp.Status)
		assert.Equal(t, farmerID, resp.CurrentOwnerID)
		batchRepo.AssertExpectations(t)
	})

	t.Run("rejects invalid quantity before hitting the store", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		service := NewBatchService(batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("GenerateBatchNumber", ctx).Return("KN-2026-000043", nil)

		_, err := service.Create(ctx, farmerID, CreateBatchRequest{
			CropName:   "Wheat",
			QuantityKg: decimal.Zero,
			PricePerKg: decimal.NewFromInt(25),
		})
		require.Error(t, err)
		batchRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBatchServiceListBatch(t *testing.T) {
	ctx := context.Background()
	farmerID := uuid.New()

	t.Run("lists own batch", func(t *testing.T) {
		batch := newServiceBatch(t, farmerID)
		batchRepo := new(MockBatchRepository)
		service := NewBatchService(batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		batchRepo.On("SaveWithLockAndEvents", ctx, batch, mock.Anything).Return(nil)

		resp, err := service.ListBatch(ctx, farmerID, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.BatchStatusListed.String(), resp.Status)
	})

	t.Run("rejects listing someone else's batch", func(t *testing.T) {
		batch := newServiceBatch(t, farmerID)
		batchRepo := new(MockBatchRepository)
		service := NewBatchService(batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)

		_, err := service.ListBatch(ctx, uuid.New(), batch.ID)
		assert.ErrorIs(t, err, shared.ErrOwnershipMismatch)
		batchRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("retries once on version conflict", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		service := NewBatchService(batchRepo, new(MockOwnershipHistoryRepository))

		first := newServiceBatch(t, farmerID)
		second := newServiceBatch(t, farmerID)
		batchID := first.ID
		second.ID = batchID

		batchRepo.On("FindByID", ctx, batchID).Return(first, nil).Once()
		batchRepo.On("SaveWithLockAndEvents", ctx, first, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
		batchRepo.On("FindByID", ctx, batchID).Return(second, nil).Once()
		batchRepo.On("SaveWithLockAndEvents", ctx, second, mock.Anything).Return(nil).Once()

		resp, err := service.ListBatch(ctx, farmerID, batchID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.BatchStatusListed.String(), resp.Status)
		batchRepo.AssertExpectations(t)
	})
}

func TestBatchServiceFinish(t *testing.T) {
	ctx := context.Background()
	farmerID := uuid.New()
	distributorID := uuid.New()

	// A full distributor buyout followed by an administrative move into
	// the retail stage leaves the batch at zero quantity without the
	// retail-buyout auto-finish.
	strandedBatch := func(t *testing.T) *marketplace.Batch {
		t.Helper()
		batch := newServiceBatch(t, farmerID)
		now := time.Now()
		require.NoError(t, batch.List())
		require.NoError(t, batch.AcceptDirectSale(now))
		require.NoError(t, batch.ApplySale(distributorID, decimal.NewFromInt(1000), false, now))
		require.NoError(t, batch.OverrideStatus(marketplace.BatchStatusListedForRetailers, uuid.Nil, now))
		batch.ClearDomainEvents()
		return batch
	}

	t.Run("finishes a bought-out batch", func(t *testing.T) {
		batch := strandedBatch(t)
		batchRepo := new(MockBatchRepository)
		service := NewBatchService(batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		batchRepo.On("SaveWithLockAndEvents", ctx, batch, mock.Anything).Return(nil)

		resp, err := service.Finish(ctx, distributorID, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.BatchStatusFinished.String(), resp.Status)
		batchRepo.AssertExpectations(t)
	})

	t.Run("rejects caller who is not seller of record", func(t *testing.T) {
		batch := strandedBatch(t)
		batchRepo := new(MockBatchRepository)
		service := NewBatchService(batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)

		_, err := service.Finish(ctx, uuid.New(), batch.ID)
		assert.ErrorIs(t, err, shared.ErrOwnershipMismatch)
		batchRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a batch with remaining quantity", func(t *testing.T) {
		batch := newServiceBatch(t, farmerID)
		now := time.Now()
		require.NoError(t, batch.List())
		require.NoError(t, batch.AcceptDirectSale(now))
		require.NoError(t, batch.ApplySale(distributorID, decimal.NewFromInt(600), false, now))
		require.NoError(t, batch.RelistForRetailers(distributorID, valueobject.NewMoneyINR(decimal.NewFromInt(40)), now))
		batch.ClearDomainEvents()

		batchRepo := new(MockBatchRepository)
		service := NewBatchService(batchRepo, new(MockOwnershipHistoryRepository))
		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)

		_, err := service.Finish(ctx, distributorID, batch.ID)
		require.Error(t, err)
		batchRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBatchServiceOverrideStatus(t *testing.T) {
	ctx := context.Background()
	farmerID := uuid.New()
	adminID := uuid.New()

	t.Run("override with owner change appends ownership record", func(t *testing.T) {
		batch := newServiceBatch(t, farmerID)
		newOwner := uuid.New()

		batchRepo := new(MockBatchRepository)
		ownershipRepo := new(MockOwnershipHistoryRepository)
		service := NewBatchService(batchRepo, ownershipRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		ownershipRepo.On("SaveWithBatch", ctx, mock.MatchedBy(func(r *trade.OwnershipRecord) bool {
			return r.PreviousOwnerID == farmerID &&
				r.NewOwnerID == newOwner &&
				r.TransferType == trade.SaleTypeAdminOverride
		}), batch, mock.Anything).Return(nil)

		resp, err := service.OverrideStatus(ctx, adminID, batch.ID, OverrideStatusRequest{
			Status:     marketplace.BatchStatusSoldToDistributor.String(),
			NewOwnerID: &newOwner,
			Reason:     "manual correction after failed migration",
		})
		require.NoError(t, err)

		assert.Equal(t, marketplace.BatchStatusSoldToDistributor.String(), resp.Status)
		assert.Equal(t, newOwner, resp.CurrentOwnerID)
		// the record and the batch commit together, never separately
		batchRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
		ownershipRepo.AssertExpectations(t)
	})

	t.Run("failed record write rolls the override back", func(t *testing.T) {
		batch := newServiceBatch(t, farmerID)
		newOwner := uuid.New()

		batchRepo := new(MockBatchRepository)
		ownershipRepo := new(MockOwnershipHistoryRepository)
		service := NewBatchService(batchRepo, ownershipRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		ownershipRepo.On("SaveWithBatch", ctx, mock.Anything, batch, mock.Anything).
			Return(shared.NewDomainError("DB_ERROR", "insert failed"))

		_, err := service.OverrideStatus(ctx, adminID, batch.ID, OverrideStatusRequest{
			Status:     marketplace.BatchStatusSoldToDistributor.String(),
			NewOwnerID: &newOwner,
			Reason:     "manual correction after failed migration",
		})
		require.Error(t, err)
		batchRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("override without owner change writes no record", func(t *testing.T) {
		batch := newServiceBatch(t, farmerID)

		batchRepo := new(MockBatchRepository)
		ownershipRepo := new(MockOwnershipHistoryRepository)
		service := NewBatchService(batchRepo, ownershipRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		batchRepo.On("SaveWithLockAndEvents", ctx, batch, mock.Anything).Return(nil)

		_, err := service.OverrideStatus(ctx, adminID, batch.ID, OverrideStatusRequest{
			Status: marketplace.BatchStatusListed.String(),
			Reason: "stuck after deployment",
		})
		require.NoError(t, err)
		ownershipRepo.AssertNotCalled(t, "SaveWithBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		service := NewBatchService(new(MockBatchRepository), new(MockOwnershipHistoryRepository))
		_, err := service.OverrideStatus(ctx, adminID, uuid.New(), OverrideStatusRequest{
			Status: "SHIPPED",
			Reason: "typo",
		})
		require.Error(t, err)
	})
}
