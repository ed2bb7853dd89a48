package trade

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
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// MockSaleRepository is a mock implementation of SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindBySaleNumber(ctx context.Context, saleNumber string) (*trade.Sale, error) {
	args := m.Called(ctx, saleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*trade.Sale, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*trade.Sale], error) {
	args := m.Called(ctx, sellerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*trade.Sale]), args.Error(1)
}

func (m *MockSaleRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*trade.Sale], error) {
	args := m.Called(ctx, buyerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*trade.Sale]), args.Error(1)
}

func (m *MockSaleRepository) FindByParties(ctx context.Context, sellerID, buyerID uuid.UUID) ([]*trade.Sale, error) {
	args := m.Called(ctx, sellerID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) SaveCompletedSale(ctx context.Context, sale *trade.Sale, batch *marketplace.Batch, record *trade.OwnershipRecord, events []shared.DomainEvent) error {
	args := m.Called(ctx, sale, batch, record, events)
	return args.Error(0)
}

func (m *MockSaleRepository) GenerateSaleNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockBatchRepository is a minimal mock of the batch repository for
// sale coordination tests
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

func inTransactionBatch(t *testing.T, farmerID uuid.UUID) *marketplace.Batch {
	t.Helper()
	batch, err := marketplace.NewBatch(farmerID, "KN-2026-000001", "Wheat", "Sharbati",
		decimal.NewFromInt(1000), valueobject.NewMoneyINR(decimal.NewFromInt(25)))
	require.NoError(t, err)
	require.NoError(t, batch.List())
	require.NoError(t, batch.AcceptDirectSale(time.Now()))
	batch.ClearDomainEvents()
	return batch
}

func newSaleService(saleRepo *MockSaleRepository, batchRepo *MockBatchRepository, ownershipRepo *MockOwnershipHistoryRepository) *SaleService {
	return NewSaleService(saleRepo, batchRepo, ownershipRepo, zap.NewNop())
}

func TestCompleteSale(t *testing.T) {
	ctx := context.Background()
	farmerID := uuid.New()

	t.Run("farmer sells to distributor", func(t *testing.T) {
		batch := inTransactionBatch(t, farmerID)
		buyerID := uuid.New()

		saleRepo := new(MockSaleRepository)
		batchRepo := new(MockBatchRepository)
		ownershipRepo := new(MockOwnershipHistoryRepository)
		service := newSaleService(saleRepo, batchRepo, ownershipRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		saleRepo.On("GenerateSaleNumber", ctx).Return("SL-2026-000001", nil)
		saleRepo.On("SaveCompletedSale", ctx,
			mock.AnythingOfType("*trade.Sale"),
			batch,
			mock.MatchedBy(func(r *trade.OwnershipRecord) bool {
				return r != nil && r.PreviousOwnerID == farmerID && r.NewOwnerID == buyerID
			}),
			mock.Anything,
		).Return(nil)

		resp, err := service.CompleteSale(ctx, farmerID, shared.RoleFarmer, CompleteSaleRequest{
			BatchID:    batch.ID,
			BuyerID:    buyerID,
			BuyerRole:  string(shared.RoleDistributor),
			QuantityKg: decimal.NewFromInt(600),
		})
		require.NoError(t, err)

		assert.Equal(t, "SL-2026-000001", resp.SaleNumber)
		assert.Equal(t, trade.SaleTypeFarmerToDistributor.String(), resp.Type)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(15000)))
		assert.Equal(t, buyerID, batch.CurrentOwnerID)
		assert.True(t, batch.AvailableQuantityKg.Equal(decimal.NewFromInt(400)))
		assert.Equal(t, marketplace.BatchStatusSoldToDistributor, batch.Status)
		saleRepo.AssertExpectations(t)
	})

	t.Run("direct offer on a listed batch enters the transaction", func(t *testing.T) {
		batch, err := marketplace.NewBatch(farmerID, "KN-2026-000002", "Wheat", "Sharbati",
			decimal.NewFromInt(1000), valueobject.NewMoneyINR(decimal.NewFromInt(25)))
		require.NoError(t, err)
		require.NoError(t, batch.List())
		batch.ClearDomainEvents()
		buyerID := uuid.New()

		saleRepo := new(MockSaleRepository)
		batchRepo := new(MockBatchRepository)
		service := newSaleService(saleRepo, batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		saleRepo.On("GenerateSaleNumber", ctx).Return("SL-2026-000004", nil)
		saleRepo.On("SaveCompletedSale", ctx, mock.Anything, batch, mock.Anything, mock.Anything).Return(nil)

		_, err = service.CompleteSale(ctx, farmerID, shared.RoleFarmer, CompleteSaleRequest{
			BatchID:    batch.ID,
			BuyerID:    buyerID,
			BuyerRole:  string(shared.RoleDistributor),
			QuantityKg: decimal.NewFromInt(600),
		})
		require.NoError(t, err)
		assert.Equal(t, marketplace.BatchStatusSoldToDistributor, batch.Status)
		assert.Equal(t, buyerID, batch.CurrentOwnerID)
	})

	t.Run("oversell fails before any write", func(t *testing.T) {
		batch := inTransactionBatch(t, farmerID)

		saleRepo := new(MockSaleRepository)
		batchRepo := new(MockBatchRepository)
		service := newSaleService(saleRepo, batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)

		_, err := service.CompleteSale(ctx, farmerID, shared.RoleFarmer, CompleteSaleRequest{
			BatchID:    batch.ID,
			BuyerID:    uuid.New(),
			BuyerRole:  string(shared.RoleDistributor),
			QuantityKg: decimal.NewFromInt(1001),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientQuantity)
		saleRepo.AssertNotCalled(t, "SaveCompletedSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-owner seller is rejected", func(t *testing.T) {
		batch := inTransactionBatch(t, farmerID)

		saleRepo := new(MockSaleRepository)
		batchRepo := new(MockBatchRepository)
		service := newSaleService(saleRepo, batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)

		_, err := service.CompleteSale(ctx, uuid.New(), shared.RoleFarmer, CompleteSaleRequest{
			BatchID:    batch.ID,
			BuyerID:    uuid.New(),
			BuyerRole:  string(shared.RoleDistributor),
			QuantityKg: decimal.NewFromInt(100),
		})
		assert.ErrorIs(t, err, shared.ErrOwnershipMismatch)
	})

	t.Run("unsupported role pairing is rejected", func(t *testing.T) {
		service := newSaleService(new(MockSaleRepository), new(MockBatchRepository), new(MockOwnershipHistoryRepository))

		_, err := service.CompleteSale(ctx, farmerID, shared.RoleFarmer, CompleteSaleRequest{
			BatchID:    uuid.New(),
			BuyerID:    uuid.New(),
			BuyerRole:  string(shared.RoleRetailer),
			QuantityKg: decimal.NewFromInt(100),
		})
		require.Error(t, err)
	})

	t.Run("retries on version conflict with fresh state", func(t *testing.T) {
		stale := inTransactionBatch(t, farmerID)
		fresh := inTransactionBatch(t, farmerID)
		fresh.ID = stale.ID
		buyerID := uuid.New()

		saleRepo := new(MockSaleRepository)
		batchRepo := new(MockBatchRepository)
		service := newSaleService(saleRepo, batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("FindByID", ctx, stale.ID).Return(stale, nil).Once()
		batchRepo.On("FindByID", ctx, stale.ID).Return(fresh, nil).Once()
		saleRepo.On("GenerateSaleNumber", ctx).Return("SL-2026-000002", nil)
		saleRepo.On("SaveCompletedSale", ctx, mock.Anything, stale, mock.Anything, mock.Anything).
			Return(shared.ErrConcurrencyConflict).Once()
		saleRepo.On("SaveCompletedSale", ctx, mock.Anything, fresh, mock.Anything, mock.Anything).
			Return(nil).Once()

		_, err := service.CompleteSale(ctx, farmerID, shared.RoleFarmer, CompleteSaleRequest{
			BatchID:    stale.ID,
			BuyerID:    buyerID,
			BuyerRole:  string(shared.RoleDistributor),
			QuantityKg: decimal.NewFromInt(600),
		})
		require.NoError(t, err)
		batchRepo.AssertExpectations(t)
		saleRepo.AssertExpectations(t)
	})

	t.Run("repeat buyer writes no ownership record", func(t *testing.T) {
		batch := inTransactionBatch(t, farmerID)
		buyerID := uuid.New()
		require.NoError(t, batch.ApplySale(buyerID, decimal.NewFromInt(100), false, time.Now()))
		batch.ClearDomainEvents()
		// buyerID is now the owner of record; an admin-driven repeat
		// purchase by the same party moves no ownership

		saleRepo := new(MockSaleRepository)
		batchRepo := new(MockBatchRepository)
		service := newSaleService(saleRepo, batchRepo, new(MockOwnershipHistoryRepository))

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		saleRepo.On("GenerateSaleNumber", ctx).Return("SL-2026-000003", nil)
		saleRepo.On("SaveCompletedSale", ctx, mock.Anything, batch, (*trade.OwnershipRecord)(nil), mock.Anything).Return(nil)

		_, err := service.CompleteSale(ctx, uuid.New(), shared.RoleAdmin, CompleteSaleRequest{
			BatchID:    batch.ID,
			BuyerID:    buyerID,
			BuyerRole:  string(shared.RoleDistributor),
			QuantityKg: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
		saleRepo.AssertExpectations(t)
	})
}

func TestGetLineage(t *testing.T) {
	ctx := context.Background()
	farmerID := uuid.New()

	t.Run("valid chain", func(t *testing.T) {
		batch := inTransactionBatch(t, farmerID)
		distributorID := uuid.New()
		require.NoError(t, batch.ApplySale(distributorID, decimal.NewFromInt(600), false, time.Now()))

		saleID := uuid.New()
		record, err := trade.NewOwnershipRecord(batch.ID, farmerID, distributorID,
			trade.SaleTypeFarmerToDistributor, &saleID, time.Now())
		require.NoError(t, err)
		lineage, err := trade.NewLineage(batch.ID, []trade.OwnershipRecord{*record})
		require.NoError(t, err)

		batchRepo := new(MockBatchRepository)
		ownershipRepo := new(MockOwnershipHistoryRepository)
		service := newSaleService(new(MockSaleRepository), batchRepo, ownershipRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		ownershipRepo.On("LineageForBatch", ctx, batch.ID).Return(lineage, nil)

		resp, err := service.GetLineage(ctx, batch.ID)
		require.NoError(t, err)

		assert.Equal(t, distributorID, resp.CurrentOwnerID)
		require.Len(t, resp.Transfers, 1)
	})

	t.Run("mismatched chain is surfaced", func(t *testing.T) {
		batch := inTransactionBatch(t, farmerID)
		require.NoError(t, batch.ApplySale(uuid.New(), decimal.NewFromInt(600), false, time.Now()))

		// empty chain derives the farmer, but the batch owner moved
		lineage, err := trade.NewLineage(batch.ID, nil)
		require.NoError(t, err)

		batchRepo := new(MockBatchRepository)
		ownershipRepo := new(MockOwnershipHistoryRepository)
		service := newSaleService(new(MockSaleRepository), batchRepo, ownershipRepo)

		batchRepo.On("FindByID", ctx, batch.ID).Return(batch, nil)
		ownershipRepo.On("LineageForBatch", ctx, batch.ID).Return(lineage, nil)

		_, err = service.GetLineage(ctx, batch.ID)
		require.Error(t, err)
	})
}
