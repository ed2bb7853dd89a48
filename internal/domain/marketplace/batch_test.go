package marketplace

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

func newTestBatch(t *testing.T) *Batch {
	t.Helper()
	batch, err := NewBatch(uuid.New(), "KN-2026-000001", "Wheat", "Sharbati",
		decimal.NewFromInt(1000), valueobject.NewMoneyINR(decimal.NewFromInt(25)))
	require.NoError(t, err)
	batch.ClearDomainEvents()
	return batch
}

func newListedBatch(t *testing.T) *Batch {
	t.Helper()
	batch := newTestBatch(t)
	require.NoError(t, batch.List())
	batch.ClearDomainEvents()
	return batch
}

func TestNewBatch(t *testing.T) {
	farmerID := uuid.New()
	price := valueobject.NewMoneyINR(decimal.NewFromInt(25))

	t.Run("creates batch with valid inputs", func(t *testing.T) {
		batch, err := NewBatch(farmerID, "KN-2026-000001", "Wheat", "Sharbati", decimal.NewFromInt(1000), price)
		require.NoError(t, err)
		require.NotNil(t, batch)

		assert.Equal(t, "KN-2026-000001", batch.BatchNumber)
		assert.Equal(t, farmerID, batch.FarmerID)
		assert.Equal(t, farmerID, batch.CurrentOwnerID)
		assert.Equal(t, "Wheat", batch.CropName)
		assert.Equal(t, BatchStatusCreated, batch.Status)
		assert.Equal(t, BiddingStatusClosed, batch.BiddingStatus)
		assert.True(t, batch.AvailableQuantityKg.Equal(batch.QuantityKg))
		assert.Equal(t, 1, batch.GetVersion())
	})

	t.Run("seeds trade history with farmer as seller of record", func(t *testing.T) {
		batch, err := NewBatch(farmerID, "KN-2026-000002", "Wheat", "Sharbati", decimal.NewFromInt(1000), price)
		require.NoError(t, err)

		require.Len(t, batch.TradeHistory, 1)
		assert.Equal(t, farmerID, batch.TradeHistory[0].OwnerID)
		assert.True(t, batch.TradeHistory[0].PricePerKg.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, farmerID, batch.SellerOfRecord())
	})

	t.Run("publishes BatchCreated event", func(t *testing.T) {
		batch, err := NewBatch(farmerID, "KN-2026-000003", "Wheat", "Sharbati", decimal.NewFromInt(1000), price)
		require.NoError(t, err)

		events := batch.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeBatchCreated, events[0].EventType())
	})

	t.Run("fails with empty farmer ID", func(t *testing.T) {
		_, err := NewBatch(uuid.Nil, "KN-2026-000004", "Wheat", "", decimal.NewFromInt(1000), price)
		require.Error(t, err)
	})

	t.Run("fails with zero quantity", func(t *testing.T) {
		_, err := NewBatch(farmerID, "KN-2026-000005", "Wheat", "", decimal.Zero, price)
		require.Error(t, err)
	})

	t.Run("fails with empty crop name", func(t *testing.T) {
		_, err := NewBatch(farmerID, "KN-2026-000006", "", "", decimal.NewFromInt(1000), price)
		require.Error(t, err)
	})
}

func TestBatchStatusTransitions(t *testing.T) {
	allStatuses := []BatchStatus{
		BatchStatusCreated, BatchStatusListed, BatchStatusBidding,
		BatchStatusInTransaction, BatchStatusSoldToDistributor,
		BatchStatusListedForRetailers, BatchStatusFinished,
	}

	allowed := map[BatchStatus][]BatchStatus{
		BatchStatusCreated:            {BatchStatusListed},
		BatchStatusListed:             {BatchStatusBidding, BatchStatusInTransaction},
		BatchStatusBidding:            {BatchStatusInTransaction, BatchStatusListed},
		BatchStatusInTransaction:      {BatchStatusSoldToDistributor},
		BatchStatusSoldToDistributor:  {BatchStatusListedForRetailers},
		BatchStatusListedForRetailers: {BatchStatusFinished},
		BatchStatusFinished:           {},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	t.Run("finished is terminal", func(t *testing.T) {
		assert.True(t, BatchStatusFinished.IsTerminal())
		assert.False(t, BatchStatusListed.IsTerminal())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		assert.False(t, BatchStatus("SHIPPED").IsValid())
	})
}

func TestBatchList(t *testing.T) {
	t.Run("lists created batch", func(t *testing.T) {
		batch := newTestBatch(t)
		require.NoError(t, batch.List())

		assert.Equal(t, BatchStatusListed, batch.Status)
		require.NotNil(t, batch.ListedAt)

		events := batch.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeBatchListed, events[0].EventType())
	})

	t.Run("fails when already listed", func(t *testing.T) {
		batch := newListedBatch(t)
		err := batch.List()
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})
}

func TestBatchUpdateAskPrice(t *testing.T) {
	t.Run("updates price and appends trade record", func(t *testing.T) {
		batch := newListedBatch(t)
		err := batch.UpdateAskPrice(batch.FarmerID, valueobject.NewMoneyINR(decimal.NewFromInt(30)))
		require.NoError(t, err)

		assert.True(t, batch.PricePerKg.Equal(decimal.NewFromInt(30)))
		require.Len(t, batch.TradeHistory, 2)
		assert.Equal(t, batch.FarmerID, batch.SellerOfRecord())
	})

	t.Run("rejects non-owner", func(t *testing.T) {
		batch := newListedBatch(t)
		err := batch.UpdateAskPrice(uuid.New(), valueobject.NewMoneyINR(decimal.NewFromInt(30)))
		assert.ErrorIs(t, err, shared.ErrOwnershipMismatch)
	})

	t.Run("rejects update mid-transaction", func(t *testing.T) {
		batch := newListedBatch(t)
		require.NoError(t, batch.AcceptDirectSale(time.Now()))
		err := batch.UpdateAskPrice(batch.FarmerID, valueobject.NewMoneyINR(decimal.NewFromInt(30)))
		require.Error(t, err)
	})
}

func TestBatchApplySale(t *testing.T) {
	now := time.Now()

	inTransaction := func(t *testing.T) *Batch {
		batch := newListedBatch(t)
		require.NoError(t, batch.AcceptDirectSale(now))
		return batch
	}

	t.Run("distributor sale moves ownership and status", func(t *testing.T) {
		batch := inTransaction(t)
		buyerID := uuid.New()

		err := batch.ApplySale(buyerID, decimal.NewFromInt(600), false, now)
		require.NoError(t, err)

		assert.Equal(t, BatchStatusSoldToDistributor, batch.Status)
		assert.Equal(t, buyerID, batch.CurrentOwnerID)
		assert.True(t, batch.AvailableQuantityKg.Equal(decimal.NewFromInt(400)))
		// the sale appends a trade entry making the buyer the seller of
		// record for the remainder
		require.Len(t, batch.TradeHistory, 2)
		assert.Equal(t, buyerID, batch.TradeHistory[1].OwnerID)
		assert.Equal(t, buyerID, batch.SellerOfRecord())
	})

	t.Run("second distributor sale of the remainder", func(t *testing.T) {
		batch := inTransaction(t)
		first := uuid.New()
		second := uuid.New()

		require.NoError(t, batch.ApplySale(first, decimal.NewFromInt(600), false, now))
		require.NoError(t, batch.ApplySale(second, decimal.NewFromInt(400), false, now))

		assert.Equal(t, second, batch.CurrentOwnerID)
		assert.True(t, batch.AvailableQuantityKg.IsZero())
		assert.Equal(t, BatchStatusSoldToDistributor, batch.Status)
	})

	t.Run("rejects oversell", func(t *testing.T) {
		batch := inTransaction(t)
		err := batch.ApplySale(uuid.New(), decimal.NewFromInt(1001), false, now)
		assert.ErrorIs(t, err, shared.ErrInsufficientQuantity)
	})

	t.Run("rejects retail sale before relisting", func(t *testing.T) {
		batch := inTransaction(t)
		err := batch.ApplySale(uuid.New(), decimal.NewFromInt(100), true, now)
		require.Error(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		batch := inTransaction(t)
		err := batch.ApplySale(uuid.New(), decimal.Zero, false, now)
		require.Error(t, err)
	})
}

func TestBatchRetailFlow(t *testing.T) {
	now := time.Now()

	// 600 of 1000 kg go to the distributor; the 400 kg remainder is what
	// gets relisted for retail
	soldBatch := func(t *testing.T) (*Batch, uuid.UUID) {
		batch := newListedBatch(t)
		require.NoError(t, batch.AcceptDirectSale(now))
		distributorID := uuid.New()
		require.NoError(t, batch.ApplySale(distributorID, decimal.NewFromInt(600), false, now))
		batch.ClearDomainEvents()
		return batch, distributorID
	}

	t.Run("owner relists for retailers", func(t *testing.T) {
		batch, distributorID := soldBatch(t)

		err := batch.RelistForRetailers(distributorID, valueobject.NewMoneyINR(decimal.NewFromInt(40)), now)
		require.NoError(t, err)

		assert.Equal(t, BatchStatusListedForRetailers, batch.Status)
		assert.True(t, batch.PricePerKg.Equal(decimal.NewFromInt(40)))
		assert.Equal(t, distributorID, batch.SellerOfRecord())
		require.Len(t, batch.TradeHistory, 3)
	})

	t.Run("non-owner cannot relist", func(t *testing.T) {
		batch, _ := soldBatch(t)
		err := batch.RelistForRetailers(uuid.New(), valueobject.NewMoneyINR(decimal.NewFromInt(40)), now)
		assert.ErrorIs(t, err, shared.ErrOwnershipMismatch)
	})

	t.Run("retail sales append orders and finish at zero", func(t *testing.T) {
		batch, distributorID := soldBatch(t)
		require.NoError(t, batch.RelistForRetailers(distributorID, valueobject.NewMoneyINR(decimal.NewFromInt(40)), now))

		retailerA := uuid.New()
		retailerB := uuid.New()
		require.NoError(t, batch.ApplySale(retailerA, decimal.NewFromInt(250), true, now))
		assert.Equal(t, BatchStatusListedForRetailers, batch.Status)
		assert.Equal(t, retailerA, batch.CurrentOwnerID)

		require.NoError(t, batch.ApplySale(retailerB, decimal.NewFromInt(150), true, now))
		assert.Equal(t, BatchStatusFinished, batch.Status)
		assert.Equal(t, retailerB, batch.CurrentOwnerID)
		require.NotNil(t, batch.FinishedAt)
		require.Len(t, batch.RetailOrders, 2)
		assert.True(t, batch.RetailOrders[0].QuantityKg.Equal(decimal.NewFromInt(250)))

		// every retail sale leaves an audit entry; custody of the
		// remainder stays with the relisting distributor
		require.Len(t, batch.TradeHistory, 5)
		assert.Equal(t, distributorID, batch.SellerOfRecord())
	})

	t.Run("no sale after finished", func(t *testing.T) {
		batch, distributorID := soldBatch(t)
		require.NoError(t, batch.RelistForRetailers(distributorID, valueobject.NewMoneyINR(decimal.NewFromInt(40)), now))
		require.NoError(t, batch.ApplySale(uuid.New(), decimal.NewFromInt(400), true, now))
		require.True(t, batch.IsFinished())

		err := batch.ApplySale(uuid.New(), decimal.NewFromInt(1), true, now)
		require.Error(t, err)
	})
}

func TestBatchOverrideStatus(t *testing.T) {
	now := time.Now()

	t.Run("forces status outside the transition table", func(t *testing.T) {
		batch := newListedBatch(t)
		err := batch.OverrideStatus(BatchStatusSoldToDistributor, uuid.Nil, now)
		require.NoError(t, err)
		assert.Equal(t, BatchStatusSoldToDistributor, batch.Status)
	})

	t.Run("override with new owner appends trade record", func(t *testing.T) {
		batch := newListedBatch(t)
		newOwner := uuid.New()
		err := batch.OverrideStatus(BatchStatusSoldToDistributor, newOwner, now)
		require.NoError(t, err)
		assert.Equal(t, newOwner, batch.CurrentOwnerID)
		assert.Equal(t, newOwner, batch.SellerOfRecord())
	})

	t.Run("cannot override finished batch", func(t *testing.T) {
		batch := newListedBatch(t)
		require.NoError(t, batch.AcceptDirectSale(now))
		distributorID := uuid.New()
		require.NoError(t, batch.ApplySale(distributorID, decimal.NewFromInt(600), false, now))
		require.NoError(t, batch.RelistForRetailers(distributorID, valueobject.NewMoneyINR(decimal.NewFromInt(40)), now))
		require.NoError(t, batch.ApplySale(uuid.New(), decimal.NewFromInt(400), true, now))
		require.True(t, batch.IsFinished())

		err := batch.OverrideStatus(BatchStatusListed, uuid.Nil, now)
		require.Error(t, err)
	})
}

func TestOwnershipChainMatchesCurrentOwner(t *testing.T) {
	// replay the full lifecycle and check the last buyer always equals
	// the stored owner of record
	now := time.Now()
	batch := newListedBatch(t)
	require.NoError(t, batch.AcceptDirectSale(now))

	distributor := uuid.New()
	require.NoError(t, batch.ApplySale(distributor, decimal.NewFromInt(600), false, now))
	assert.Equal(t, distributor, batch.CurrentOwnerID)

	require.NoError(t, batch.RelistForRetailers(distributor, valueobject.NewMoneyINR(decimal.NewFromInt(40)), now))

	retailer := uuid.New()
	require.NoError(t, batch.ApplySale(retailer, decimal.NewFromInt(400), true, now))
	assert.Equal(t, retailer, batch.CurrentOwnerID)
	assert.True(t, batch.IsFinished())
}
