package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/persistence/models"
)

// setupBatchTestDB creates an in-memory SQLite database for testing
func setupBatchTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.BatchModel{},
		&models.BidModel{},
		&models.TradeRecordModel{},
		&models.RetailOrderModel{},
	)
	require.NoError(t, err)

	return db
}

func newPersistedBatch(t *testing.T, number string) *marketplace.Batch {
	t.Helper()
	batch, err := marketplace.NewBatch(uuid.New(), number, "Wheat", "Sharbati",
		decimal.NewFromInt(1000), valueobject.NewMoneyINR(decimal.NewFromInt(25)))
	require.NoError(t, err)
	batch.ClearDomainEvents()
	return batch
}

func TestGormBatchRepository_SaveAndFind(t *testing.T) {
	db := setupBatchTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()

	batch := newPersistedBatch(t, "KN-2026-000001")
	require.NoError(t, repo.Save(ctx, batch))

	t.Run("finds by id with children", func(t *testing.T) {
		found, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, batch.ID, found.ID)
		assert.Equal(t, "KN-2026-000001", found.BatchNumber)
		assert.Equal(t, marketplace.BatchStatusCreated, found.Status)
		assert.True(t, found.QuantityKg.Equal(decimal.NewFromInt(1000)))
		assert.True(t, found.AvailableQuantityKg.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("finds by batch number", func(t *testing.T) {
		found, err := repo.FindByBatchNumber(ctx, "KN-2026-000001")
		require.NoError(t, err)
		assert.Equal(t, batch.ID, found.ID)
	})

	t.Run("returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns ErrNotFound for unknown number", func(t *testing.T) {
		_, err := repo.FindByBatchNumber(ctx, "KN-2026-999999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormBatchRepository_SaveWithLockAndEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts a batch saved for the first time", func(t *testing.T) {
		db := setupBatchTestDB(t)
		repo := NewGormBatchRepository(db)

		batch := newPersistedBatch(t, "KN-2026-000009")
		require.NoError(t, repo.SaveWithLockAndEvents(ctx, batch, nil))

		found, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, "KN-2026-000009", found.BatchNumber)
		assert.Equal(t, marketplace.BatchStatusCreated, found.Status)
		assert.Equal(t, 1, found.Version)
		require.Len(t, found.TradeHistory, 1)
		assert.Equal(t, batch.FarmerID, found.TradeHistory[0].OwnerID)
	})

	t.Run("persists changes and bumps the version", func(t *testing.T) {
		db := setupBatchTestDB(t)
		repo := NewGormBatchRepository(db)

		batch := newPersistedBatch(t, "KN-2026-000010")
		require.NoError(t, repo.Save(ctx, batch))

		require.NoError(t, batch.List())
		batch.ClearDomainEvents()
		readVersion := batch.Version

		require.NoError(t, repo.SaveWithLockAndEvents(ctx, batch, nil))
		assert.Equal(t, readVersion+1, batch.Version)

		found, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.BatchStatusListed, found.Status)
		assert.Equal(t, readVersion+1, found.Version)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		db := setupBatchTestDB(t)
		repo := NewGormBatchRepository(db)

		batch := newPersistedBatch(t, "KN-2026-000011")
		require.NoError(t, repo.Save(ctx, batch))

		first, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)

		require.NoError(t, first.List())
		first.ClearDomainEvents()
		require.NoError(t, repo.SaveWithLockAndEvents(ctx, first, nil))

		require.NoError(t, second.List())
		second.ClearDomainEvents()
		err = repo.SaveWithLockAndEvents(ctx, second, nil)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("persists appended bids", func(t *testing.T) {
		db := setupBatchTestDB(t)
		repo := NewGormBatchRepository(db)

		batch := newPersistedBatch(t, "KN-2026-000012")
		require.NoError(t, repo.Save(ctx, batch))

		now := time.Now()
		require.NoError(t, batch.List())
		require.NoError(t, batch.OpenBidding(now.Add(48*time.Hour), now))
		_, err := batch.PlaceBid(uuid.New(), valueobject.NewMoneyINR(decimal.NewFromInt(30)), now)
		require.NoError(t, err)
		batch.ClearDomainEvents()

		require.NoError(t, repo.SaveWithLockAndEvents(ctx, batch, nil))

		found, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, found.Bids, 1)
		assert.Equal(t, marketplace.BidStatusPending, found.Bids[0].Status)
		assert.True(t, found.Bids[0].AmountPerKg.Equal(decimal.NewFromInt(30)))
	})
}

func TestDecrementAvailableQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements and bumps version", func(t *testing.T) {
		db := setupBatchTestDB(t)
		repo := NewGormBatchRepository(db)

		batch := newPersistedBatch(t, "KN-2026-000020")
		require.NoError(t, repo.Save(ctx, batch))

		err := decrementAvailableQuantity(db, batch.ID, decimal.NewFromInt(400), batch.Version)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.True(t, found.AvailableQuantityKg.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, batch.Version+1, found.Version)
	})

	t.Run("reports insufficient quantity", func(t *testing.T) {
		db := setupBatchTestDB(t)
		repo := NewGormBatchRepository(db)

		batch := newPersistedBatch(t, "KN-2026-000021")
		require.NoError(t, repo.Save(ctx, batch))

		err := decrementAvailableQuantity(db, batch.ID, decimal.NewFromInt(5000), batch.Version)
		assert.ErrorIs(t, err, shared.ErrInsufficientQuantity)
	})

	t.Run("reports version conflict", func(t *testing.T) {
		db := setupBatchTestDB(t)
		repo := NewGormBatchRepository(db)

		batch := newPersistedBatch(t, "KN-2026-000022")
		require.NoError(t, repo.Save(ctx, batch))

		err := decrementAvailableQuantity(db, batch.ID, decimal.NewFromInt(100), batch.Version+7)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("reports missing batch", func(t *testing.T) {
		db := setupBatchTestDB(t)

		err := decrementAvailableQuantity(db, uuid.New(), decimal.NewFromInt(100), 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormBatchRepository_FindDueForBiddingClose(t *testing.T) {
	db := setupBatchTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()
	now := time.Now()

	due := newPersistedBatch(t, "KN-2026-000030")
	require.NoError(t, due.List())
	require.NoError(t, due.OpenBidding(now.Add(2*time.Hour), now))
	due.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, due))

	notDue := newPersistedBatch(t, "KN-2026-000031")
	require.NoError(t, notDue.List())
	require.NoError(t, notDue.OpenBidding(now.Add(72*time.Hour), now))
	notDue.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, notDue))

	stillListed := newPersistedBatch(t, "KN-2026-000032")
	require.NoError(t, stillListed.List())
	stillListed.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, stillListed))

	batches, err := repo.FindDueForBiddingClose(ctx, now.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, due.ID, batches[0].ID)
}

func TestGormBatchRepository_GenerateBatchNumber(t *testing.T) {
	db := setupBatchTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()

	first, err := repo.GenerateBatchNumber(ctx)
	require.NoError(t, err)
	assert.Contains(t, first, "KN-")
	assert.Regexp(t, `^KN-\d{4}-000001$`, first)

	batch := newPersistedBatch(t, first)
	require.NoError(t, repo.Save(ctx, batch))

	second, err := repo.GenerateBatchNumber(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^KN-\d{4}-000002$`, second)
	assert.NotEqual(t, first, second)
}

func TestGormBatchRepository_FindPages(t *testing.T) {
	db := setupBatchTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()

	farmerID := uuid.New()
	for i, number := range []string{"KN-2026-000040", "KN-2026-000041", "KN-2026-000042"} {
		batch, err := marketplace.NewBatch(farmerID, number, "Rice", "Basmati",
			decimal.NewFromInt(500), valueobject.NewMoneyINR(decimal.NewFromInt(40)))
		require.NoError(t, err)
		if i < 2 {
			require.NoError(t, batch.List())
		}
		batch.ClearDomainEvents()
		require.NoError(t, repo.Save(ctx, batch))
	}

	other := newPersistedBatch(t, "KN-2026-000043")
	require.NoError(t, repo.Save(ctx, other))

	t.Run("filters by owner", func(t *testing.T) {
		page, err := repo.FindByOwner(ctx, farmerID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 3)
	})

	t.Run("filters by status", func(t *testing.T) {
		page, err := repo.FindByStatus(ctx, marketplace.BatchStatusListed, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2
		page, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Total)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("filters by crop name", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters = map[string]interface{}{"crop_name": "Rice"}
		page, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
	})

	t.Run("counts by status", func(t *testing.T) {
		count, err := repo.CountByStatus(ctx, marketplace.BatchStatusCreated)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
