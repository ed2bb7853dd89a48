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

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/persistence/models"
)

// setupInvoiceTestDB creates an in-memory SQLite database for testing
func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
	)
	require.NoError(t, err)

	return db
}

func newPersistedInvoice(t *testing.T, number string, sellerID, buyerID uuid.UUID) *trade.Invoice {
	t.Helper()
	invoice, err := trade.NewInvoice(number, sellerID, buyerID)
	require.NoError(t, err)

	sale, err := trade.NewSale("SL-2026-000500", uuid.New(), sellerID, buyerID,
		trade.SaleTypeFarmerToDistributor, decimal.NewFromInt(200),
		valueobject.NewMoneyINR(decimal.NewFromInt(35)), time.Now())
	require.NoError(t, err)

	require.NoError(t, invoice.AddSale(sale, "KN-2026-000001", "Wheat delivery"))
	invoice.ClearDomainEvents()
	return invoice
}

func TestGormInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	buyerID := uuid.New()
	invoice := newPersistedInvoice(t, "INV-2026-000001", sellerID, buyerID)
	require.NoError(t, repo.Save(ctx, invoice))

	t.Run("finds by id with items", func(t *testing.T) {
		found, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-000001", found.InvoiceNumber)
		assert.Equal(t, trade.InvoiceStatusDraft, found.Status)
		require.Len(t, found.Items, 1)
		assert.True(t, found.Items[0].LineTotal.Equal(decimal.NewFromInt(7000)))
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(7000)))
	})

	t.Run("finds by invoice number", func(t *testing.T) {
		found, err := repo.FindByInvoiceNumber(ctx, "INV-2026-000001")
		require.NoError(t, err)
		assert.Equal(t, invoice.ID, found.ID)
	})

	t.Run("returns ErrNotFound for unknown invoice", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormInvoiceRepository_SaveWithLockAndEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("persists state transitions", func(t *testing.T) {
		db := setupInvoiceTestDB(t)
		repo := NewGormInvoiceRepository(db)

		invoice := newPersistedInvoice(t, "INV-2026-000010", uuid.New(), uuid.New())
		require.NoError(t, repo.Save(ctx, invoice))

		dueDate := time.Now().Add(15 * 24 * time.Hour)
		require.NoError(t, invoice.Issue(&dueDate))
		invoice.ClearDomainEvents()

		require.NoError(t, repo.SaveWithLockAndEvents(ctx, invoice, nil))

		found, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.InvoiceStatusIssued, found.Status)
		require.NotNil(t, found.IssuedAt)
		require.NotNil(t, found.DueDate)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		db := setupInvoiceTestDB(t)
		repo := NewGormInvoiceRepository(db)

		invoice := newPersistedInvoice(t, "INV-2026-000011", uuid.New(), uuid.New())
		require.NoError(t, repo.Save(ctx, invoice))

		invoice.Version = invoice.Version + 2
		err := repo.SaveWithLockAndEvents(ctx, invoice, nil)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("removes dropped line items", func(t *testing.T) {
		db := setupInvoiceTestDB(t)
		repo := NewGormInvoiceRepository(db)

		invoice := newPersistedInvoice(t, "INV-2026-000012", uuid.New(), uuid.New())
		require.NoError(t, repo.Save(ctx, invoice))

		require.NoError(t, invoice.RemoveItem(invoice.Items[0].ID))
		require.NoError(t, repo.SaveWithLockAndEvents(ctx, invoice, nil))

		found, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Empty(t, found.Items)
		assert.True(t, found.TotalAmount.IsZero())
	})
}

func TestGormInvoiceRepository_FindPages(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	first := newPersistedInvoice(t, "INV-2026-000020", sellerID, uuid.New())
	require.NoError(t, repo.Save(ctx, first))

	second := newPersistedInvoice(t, "INV-2026-000021", sellerID, uuid.New())
	dueDate := time.Now().Add(7 * 24 * time.Hour)
	require.NoError(t, second.Issue(&dueDate))
	second.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, second))

	other := newPersistedInvoice(t, "INV-2026-000022", uuid.New(), uuid.New())
	require.NoError(t, repo.Save(ctx, other))

	t.Run("by seller", func(t *testing.T) {
		page, err := repo.FindBySeller(ctx, sellerID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("by seller and status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters = map[string]interface{}{"status": string(trade.InvoiceStatusIssued)}
		page, err := repo.FindBySeller(ctx, sellerID, filter)
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		assert.Equal(t, second.ID, page.Items[0].ID)
	})

	t.Run("by status", func(t *testing.T) {
		page, err := repo.FindByStatus(ctx, trade.InvoiceStatusDraft, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})
}

func TestGormInvoiceRepository_Delete(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newPersistedInvoice(t, "INV-2026-000030", uuid.New(), uuid.New())
	require.NoError(t, repo.Save(ctx, invoice))

	require.NoError(t, repo.Delete(ctx, invoice.ID))

	_, err := repo.FindByID(ctx, invoice.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var items int64
	require.NoError(t, db.Model(&models.InvoiceItemModel{}).
		Where("invoice_id = ?", invoice.ID).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestGormInvoiceRepository_GenerateInvoiceNumber(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	first, err := repo.GenerateInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d{4}-000001$`, first)

	invoice := newPersistedInvoice(t, first, uuid.New(), uuid.New())
	require.NoError(t, repo.Save(ctx, invoice))

	second, err := repo.GenerateInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d{4}-000002$`, second)
}
