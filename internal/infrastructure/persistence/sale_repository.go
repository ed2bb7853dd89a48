package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/persistence/models"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormSaleRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySaleNumber finds a sale by its unique sale number
func (r *GormSaleRepository) FindBySaleNumber(ctx context.Context, saleNumber string) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("sale_number = ?", saleNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBatch finds all sales recorded against a batch
func (r *GormSaleRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*trade.Sale, error) {
	var saleModels []models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("sale_date ASC").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}
	sales := make([]*trade.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = saleModels[i].ToDomain()
	}
	return sales, nil
}

// FindBySeller finds sales where the user was the seller
func (r *GormSaleRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*trade.Sale], error) {
	return r.findPage(ctx, filter, "seller_id = ?", sellerID)
}

// FindByBuyer finds sales where the user was the buyer
func (r *GormSaleRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*trade.Sale], error) {
	return r.findPage(ctx, filter, "buyer_id = ?", buyerID)
}

// FindByParties finds all sales between a seller and a buyer
func (r *GormSaleRepository) FindByParties(ctx context.Context, sellerID, buyerID uuid.UUID) ([]*trade.Sale, error) {
	var saleModels []models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND buyer_id = ?", sellerID, buyerID).
		Order("sale_date ASC").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}
	sales := make([]*trade.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = saleModels[i].ToDomain()
	}
	return sales, nil
}

func (r *GormSaleRepository) findPage(ctx context.Context, filter shared.Filter, cond string, args ...interface{}) (*shared.Paginated[*trade.Sale], error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).Where(cond, args...)

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("sale_number ILIKE ?", searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "batch_id":
			query = query.Where("batch_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("sale_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("sale_date <= ?", t)
			}
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var saleModels []models.SaleModel
	if err := applyPagination(query, filter, SaleSortFields).Find(&saleModels).Error; err != nil {
		return nil, err
	}
	sales := make([]*trade.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = saleModels[i].ToDomain()
	}
	page := shared.NewPaginated(sales, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Save creates or updates a sale
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	model := models.SaleModelFromDomain(sale)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveCompletedSale persists the sale, the updated batch, and the
// ownership record in one transaction. The quantity decrement is a
// conditional UPDATE guarded by the version and a non-negative
// remainder, so two concurrent completions of the same batch cannot
// both commit and the total decrement can never exceed the stored
// quantity; the losing caller gets ErrConcurrencyConflict and retries
// against fresh state. Events go to the outbox in the same transaction.
func (r *GormSaleRepository) SaveCompletedSale(ctx context.Context, sale *trade.Sale, batch *marketplace.Batch, record *trade.OwnershipRecord, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		saleModel := models.SaleModelFromDomain(sale)
		if err := tx.Create(saleModel).Error; err != nil {
			return err
		}

		if err := writeSoldBatch(tx, batch, sale.QuantityKg); err != nil {
			return err
		}
		if err := saveBatchChildren(tx, batch); err != nil {
			return err
		}

		if record != nil {
			recordModel := models.OwnershipRecordModelFromDomain(record)
			if err := tx.Create(recordModel).Error; err != nil {
				return err
			}
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// GenerateSaleNumber generates a unique sale number.
// Format: SL-YYYY-NNNNNN (e.g., SL-2026-000001)
func (r *GormSaleRepository) GenerateSaleNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("SL-%d-", year)

	var lastSale models.SaleModel
	err := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("sale_number LIKE ?", prefix+"%").
		Order("sale_number DESC").
		First(&lastSale).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastSale.SaleNumber != "" {
		parts := strings.Split(lastSale.SaleNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%06d", prefix, nextNum), nil
}
