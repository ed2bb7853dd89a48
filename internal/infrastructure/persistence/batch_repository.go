package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/persistence/models"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormBatchRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

func (r *GormBatchRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order("bid_date ASC")
		}).
		Preload("TradeHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("recorded_at ASC")
		}).
		Preload("RetailOrders", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordered_at ASC")
		})
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Batch, error) {
	var model models.BatchModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBatchNumber finds a batch by its unique batch number
func (r *GormBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*marketplace.Batch, error) {
	var model models.BatchModel
	if err := r.preloaded(ctx).
		Where("batch_number = ?", batchNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all batches with filtering and pagination
func (r *GormBatchRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*marketplace.Batch], error) {
	return r.findPage(ctx, filter)
}

// FindByFarmer finds batches originated by a farmer
func (r *GormBatchRepository) FindByFarmer(ctx context.Context, farmerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*marketplace.Batch], error) {
	return r.findPage(ctx, filter, "farmer_id = ?", farmerID)
}

// FindByOwner finds batches currently owned by a user
func (r *GormBatchRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*marketplace.Batch], error) {
	return r.findPage(ctx, filter, "current_owner_id = ?", ownerID)
}

// FindByStatus finds batches in a given lifecycle status
func (r *GormBatchRepository) FindByStatus(ctx context.Context, status marketplace.BatchStatus, filter shared.Filter) (*shared.Paginated[*marketplace.Batch], error) {
	return r.findPage(ctx, filter, "status = ?", status)
}

func (r *GormBatchRepository) findPage(ctx context.Context, filter shared.Filter, conds ...interface{}) (*shared.Paginated[*marketplace.Batch], error) {
	query := r.db.WithContext(ctx).Model(&models.BatchModel{})
	if len(conds) > 0 {
		query = query.Where(conds[0], conds[1:]...)
	}
	query = r.applyFilterWithoutPagination(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	query = applyPagination(query, filter, batchSortFields)

	var batchModels []models.BatchModel
	if err := query.
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order("bid_date ASC")
		}).
		Preload("TradeHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("recorded_at ASC")
		}).
		Preload("RetailOrders", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordered_at ASC")
		}).
		Find(&batchModels).Error; err != nil {
		return nil, err
	}

	batches := make([]*marketplace.Batch, len(batchModels))
	for i := range batchModels {
		batches[i] = batchModels[i].ToDomain()
	}
	page := shared.NewPaginated(batches, total, filter.Page, filter.PageSize)
	return &page, nil
}

var batchSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"listed_at":    true,
	"batch_number": true,
	"crop_name":    true,
	"price_per_kg": true,
}

func (r *GormBatchRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("batch_number ILIKE ? OR crop_name ILIKE ? OR variety ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "crop_name":
			query = query.Where("crop_name = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "bidding_status":
			query = query.Where("bidding_status = ?", value)
		case "min_price":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("price_per_kg >= ?", d)
			}
		case "max_price":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("price_per_kg <= ?", d)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// FindDueForBiddingClose lists batches whose open bidding window has
// passed its closing date at the given instant.
func (r *GormBatchRepository) FindDueForBiddingClose(ctx context.Context, now time.Time) ([]*marketplace.Batch, error) {
	var batchModels []models.BatchModel
	if err := r.preloaded(ctx).
		Where("status = ? AND bidding_status = ? AND bidding_closes_at <= ?",
			marketplace.BatchStatusBidding, marketplace.BiddingStatusOpen, now).
		Order("bidding_closes_at ASC").
		Find(&batchModels).Error; err != nil {
		return nil, err
	}
	batches := make([]*marketplace.Batch, len(batchModels))
	for i := range batchModels {
		batches[i] = batchModels[i].ToDomain()
	}
	return batches, nil
}

// Save creates or updates a batch. Bids, trade history, and retail
// orders are append-only logs, so children are upserted and never
// deleted here.
func (r *GormBatchRepository) Save(ctx context.Context, batch *marketplace.Batch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.BatchModelFromDomain(batch)

		if err := tx.Omit("Bids", "TradeHistory", "RetailOrders").Save(model).Error; err != nil {
			return err
		}

		return saveBatchChildren(tx, batch)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are saved to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormBatchRepository) SaveWithLockAndEvents(ctx context.Context, batch *marketplace.Batch, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := writeBatchWithLock(tx, batch); err != nil {
			return err
		}

		if err := saveBatchChildren(tx, batch); err != nil {
			return err
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// writeBatchWithLock persists the batch row guarded by the version the
// caller read. An aggregate with no stored row yet is inserted on its
// first save; an existing row is updated only while the stored version
// still matches, incrementing the version on success.
func writeBatchWithLock(tx *gorm.DB, batch *marketplace.Batch) error {
	var stored struct{ Version int }
	err := tx.Model(&models.BatchModel{}).
		Select("version").
		Where("id = ?", batch.ID).
		Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if batch.Version != 1 {
			// A previously persisted aggregate lost its row.
			return shared.ErrNotFound
		}
		model := models.BatchModelFromDomain(batch)
		return tx.Omit("Bids", "TradeHistory", "RetailOrders").Create(model).Error
	}
	if err != nil {
		return err
	}

	if stored.Version != batch.Version {
		return shared.ErrConcurrencyConflict
	}

	batch.Version++
	batch.UpdatedAt = time.Now()

	result := tx.Model(&models.BatchModel{}).
		Where("id = ? AND version = ?", batch.ID, stored.Version).
		Updates(map[string]interface{}{
			"current_owner_id":      batch.CurrentOwnerID,
			"quantity_kg":           batch.QuantityKg,
			"available_quantity_kg": batch.AvailableQuantityKg,
			"price_per_kg":          batch.PricePerKg,
			"status":                batch.Status,
			"bidding_status":        batch.BiddingStatus,
			"bidding_closes_at":     batch.BiddingClosesAt,
			"winning_bid_id":        batch.WinningBidID,
			"listed_at":             batch.ListedAt,
			"finished_at":           batch.FinishedAt,
			"version":               batch.Version,
			"updated_at":            batch.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// saveBatchChildren upserts the batch's append-only child rows.
func saveBatchChildren(tx *gorm.DB, batch *marketplace.Batch) error {
	for i := range batch.Bids {
		batch.Bids[i].BatchID = batch.ID
		bidModel := models.BidModelFromDomain(&batch.Bids[i])
		if err := tx.Save(bidModel).Error; err != nil {
			return err
		}
	}
	for i := range batch.TradeHistory {
		batch.TradeHistory[i].BatchID = batch.ID
		recordModel := models.TradeRecordModelFromDomain(&batch.TradeHistory[i])
		if err := tx.Save(recordModel).Error; err != nil {
			return err
		}
	}
	for i := range batch.RetailOrders {
		batch.RetailOrders[i].BatchID = batch.ID
		orderModel := models.RetailOrderModelFromDomain(&batch.RetailOrders[i])
		if err := tx.Save(orderModel).Error; err != nil {
			return err
		}
	}
	return nil
}

// decrementAvailableQuantity atomically reduces the available quantity
// with a single conditional update. The guard covers both the expected
// version and a non-negative remainder, so a losing writer can tell a
// stale read from an oversell. Sale commits run it inside their
// transaction as the quantity guard.
func decrementAvailableQuantity(tx *gorm.DB, batchID uuid.UUID, quantityKg decimal.Decimal, expectedVersion int) error {
	result := tx.Model(&models.BatchModel{}).
		Where("id = ? AND version = ? AND available_quantity_kg >= ?", batchID, expectedVersion, quantityKg).
		Updates(map[string]interface{}{
			"available_quantity_kg": gorm.Expr("available_quantity_kg - ?", quantityKg),
			"version":               gorm.Expr("version + 1"),
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Distinguish the failure cause for the caller.
	var row struct {
		Version             int
		AvailableQuantityKg decimal.Decimal
	}
	err := tx.Model(&models.BatchModel{}).
		Select("version", "available_quantity_kg").
		Where("id = ?", batchID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if row.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	return shared.ErrInsufficientQuantity
}

// writeSoldBatch persists a batch a sale was applied against. The
// quantity decrement runs as one conditional UPDATE instead of a
// check-then-act, so an oversell or a stale read loses at the
// statement; the remaining columns ride on the version the decrement
// installed.
func writeSoldBatch(tx *gorm.DB, batch *marketplace.Batch, soldQuantityKg decimal.Decimal) error {
	if err := decrementAvailableQuantity(tx, batch.ID, soldQuantityKg, batch.Version); err != nil {
		return err
	}

	batch.Version++
	batch.UpdatedAt = time.Now()

	result := tx.Model(&models.BatchModel{}).
		Where("id = ? AND version = ?", batch.ID, batch.Version).
		Updates(map[string]interface{}{
			"current_owner_id":  batch.CurrentOwnerID,
			"status":            batch.Status,
			"bidding_status":    batch.BiddingStatus,
			"bidding_closes_at": batch.BiddingClosesAt,
			"winning_bid_id":    batch.WinningBidID,
			"listed_at":         batch.ListedAt,
			"finished_at":       batch.FinishedAt,
			"updated_at":        batch.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ExistsByBatchNumber checks whether a batch number is already taken
func (r *GormBatchRepository) ExistsByBatchNumber(ctx context.Context, batchNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BatchModel{}).
		Where("batch_number = ?", batchNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateBatchNumber generates a unique batch number.
// Format: KN-YYYY-NNNNNN (e.g., KN-2026-000001)
func (r *GormBatchRepository) GenerateBatchNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("KN-%d-", year)

	var lastBatch models.BatchModel
	err := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Where("batch_number LIKE ?", prefix+"%").
		Order("batch_number DESC").
		First(&lastBatch).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastBatch.BatchNumber != "" {
		parts := strings.Split(lastBatch.BatchNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	batchNumber := fmt.Sprintf("%s%06d", prefix, nextNum)

	exists, err := r.ExistsByBatchNumber(ctx, batchNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			batchNumber = fmt.Sprintf("%s%06d", prefix, nextNum)
			exists, err = r.ExistsByBatchNumber(ctx, batchNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				return batchNumber, nil
			}
		}
		return "", fmt.Errorf("failed to generate unique batch number after 100 attempts")
	}

	return batchNumber, nil
}

// CountByStatus counts batches in a given lifecycle status
func (r *GormBatchRepository) CountByStatus(ctx context.Context, status marketplace.BatchStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BatchModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a batch and its child rows
func (r *GormBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", id).Delete(&models.BidModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("batch_id = ?", id).Delete(&models.TradeRecordModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("batch_id = ?", id).Delete(&models.RetailOrderModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.BatchModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
