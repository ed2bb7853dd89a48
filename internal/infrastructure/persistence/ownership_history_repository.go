package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/persistence/models"
)

// GormOwnershipHistoryRepository implements OwnershipHistoryRepository using GORM
type GormOwnershipHistoryRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormOwnershipHistoryRepository creates a new GormOwnershipHistoryRepository
func NewGormOwnershipHistoryRepository(db *gorm.DB) *GormOwnershipHistoryRepository {
	return &GormOwnershipHistoryRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormOwnershipHistoryRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByBatch finds all ownership records for a batch ordered by transfer date
func (r *GormOwnershipHistoryRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]trade.OwnershipRecord, error) {
	var recordModels []models.OwnershipRecordModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("transfer_date ASC, created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]trade.OwnershipRecord, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, nil
}

// LineageForBatch loads the chain ordered by transfer date and validates
// its continuity.
func (r *GormOwnershipHistoryRepository) LineageForBatch(ctx context.Context, batchID uuid.UUID) (*trade.Lineage, error) {
	records, err := r.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return trade.NewLineage(batchID, records)
}

// Save creates or updates an ownership record
func (r *GormOwnershipHistoryRepository) Save(ctx context.Context, record *trade.OwnershipRecord) error {
	model := models.OwnershipRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithBatch persists the record and the batch row in one
// transaction. An administrative owner change that commits the batch
// but loses the record would break every later lineage read, so the
// two writes share a transaction.
func (r *GormOwnershipHistoryRepository) SaveWithBatch(ctx context.Context, record *trade.OwnershipRecord, batch *marketplace.Batch, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := writeBatchWithLock(tx, batch); err != nil {
			return err
		}
		if err := saveBatchChildren(tx, batch); err != nil {
			return err
		}

		recordModel := models.OwnershipRecordModelFromDomain(record)
		if err := tx.Create(recordModel).Error; err != nil {
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
