package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/fulfillment"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/persistence/models"
)

// GormLogisticsRepository implements LogisticsRepository using GORM
type GormLogisticsRepository struct {
	db *gorm.DB
}

// NewGormLogisticsRepository creates a new GormLogisticsRepository
func NewGormLogisticsRepository(db *gorm.DB) *GormLogisticsRepository {
	return &GormLogisticsRepository{db: db}
}

// FindByID finds a shipment by its ID
func (r *GormLogisticsRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Logistics, error) {
	var model models.LogisticsModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySale finds the shipment for a sale
func (r *GormLogisticsRepository) FindBySale(ctx context.Context, saleID uuid.UUID) (*fulfillment.Logistics, error) {
	var model models.LogisticsModel
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBatch finds all shipments carrying quantity from a batch
func (r *GormLogisticsRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*fulfillment.Logistics, error) {
	var logisticsModels []models.LogisticsModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("scheduled_at ASC").
		Find(&logisticsModels).Error; err != nil {
		return nil, err
	}
	shipments := make([]*fulfillment.Logistics, len(logisticsModels))
	for i := range logisticsModels {
		shipments[i] = logisticsModels[i].ToDomain()
	}
	return shipments, nil
}

// FindByStatus finds shipments in a given status
func (r *GormLogisticsRepository) FindByStatus(ctx context.Context, status fulfillment.ShipmentStatus, filter shared.Filter) (*shared.Paginated[*fulfillment.Logistics], error) {
	query := r.db.WithContext(ctx).Model(&models.LogisticsModel{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logisticsModels []models.LogisticsModel
	if err := applyPagination(query, filter, LogisticsSortFields).Find(&logisticsModels).Error; err != nil {
		return nil, err
	}
	shipments := make([]*fulfillment.Logistics, len(logisticsModels))
	for i := range logisticsModels {
		shipments[i] = logisticsModels[i].ToDomain()
	}
	page := shared.NewPaginated(shipments, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Save creates or updates a shipment
func (r *GormLogisticsRepository) Save(ctx context.Context, logistics *fulfillment.Logistics) error {
	model := models.LogisticsModelFromDomain(logistics)
	return r.db.WithContext(ctx).Save(model).Error
}
