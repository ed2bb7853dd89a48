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

// GormQualityInspectionRepository implements QualityInspectionRepository using GORM
type GormQualityInspectionRepository struct {
	db *gorm.DB
}

// NewGormQualityInspectionRepository creates a new GormQualityInspectionRepository
func NewGormQualityInspectionRepository(db *gorm.DB) *GormQualityInspectionRepository {
	return &GormQualityInspectionRepository{db: db}
}

// FindByID finds an inspection by its ID
func (r *GormQualityInspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.QualityInspection, error) {
	var model models.QualityInspectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBatch finds all inspections recorded for a batch
func (r *GormQualityInspectionRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*fulfillment.QualityInspection, error) {
	var inspectionModels []models.QualityInspectionModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("inspected_at ASC").
		Find(&inspectionModels).Error; err != nil {
		return nil, err
	}
	inspections := make([]*fulfillment.QualityInspection, len(inspectionModels))
	for i := range inspectionModels {
		inspections[i] = inspectionModels[i].ToDomain()
	}
	return inspections, nil
}

// Save creates or updates an inspection record
func (r *GormQualityInspectionRepository) Save(ctx context.Context, inspection *fulfillment.QualityInspection) error {
	model := models.QualityInspectionModelFromDomain(inspection)
	return r.db.WithContext(ctx).Save(model).Error
}
