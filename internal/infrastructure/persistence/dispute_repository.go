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

// GormDisputeRepository implements DisputeRepository using GORM
type GormDisputeRepository struct {
	db *gorm.DB
}

// NewGormDisputeRepository creates a new GormDisputeRepository
func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

// FindByID finds a dispute by its ID
func (r *GormDisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Dispute, error) {
	var model models.DisputeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySale finds all disputes raised against a sale
func (r *GormDisputeRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*fulfillment.Dispute, error) {
	var disputeModels []models.DisputeModel
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&disputeModels).Error; err != nil {
		return nil, err
	}
	disputes := make([]*fulfillment.Dispute, len(disputeModels))
	for i := range disputeModels {
		disputes[i] = disputeModels[i].ToDomain()
	}
	return disputes, nil
}

// FindByStatus finds disputes in a given status
func (r *GormDisputeRepository) FindByStatus(ctx context.Context, status fulfillment.DisputeStatus, filter shared.Filter) (*shared.Paginated[*fulfillment.Dispute], error) {
	query := r.db.WithContext(ctx).Model(&models.DisputeModel{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var disputeModels []models.DisputeModel
	if err := applyPagination(query, filter, DisputeSortFields).Find(&disputeModels).Error; err != nil {
		return nil, err
	}
	disputes := make([]*fulfillment.Dispute, len(disputeModels))
	for i := range disputeModels {
		disputes[i] = disputeModels[i].ToDomain()
	}
	page := shared.NewPaginated(disputes, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Save creates or updates a dispute
func (r *GormDisputeRepository) Save(ctx context.Context, dispute *fulfillment.Dispute) error {
	model := models.DisputeModelFromDomain(dispute)
	return r.db.WithContext(ctx).Save(model).Error
}
