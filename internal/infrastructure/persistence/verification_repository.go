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

// GormVerificationRepository implements VerificationRepository using GORM
type GormVerificationRepository struct {
	db *gorm.DB
}

// NewGormVerificationRepository creates a new GormVerificationRepository
func NewGormVerificationRepository(db *gorm.DB) *GormVerificationRepository {
	return &GormVerificationRepository{db: db}
}

// FindByID finds a verification request by its ID
func (r *GormVerificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Verification, error) {
	var model models.VerificationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds the verification request of a user
func (r *GormVerificationRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*fulfillment.Verification, error) {
	var model models.VerificationModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStatus finds verification requests in a given status
func (r *GormVerificationRepository) FindByStatus(ctx context.Context, status fulfillment.VerificationStatus, filter shared.Filter) (*shared.Paginated[*fulfillment.Verification], error) {
	query := r.db.WithContext(ctx).Model(&models.VerificationModel{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var verificationModels []models.VerificationModel
	if err := applyPagination(query, filter, VerificationSortFields).Find(&verificationModels).Error; err != nil {
		return nil, err
	}
	verifications := make([]*fulfillment.Verification, len(verificationModels))
	for i := range verificationModels {
		verifications[i] = verificationModels[i].ToDomain()
	}
	page := shared.NewPaginated(verifications, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Save creates or updates a verification request
func (r *GormVerificationRepository) Save(ctx context.Context, verification *fulfillment.Verification) error {
	model := models.VerificationModelFromDomain(verification)
	return r.db.WithContext(ctx).Save(model).Error
}
