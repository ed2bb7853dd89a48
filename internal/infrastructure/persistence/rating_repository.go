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

// GormRatingRepository implements RatingRepository using GORM
type GormRatingRepository struct {
	db *gorm.DB
}

// NewGormRatingRepository creates a new GormRatingRepository
func NewGormRatingRepository(db *gorm.DB) *GormRatingRepository {
	return &GormRatingRepository{db: db}
}

// FindByID finds a rating by its ID
func (r *GormRatingRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Rating, error) {
	var model models.RatingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySale finds all ratings submitted for a sale
func (r *GormRatingRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*fulfillment.Rating, error) {
	var ratingModels []models.RatingModel
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&ratingModels).Error; err != nil {
		return nil, err
	}
	ratings := make([]*fulfillment.Rating, len(ratingModels))
	for i := range ratingModels {
		ratings[i] = ratingModels[i].ToDomain()
	}
	return ratings, nil
}

// FindByRatee finds ratings received by a user
func (r *GormRatingRepository) FindByRatee(ctx context.Context, rateeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*fulfillment.Rating], error) {
	query := r.db.WithContext(ctx).Model(&models.RatingModel{}).Where("ratee_id = ?", rateeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var ratingModels []models.RatingModel
	if err := applyPagination(query, filter, RatingSortFields).Find(&ratingModels).Error; err != nil {
		return nil, err
	}
	ratings := make([]*fulfillment.Rating, len(ratingModels))
	for i := range ratingModels {
		ratings[i] = ratingModels[i].ToDomain()
	}
	page := shared.NewPaginated(ratings, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ExistsBySaleAndRater backs the one-rating-per-rater-per-sale rule
func (r *GormRatingRepository) ExistsBySaleAndRater(ctx context.Context, saleID, raterID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RatingModel{}).
		Where("sale_id = ? AND rater_id = ?", saleID, raterID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AverageForRatee returns the average score and rating count for a user
func (r *GormRatingRepository) AverageForRatee(ctx context.Context, rateeID uuid.UUID) (float64, int64, error) {
	var row struct {
		Average float64
		Count   int64
	}
	if err := r.db.WithContext(ctx).Model(&models.RatingModel{}).
		Select("COALESCE(AVG(score), 0) AS average, COUNT(*) AS count").
		Where("ratee_id = ?", rateeID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Average, row.Count, nil
}

// Save creates or updates a rating
func (r *GormRatingRepository) Save(ctx context.Context, rating *fulfillment.Rating) error {
	model := models.RatingModelFromDomain(rating)
	return r.db.WithContext(ctx).Save(model).Error
}
