package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// LogisticsRepository defines the persistence contract for shipments
type LogisticsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Logistics, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) (*Logistics, error)
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*Logistics, error)
	FindByStatus(ctx context.Context, status ShipmentStatus, filter shared.Filter) (*shared.Paginated[*Logistics], error)
	Save(ctx context.Context, logistics *Logistics) error
}

// DisputeRepository defines the persistence contract for disputes
type DisputeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Dispute, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]*Dispute, error)
	FindByStatus(ctx context.Context, status DisputeStatus, filter shared.Filter) (*shared.Paginated[*Dispute], error)
	Save(ctx context.Context, dispute *Dispute) error
}

// QualityInspectionRepository defines the persistence contract for
// inspection records
type QualityInspectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*QualityInspection, error)
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*QualityInspection, error)
	Save(ctx context.Context, inspection *QualityInspection) error
}

// RatingRepository defines the persistence contract for ratings
type RatingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Rating, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]*Rating, error)
	FindByRatee(ctx context.Context, rateeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Rating], error)
	// ExistsBySaleAndRater backs the one-rating-per-rater-per-sale rule.
	ExistsBySaleAndRater(ctx context.Context, saleID, raterID uuid.UUID) (bool, error)
	AverageForRatee(ctx context.Context, rateeID uuid.UUID) (float64, int64, error)
	Save(ctx context.Context, rating *Rating) error
}

// VerificationRepository defines the persistence contract for KYC reviews
type VerificationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Verification, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*Verification, error)
	FindByStatus(ctx context.Context, status VerificationStatus, filter shared.Filter) (*shared.Paginated[*Verification], error)
	Save(ctx context.Context, verification *Verification) error
}
