package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/fulfillment"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// QualityService records batch inspections and participant ratings
type QualityService struct {
	inspectionRepo fulfillment.QualityInspectionRepository
	ratingRepo     fulfillment.RatingRepository
	batchRepo      marketplace.BatchRepository
	saleRepo       trade.SaleRepository
	logger         *zap.Logger
}

// NewQualityService creates a new quality service
func NewQualityService(
	inspectionRepo fulfillment.QualityInspectionRepository,
	ratingRepo fulfillment.RatingRepository,
	batchRepo marketplace.BatchRepository,
	saleRepo trade.SaleRepository,
	logger *zap.Logger,
) *QualityService {
	return &QualityService{
		inspectionRepo: inspectionRepo,
		ratingRepo:     ratingRepo,
		batchRepo:      batchRepo,
		saleRepo:       saleRepo,
		logger:         logger,
	}
}

// RecordInspection stores an inspection result for an existing batch
func (s *QualityService) RecordInspection(ctx context.Context, inspectorID uuid.UUID, req RecordInspectionRequest) (*InspectionResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}

	inspection, err := fulfillment.NewQualityInspection(batch.ID, inspectorID,
		req.Grade, req.MoisturePercent, req.Passed, req.Notes, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.inspectionRepo.Save(ctx, inspection); err != nil {
		return nil, err
	}

	s.logger.Info("Inspection recorded",
		zap.String("batch_number", batch.BatchNumber),
		zap.String("grade", req.Grade),
		zap.Bool("passed", req.Passed),
	)

	response := ToInspectionResponse(inspection)
	return &response, nil
}

// ListInspections lists the inspection history of a batch
func (s *QualityService) ListInspections(ctx context.Context, batchID uuid.UUID) ([]InspectionResponse, error) {
	inspections, err := s.inspectionRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	items := make([]InspectionResponse, 0, len(inspections))
	for _, qi := range inspections {
		items = append(items, ToInspectionResponse(qi))
	}
	return items, nil
}

// SubmitRating rates the counterpart of a completed sale. A participant
// may rate each sale once.
func (s *QualityService) SubmitRating(ctx context.Context, raterID uuid.UUID, req SubmitRatingRequest) (*RatingResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, req.SaleID)
	if err != nil {
		return nil, err
	}
	if sale.SellerID != raterID && sale.BuyerID != raterID {
		return nil, shared.ErrForbidden
	}
	if sale.SellerID != req.RateeID && sale.BuyerID != req.RateeID {
		return nil, shared.NewDomainError("INVALID_PARTY", "Ratee is not a party to the sale")
	}

	exists, err := s.ratingRepo.ExistsBySaleAndRater(ctx, req.SaleID, raterID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_RATING", "Sale has already been rated by this participant")
	}

	rating, err := fulfillment.NewRating(req.SaleID, raterID, req.RateeID, req.Score, req.Comment)
	if err != nil {
		return nil, err
	}

	if err := s.ratingRepo.Save(ctx, rating); err != nil {
		return nil, err
	}

	response := ToRatingResponse(rating)
	return &response, nil
}

// RatingSummary returns the average score a participant has received
func (s *QualityService) RatingSummary(ctx context.Context, rateeID uuid.UUID) (*RatingSummaryResponse, error) {
	average, count, err := s.ratingRepo.AverageForRatee(ctx, rateeID)
	if err != nil {
		return nil, err
	}
	return &RatingSummaryResponse{
		RateeID: rateeID,
		Average: average,
		Count:   count,
	}, nil
}
