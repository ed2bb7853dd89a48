package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/fulfillment"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// LogisticsService coordinates shipment scheduling and tracking for
// committed sales
type LogisticsService struct {
	logisticsRepo fulfillment.LogisticsRepository
	saleRepo      trade.SaleRepository
	logger        *zap.Logger
}

// NewLogisticsService creates a new logistics service
func NewLogisticsService(
	logisticsRepo fulfillment.LogisticsRepository,
	saleRepo trade.SaleRepository,
	logger *zap.Logger,
) *LogisticsService {
	return &LogisticsService{
		logisticsRepo: logisticsRepo,
		saleRepo:      saleRepo,
		logger:        logger,
	}
}

// Schedule books a shipment for a sale. Only a party to the sale may
// schedule, and a sale carries at most one shipment.
func (s *LogisticsService) Schedule(ctx context.Context, callerID uuid.UUID, req ScheduleShipmentRequest) (*LogisticsResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, req.SaleID)
	if err != nil {
		return nil, err
	}
	if sale.SellerID != callerID && sale.BuyerID != callerID {
		return nil, shared.ErrForbidden
	}

	if existing, err := s.logisticsRepo.FindBySale(ctx, req.SaleID); err == nil && existing != nil {
		return nil, shared.NewDomainError("SHIPMENT_EXISTS", "Sale already has a scheduled shipment")
	}

	pickup, err := req.PickupAddress.ToAddress()
	if err != nil {
		return nil, err
	}
	delivery, err := req.DeliveryAddress.ToAddress()
	if err != nil {
		return nil, err
	}

	logistics, err := fulfillment.NewLogistics(sale.ID, sale.BatchID, req.Carrier, pickup, delivery, req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	if err := s.logisticsRepo.Save(ctx, logistics); err != nil {
		return nil, err
	}

	s.logger.Info("Shipment scheduled",
		zap.String("sale_number", sale.SaleNumber),
		zap.String("carrier", req.Carrier),
	)

	response := ToLogisticsResponse(logistics)
	return &response, nil
}

// GetByID retrieves a shipment by ID
func (s *LogisticsService) GetByID(ctx context.Context, id uuid.UUID) (*LogisticsResponse, error) {
	logistics, err := s.logisticsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToLogisticsResponse(logistics)
	return &response, nil
}

// GetBySale retrieves the shipment attached to a sale
func (s *LogisticsService) GetBySale(ctx context.Context, saleID uuid.UUID) (*LogisticsResponse, error) {
	logistics, err := s.logisticsRepo.FindBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	response := ToLogisticsResponse(logistics)
	return &response, nil
}

// Dispatch marks a scheduled shipment in transit
func (s *LogisticsService) Dispatch(ctx context.Context, id uuid.UUID, req DispatchShipmentRequest) (*LogisticsResponse, error) {
	return s.mutate(ctx, id, func(l *fulfillment.Logistics) error {
		return l.Dispatch(req.TrackingNumber)
	})
}

// MarkDelivered records a successful delivery
func (s *LogisticsService) MarkDelivered(ctx context.Context, id uuid.UUID) (*LogisticsResponse, error) {
	return s.mutate(ctx, id, func(l *fulfillment.Logistics) error {
		return l.MarkDelivered(time.Now())
	})
}

// MarkFailed records a failed delivery with the carrier's reason
func (s *LogisticsService) MarkFailed(ctx context.Context, id uuid.UUID, req FailShipmentRequest) (*LogisticsResponse, error) {
	return s.mutate(ctx, id, func(l *fulfillment.Logistics) error {
		return l.MarkFailed(req.Reason)
	})
}

func (s *LogisticsService) mutate(ctx context.Context, id uuid.UUID, apply func(*fulfillment.Logistics) error) (*LogisticsResponse, error) {
	logistics, err := s.logisticsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(logistics); err != nil {
		return nil, err
	}
	if err := s.logisticsRepo.Save(ctx, logistics); err != nil {
		return nil, err
	}
	response := ToLogisticsResponse(logistics)
	return &response, nil
}
