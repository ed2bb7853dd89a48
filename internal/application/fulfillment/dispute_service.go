package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/fulfillment"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// DisputeService handles dispute intake and admin resolution
type DisputeService struct {
	disputeRepo fulfillment.DisputeRepository
	saleRepo    trade.SaleRepository
	logger      *zap.Logger
}

// NewDisputeService creates a new dispute service
func NewDisputeService(
	disputeRepo fulfillment.DisputeRepository,
	saleRepo trade.SaleRepository,
	logger *zap.Logger,
) *DisputeService {
	return &DisputeService{
		disputeRepo: disputeRepo,
		saleRepo:    saleRepo,
		logger:      logger,
	}
}

// Raise opens a dispute on a sale. The raiser must be a party to the
// sale and the accused must be the counterpart.
func (s *DisputeService) Raise(ctx context.Context, raisedByID uuid.UUID, req RaiseDisputeRequest) (*DisputeResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, req.SaleID)
	if err != nil {
		return nil, err
	}
	if sale.SellerID != raisedByID && sale.BuyerID != raisedByID {
		return nil, shared.ErrForbidden
	}
	if sale.SellerID != req.AgainstID && sale.BuyerID != req.AgainstID {
		return nil, shared.NewDomainError("INVALID_PARTY", "Accused participant is not a party to the sale")
	}

	dispute, err := fulfillment.NewDispute(req.SaleID, raisedByID, req.AgainstID, req.Reason, req.EvidenceURLs)
	if err != nil {
		return nil, err
	}

	if err := s.disputeRepo.Save(ctx, dispute); err != nil {
		return nil, err
	}

	s.logger.Info("Dispute raised",
		zap.String("sale_number", sale.SaleNumber),
		zap.String("dispute_id", dispute.ID.String()),
	)

	response := ToDisputeResponse(dispute)
	return &response, nil
}

// GetByID retrieves a dispute by ID
func (s *DisputeService) GetByID(ctx context.Context, id uuid.UUID) (*DisputeResponse, error) {
	dispute, err := s.disputeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDisputeResponse(dispute)
	return &response, nil
}

// ListBySale lists the disputes attached to a sale
func (s *DisputeService) ListBySale(ctx context.Context, saleID uuid.UUID) ([]DisputeResponse, error) {
	disputes, err := s.disputeRepo.FindBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	items := make([]DisputeResponse, 0, len(disputes))
	for _, d := range disputes {
		items = append(items, ToDisputeResponse(d))
	}
	return items, nil
}

// ListOpen pages through disputes awaiting review
func (s *DisputeService) ListOpen(ctx context.Context, page, pageSize int) ([]DisputeResponse, int64, error) {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 && pageSize <= 100 {
		f.PageSize = pageSize
	}

	result, err := s.disputeRepo.FindByStatus(ctx, fulfillment.DisputeStatusOpen, f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DisputeResponse, 0, len(result.Items))
	for _, d := range result.Items {
		items = append(items, ToDisputeResponse(d))
	}
	return items, result.Total, nil
}

// StartReview moves an open dispute under admin review
func (s *DisputeService) StartReview(ctx context.Context, id uuid.UUID) (*DisputeResponse, error) {
	dispute, err := s.disputeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := dispute.StartReview(); err != nil {
		return nil, err
	}
	if err := s.disputeRepo.Save(ctx, dispute); err != nil {
		return nil, err
	}
	response := ToDisputeResponse(dispute)
	return &response, nil
}

// Resolve closes a dispute with the admin's ruling
func (s *DisputeService) Resolve(ctx context.Context, resolverID, id uuid.UUID, req ResolveDisputeRequest) (*DisputeResponse, error) {
	dispute, err := s.disputeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Uphold {
		err = dispute.Resolve(resolverID, req.Resolution)
	} else {
		err = dispute.Reject(resolverID, req.Resolution)
	}
	if err != nil {
		return nil, err
	}

	if err := s.disputeRepo.Save(ctx, dispute); err != nil {
		return nil, err
	}

	s.logger.Info("Dispute closed",
		zap.String("dispute_id", dispute.ID.String()),
		zap.String("status", dispute.Status.String()),
	)

	response := ToDisputeResponse(dispute)
	return &response, nil
}

// AddEvidence attaches an evidence reference to a dispute still under
// consideration. Only the raiser may add evidence.
func (s *DisputeService) AddEvidence(ctx context.Context, callerID, id uuid.UUID, req AddEvidenceRequest) (*DisputeResponse, error) {
	dispute, err := s.disputeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dispute.RaisedByID != callerID {
		return nil, shared.ErrForbidden
	}
	if err := dispute.AddEvidence(req.URL); err != nil {
		return nil, err
	}
	if err := s.disputeRepo.Save(ctx, dispute); err != nil {
		return nil, err
	}
	response := ToDisputeResponse(dispute)
	return &response, nil
}
