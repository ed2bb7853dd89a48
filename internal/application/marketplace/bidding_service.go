package marketplace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

// BiddingWindowConfig bounds the bidding windows sellers may open
type BiddingWindowConfig struct {
	MinWindow     time.Duration
	DefaultWindow time.Duration
}

// DefaultBiddingWindowConfig returns the stock window bounds
func DefaultBiddingWindowConfig() BiddingWindowConfig {
	return BiddingWindowConfig{
		MinWindow:     time.Hour,
		DefaultWindow: 72 * time.Hour,
	}
}

// BiddingService handles the bidding window operations on a batch
type BiddingService struct {
	batchRepo marketplace.BatchRepository
	windowCfg BiddingWindowConfig
}

// NewBiddingService creates a new BiddingService
func NewBiddingService(batchRepo marketplace.BatchRepository) *BiddingService {
	return NewBiddingServiceWithConfig(batchRepo, DefaultBiddingWindowConfig())
}

// NewBiddingServiceWithConfig creates a BiddingService with explicit window bounds
func NewBiddingServiceWithConfig(batchRepo marketplace.BatchRepository, windowCfg BiddingWindowConfig) *BiddingService {
	return &BiddingService{batchRepo: batchRepo, windowCfg: windowCfg}
}

// OpenBidding opens a timed bidding window on a listed batch.
// Only the seller of record may open bidding. A request without a
// closing time gets the default window; windows shorter than the
// configured minimum are rejected.
func (s *BiddingService) OpenBidding(ctx context.Context, callerID, batchID uuid.UUID, req OpenBiddingRequest) (*BatchResponse, error) {
	now := time.Now()
	closesAt := req.ClosesAt
	if closesAt.IsZero() {
		closesAt = now.Add(s.windowCfg.DefaultWindow)
	}
	if closesAt.Sub(now) < s.windowCfg.MinWindow {
		return nil, shared.NewDomainError("INVALID_CLOSING_DATE",
			fmt.Sprintf("Bidding window must be at least %s", s.windowCfg.MinWindow))
	}

	var result *BatchResponse
	err := withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.SellerOfRecord() != callerID {
			return shared.ErrOwnershipMismatch
		}
		if err := batch.OpenBidding(closesAt, time.Now()); err != nil {
			return err
		}
		if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
			return err
		}
		batch.ClearDomainEvents()
		response := ToBatchResponse(batch)
		result = &response
		return nil
	})
	return result, err
}

// PlaceBid places a bid on an open window
func (s *BiddingService) PlaceBid(ctx context.Context, bidderID, batchID uuid.UUID, req PlaceBidRequest) (*BidResponse, error) {
	var result *BidResponse
	err := withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		bid, err := batch.PlaceBid(bidderID, valueobject.NewMoneyINR(req.AmountPerKg), time.Now())
		if err != nil {
			return err
		}
		if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
			return err
		}
		batch.ClearDomainEvents()
		response := ToBidResponse(bid)
		result = &response
		return nil
	})
	return result, err
}

// CancelBid withdraws a pending bid
func (s *BiddingService) CancelBid(ctx context.Context, bidderID, batchID, bidID uuid.UUID) error {
	return withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if err := batch.CancelBid(bidID, bidderID); err != nil {
			return err
		}
		if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
			return err
		}
		batch.ClearDomainEvents()
		return nil
	})
}

// CloseBidding closes the window and settles the winner. The seller of
// record may close early; the scheduler closes windows past their date.
func (s *BiddingService) CloseBidding(ctx context.Context, callerID, batchID uuid.UUID) (*BatchResponse, error) {
	var result *BatchResponse
	err := withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.SellerOfRecord() != callerID {
			return shared.ErrOwnershipMismatch
		}
		if _, err := batch.CloseBidding(time.Now()); err != nil {
			return err
		}
		if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
			return err
		}
		batch.ClearDomainEvents()
		response := ToBatchResponse(batch)
		result = &response
		return nil
	})
	return result, err
}

// ListBids lists all bids on a batch
func (s *BiddingService) ListBids(ctx context.Context, batchID uuid.UUID) ([]BidResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	bids := make([]BidResponse, 0, len(batch.Bids))
	for i := range batch.Bids {
		bids = append(bids, ToBidResponse(&batch.Bids[i]))
	}
	return bids, nil
}
