package marketplace

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// BiddingCloseoutService closes bidding windows whose closing date has
// passed. It is driven by the scheduler; CloseDue can also be invoked
// directly from an admin endpoint.
type BiddingCloseoutService struct {
	batchRepo marketplace.BatchRepository
	logger    *zap.Logger
}

// NewBiddingCloseoutService creates a new BiddingCloseoutService
func NewBiddingCloseoutService(batchRepo marketplace.BatchRepository, logger *zap.Logger) *BiddingCloseoutService {
	return &BiddingCloseoutService{
		batchRepo: batchRepo,
		logger:    logger,
	}
}

// CloseoutStats contains statistics about one closeout pass
type CloseoutStats struct {
	TotalDue    int       `json:"total_due"`
	Closed      int       `json:"closed"`
	WithWinner  int       `json:"with_winner"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// CloseDue finds all batches with an overdue bidding window and closes
// each one. A version conflict on a single batch means someone else
// closed it concurrently; that batch is skipped, not failed.
func (s *BiddingCloseoutService) CloseDue(ctx context.Context) (*CloseoutStats, error) {
	now := time.Now()
	stats := &CloseoutStats{ProcessedAt: now}

	due, err := s.batchRepo.FindDueForBiddingClose(ctx, now)
	if err != nil {
		s.logger.Error("Failed to find batches due for bidding close", zap.Error(err))
		return nil, err
	}

	stats.TotalDue = len(due)
	if stats.TotalDue == 0 {
		s.logger.Debug("No bidding windows due for close")
		return stats, nil
	}

	s.logger.Info("Found bidding windows due for close", zap.Int("count", stats.TotalDue))

	for _, batch := range due {
		winner, err := s.closeOne(ctx, batch, now)
		if err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				s.logger.Debug("Bidding window closed concurrently",
					zap.String("batch_number", batch.BatchNumber))
				continue
			}
			s.logger.Error("Failed to close bidding window",
				zap.String("batch_id", batch.ID.String()),
				zap.String("batch_number", batch.BatchNumber),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Closed++
		if winner != nil {
			stats.WithWinner++
		}
	}

	s.logger.Info("Completed bidding closeout pass",
		zap.Int("due", stats.TotalDue),
		zap.Int("closed", stats.Closed),
		zap.Int("with_winner", stats.WithWinner),
		zap.Int("failed", stats.Failed),
	)

	return stats, nil
}

func (s *BiddingCloseoutService) closeOne(ctx context.Context, batch *marketplace.Batch, now time.Time) (*marketplace.Bid, error) {
	winner, err := batch.CloseBidding(now)
	if err != nil {
		return nil, err
	}
	if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
		return nil, err
	}
	batch.ClearDomainEvents()

	if winner != nil {
		s.logger.Debug("Bidding window closed with winner",
			zap.String("batch_number", batch.BatchNumber),
			zap.String("winner_id", winner.BidderID.String()),
			zap.String("amount_per_kg", winner.AmountPerKg.String()),
		)
	} else {
		s.logger.Debug("Bidding window closed without bids",
			zap.String("batch_number", batch.BatchNumber))
	}
	return winner, nil
}
