package marketplace

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// Batch event type constants
const (
	EventTypeBatchCreated    = "batch.created"
	EventTypeBatchListed     = "batch.listed"
	EventTypeBiddingOpened   = "batch.bidding_opened"
	EventTypeBidPlaced       = "batch.bid_placed"
	EventTypeBidCancelled    = "batch.bid_cancelled"
	EventTypeBiddingClosed   = "batch.bidding_closed"
	EventTypeBatchRelisted   = "batch.relisted"
	EventTypeBatchFinished   = "batch.finished"
	EventTypeBatchOverridden = "batch.status_overridden"
)

// BatchCreatedEvent is published when a new batch is registered
type BatchCreatedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string          `json:"batch_number"`
	FarmerID    uuid.UUID       `json:"farmer_id"`
	CropName    string          `json:"crop_name"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
}

// NewBatchCreatedEvent creates a new batch created event
func NewBatchCreatedEvent(batch *Batch) *BatchCreatedEvent {
	return &BatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCreated, "Batch", batch.ID),
		BatchNumber:     batch.BatchNumber,
		FarmerID:        batch.FarmerID,
		CropName:        batch.CropName,
		QuantityKg:      batch.QuantityKg,
	}
}

// BatchListedEvent is published when a batch is offered for sale
type BatchListedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string          `json:"batch_number"`
	SellerID    uuid.UUID       `json:"seller_id"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
}

// NewBatchListedEvent creates a new batch listed event
func NewBatchListedEvent(batch *Batch) *BatchListedEvent {
	return &BatchListedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchListed, "Batch", batch.ID),
		BatchNumber:     batch.BatchNumber,
		SellerID:        batch.SellerOfRecord(),
		PricePerKg:      batch.PricePerKg,
	}
}

// BiddingOpenedEvent is published when a bidding window opens
type BiddingOpenedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string    `json:"batch_number"`
	ClosesAt    time.Time `json:"closes_at"`
}

// NewBiddingOpenedEvent creates a new bidding opened event
func NewBiddingOpenedEvent(batch *Batch, closesAt time.Time) *BiddingOpenedEvent {
	return &BiddingOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBiddingOpened, "Batch", batch.ID),
		BatchNumber:     batch.BatchNumber,
		ClosesAt:        closesAt,
	}
}

// BidPlacedEvent is published when a bid lands on an open window
type BidPlacedEvent struct {
	shared.BaseDomainEvent
	BidID       uuid.UUID       `json:"bid_id"`
	BidderID    uuid.UUID       `json:"bidder_id"`
	AmountPerKg decimal.Decimal `json:"amount_per_kg"`
}

// NewBidPlacedEvent creates a new bid placed event
func NewBidPlacedEvent(batch *Batch, bid *Bid) *BidPlacedEvent {
	return &BidPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBidPlaced, "Batch", batch.ID),
		BidID:           bid.ID,
		BidderID:        bid.BidderID,
		AmountPerKg:     bid.AmountPerKg,
	}
}

// BidCancelledEvent is published when a bidder withdraws a pending bid
type BidCancelledEvent struct {
	shared.BaseDomainEvent
	BidID    uuid.UUID `json:"bid_id"`
	BidderID uuid.UUID `json:"bidder_id"`
}

// NewBidCancelledEvent creates a new bid cancelled event
func NewBidCancelledEvent(batch *Batch, bid *Bid) *BidCancelledEvent {
	return &BidCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBidCancelled, "Batch", batch.ID),
		BidID:           bid.ID,
		BidderID:        bid.BidderID,
	}
}

// BiddingClosedEvent is published when a bidding window closes.
// WinningBidID is nil when the window closed without eligible bids.
type BiddingClosedEvent struct {
	shared.BaseDomainEvent
	BatchNumber  string           `json:"batch_number"`
	WinningBidID *uuid.UUID       `json:"winning_bid_id,omitempty"`
	WinnerID     *uuid.UUID       `json:"winner_id,omitempty"`
	AmountPerKg  *decimal.Decimal `json:"amount_per_kg,omitempty"`
}

// NewBiddingClosedEvent creates a new bidding closed event
func NewBiddingClosedEvent(batch *Batch, winner *Bid) *BiddingClosedEvent {
	event := &BiddingClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBiddingClosed, "Batch", batch.ID),
		BatchNumber:     batch.BatchNumber,
	}
	if winner != nil {
		winID := winner.ID
		winnerID := winner.BidderID
		amount := winner.AmountPerKg
		event.WinningBidID = &winID
		event.WinnerID = &winnerID
		event.AmountPerKg = &amount
	}
	return event
}

// BatchRelistedEvent is published when remaining quantity is relisted
// for retail sale
type BatchRelistedEvent struct {
	shared.BaseDomainEvent
	BatchNumber         string          `json:"batch_number"`
	OwnerID             uuid.UUID       `json:"owner_id"`
	PricePerKg          decimal.Decimal `json:"price_per_kg"`
	AvailableQuantityKg decimal.Decimal `json:"available_quantity_kg"`
}

// NewBatchRelistedEvent creates a new batch relisted event
func NewBatchRelistedEvent(batch *Batch) *BatchRelistedEvent {
	return &BatchRelistedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeBatchRelisted, "Batch", batch.ID),
		BatchNumber:         batch.BatchNumber,
		OwnerID:             batch.CurrentOwnerID,
		PricePerKg:          batch.PricePerKg,
		AvailableQuantityKg: batch.AvailableQuantityKg,
	}
}

// BatchFinishedEvent is published when a batch reaches the terminal state
type BatchFinishedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string    `json:"batch_number"`
	OwnerID     uuid.UUID `json:"owner_id"`
}

// NewBatchFinishedEvent creates a new batch finished event
func NewBatchFinishedEvent(batch *Batch) *BatchFinishedEvent {
	return &BatchFinishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchFinished, "Batch", batch.ID),
		BatchNumber:     batch.BatchNumber,
		OwnerID:         batch.CurrentOwnerID,
	}
}

// BatchOverriddenEvent is published on an administrative status override
type BatchOverriddenEvent struct {
	shared.BaseDomainEvent
	BatchNumber string      `json:"batch_number"`
	Status      BatchStatus `json:"status"`
	OwnerID     uuid.UUID   `json:"owner_id"`
}

// NewBatchOverriddenEvent creates a new batch overridden event
func NewBatchOverriddenEvent(batch *Batch) *BatchOverriddenEvent {
	return &BatchOverriddenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchOverridden, "Batch", batch.ID),
		BatchNumber:     batch.BatchNumber,
		Status:          batch.Status,
		OwnerID:         batch.CurrentOwnerID,
	}
}
