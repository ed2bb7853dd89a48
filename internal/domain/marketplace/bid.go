package marketplace

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// BidStatus represents the status of a distributor bid
type BidStatus string

const (
	BidStatusPending   BidStatus = "PENDING"
	BidStatusAccepted  BidStatus = "ACCEPTED"
	BidStatusRejected  BidStatus = "REJECTED"
	BidStatusCancelled BidStatus = "CANCELLED"
)

// IsValid checks if the status is a valid BidStatus
func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusPending, BidStatusAccepted, BidStatusRejected, BidStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BidStatus
func (s BidStatus) String() string {
	return string(s)
}

// IsFinal returns true once the bid can no longer change status
func (s BidStatus) IsFinal() bool {
	return s == BidStatusAccepted || s == BidStatusRejected || s == BidStatusCancelled
}

// Bid represents a distributor's offer on a batch during an open bidding
// window. Bids are append-only: a bid record is never removed, it only
// moves through its status machine.
type Bid struct {
	ID          uuid.UUID
	BatchID     uuid.UUID
	BidderID    uuid.UUID
	AmountPerKg decimal.Decimal
	Status      BidStatus
	BidDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBid creates a new pending bid
func NewBid(batchID, bidderID uuid.UUID, amountPerKg decimal.Decimal, bidDate time.Time) (*Bid, error) {
	if bidderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BIDDER", "Bidder ID cannot be empty")
	}
	if amountPerKg.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bid amount must be positive")
	}

	now := time.Now()
	return &Bid{
		ID:          uuid.New(),
		BatchID:     batchID,
		BidderID:    bidderID,
		AmountPerKg: amountPerKg,
		Status:      BidStatusPending,
		BidDate:     bidDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Accept marks the bid as the winning bid
func (b *Bid) Accept() error {
	if b.Status != BidStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending bids can be accepted")
	}
	b.Status = BidStatusAccepted
	b.UpdatedAt = time.Now()
	return nil
}

// Reject marks the bid as rejected
func (b *Bid) Reject() error {
	if b.Status != BidStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending bids can be rejected")
	}
	b.Status = BidStatusRejected
	b.UpdatedAt = time.Now()
	return nil
}

// Cancel withdraws the bid; only the bidder may do this, and only while
// the bid is still pending. Accepted bids go through dispute resolution.
func (b *Bid) Cancel(bidderID uuid.UUID) error {
	if b.BidderID != bidderID {
		return shared.ErrForbidden
	}
	if b.Status != BidStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending bids can be cancelled")
	}
	b.Status = BidStatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// IsPending returns true if the bid is still pending
func (b *Bid) IsPending() bool {
	return b.Status == BidStatusPending
}

// Outbids reports whether this bid beats the other under the winner rule:
// higher amount wins; on equal amounts the earlier bid wins.
func (b *Bid) Outbids(other *Bid) bool {
	if other == nil {
		return true
	}
	if b.AmountPerKg.GreaterThan(other.AmountPerKg) {
		return true
	}
	if b.AmountPerKg.Equal(other.AmountPerKg) {
		return b.BidDate.Before(other.BidDate)
	}
	return false
}
