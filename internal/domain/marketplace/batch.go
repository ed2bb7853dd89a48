package marketplace

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

// BatchStatus represents the lifecycle stage of a batch.
// It is the single source of truth for where a batch sits in the
// farmer → distributor → retailer chain.
type BatchStatus string

const (
	BatchStatusCreated            BatchStatus = "CREATED"
	BatchStatusListed             BatchStatus = "LISTED"
	BatchStatusBidding            BatchStatus = "BIDDING"
	BatchStatusInTransaction      BatchStatus = "IN_TRANSACTION"
	BatchStatusSoldToDistributor  BatchStatus = "SOLD_TO_DISTRIBUTOR"
	BatchStatusListedForRetailers BatchStatus = "LISTED_FOR_RETAILERS"
	BatchStatusFinished           BatchStatus = "FINISHED"
)

// IsValid checks if the status is a valid BatchStatus
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusCreated, BatchStatusListed, BatchStatusBidding,
		BatchStatusInTransaction, BatchStatusSoldToDistributor,
		BatchStatusListedForRetailers, BatchStatusFinished:
		return true
	}
	return false
}

// String returns the string representation of BatchStatus
func (s BatchStatus) String() string {
	return string(s)
}

// IsTerminal returns true for the terminal lifecycle state
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusFinished
}

// CanTransitionTo checks if the status can move to the target status.
// This is the complete forward-transition table; anything not listed is
// rejected. Administrative overrides bypass this check but still record
// ownership history.
func (s BatchStatus) CanTransitionTo(target BatchStatus) bool {
	switch s {
	case BatchStatusCreated:
		return target == BatchStatusListed
	case BatchStatusListed:
		return target == BatchStatusBidding || target == BatchStatusInTransaction
	case BatchStatusBidding:
		return target == BatchStatusInTransaction || target == BatchStatusListed
	case BatchStatusInTransaction:
		return target == BatchStatusSoldToDistributor
	case BatchStatusSoldToDistributor:
		return target == BatchStatusListedForRetailers
	case BatchStatusListedForRetailers:
		return target == BatchStatusFinished
	case BatchStatusFinished:
		return false
	}
	return false
}

// BiddingStatus represents the open/closed sub-state of a bidding window
type BiddingStatus string

const (
	BiddingStatusOpen   BiddingStatus = "OPEN"
	BiddingStatusClosed BiddingStatus = "CLOSED"
)

// IsValid checks if the status is a valid BiddingStatus
func (s BiddingStatus) IsValid() bool {
	return s == BiddingStatusOpen || s == BiddingStatusClosed
}

// TradeRecord is one entry in a batch's append-only trade history.
// The history tracks who holds the remaining sellable quantity at what
// ask price; the latest entry identifies the seller of record.
type TradeRecord struct {
	ID         uuid.UUID
	BatchID    uuid.UUID
	OwnerID    uuid.UUID
	PricePerKg decimal.Decimal
	RecordedAt time.Time
}

// RetailOrder is one entry in a batch's append-only retail order log:
// a partial purchase by a retailer against the remaining quantity.
type RetailOrder struct {
	ID         uuid.UUID
	BatchID    uuid.UUID
	RetailerID uuid.UUID
	QuantityKg decimal.Decimal
	PricePerKg decimal.Decimal
	OrderedAt  time.Time
}

// Batch is the aggregate root for a tracked lot of produce moving
// through the supply chain. All lifecycle mutations go through its
// methods; persistence serializes concurrent mutations per batch via
// the aggregate version.
type Batch struct {
	shared.BaseAggregateRoot
	BatchNumber string
	FarmerID    uuid.UUID
	// CurrentOwnerID is the owner of record: the most recent buyer, or
	// the farmer before any sale. It must always match the owner derived
	// from the batch's ownership history chain.
	CurrentOwnerID      uuid.UUID
	CropName            string
	Variety             string
	QuantityKg          decimal.Decimal
	AvailableQuantityKg decimal.Decimal
	PricePerKg          decimal.Decimal
	Status              BatchStatus
	BiddingStatus       BiddingStatus
	BiddingClosesAt     *time.Time
	WinningBidID        *uuid.UUID
	Bids                []Bid
	TradeHistory        []TradeRecord
	RetailOrders        []RetailOrder
	ListedAt            *time.Time
	FinishedAt          *time.Time
}

// NewBatch creates a new batch owned by the farmer, in CREATED status.
// The trade history is seeded with the farmer's initial ask price.
func NewBatch(farmerID uuid.UUID, batchNumber, cropName, variety string, quantityKg decimal.Decimal, pricePerKg valueobject.Money) (*Batch, error) {
	if farmerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FARMER", "Farmer ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if len(batchNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot exceed 50 characters")
	}
	if cropName == "" {
		return nil, shared.NewDomainError("INVALID_CROP", "Crop name cannot be empty")
	}
	if quantityKg.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if pricePerKg.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price per kg cannot be negative")
	}

	batch := &Batch{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		BatchNumber:         batchNumber,
		FarmerID:            farmerID,
		CurrentOwnerID:      farmerID,
		CropName:            cropName,
		Variety:             variety,
		QuantityKg:          quantityKg,
		AvailableQuantityKg: quantityKg,
		PricePerKg:          pricePerKg.Amount(),
		Status:              BatchStatusCreated,
		BiddingStatus:       BiddingStatusClosed,
		Bids:                make([]Bid, 0),
		TradeHistory:        make([]TradeRecord, 0),
		RetailOrders:        make([]RetailOrder, 0),
	}
	batch.appendTradeRecord(farmerID, batch.PricePerKg, time.Now())

	batch.AddDomainEvent(NewBatchCreatedEvent(batch))

	return batch, nil
}

// List offers the batch for sale, transitioning CREATED → LISTED.
// Requires a positive ask price and an untouched quantity.
func (b *Batch) List() error {
	if !b.Status.CanTransitionTo(BatchStatusListed) {
		return transitionError(b.Status, BatchStatusListed)
	}
	if b.PricePerKg.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Price per kg must be positive before listing")
	}
	if !b.AvailableQuantityKg.Equal(b.QuantityKg) {
		return shared.NewDomainError("INVALID_QUANTITY", "Batch must be untouched before first listing")
	}

	now := time.Now()
	b.Status = BatchStatusListed
	b.ListedAt = &now
	b.UpdatedAt = now

	b.AddDomainEvent(NewBatchListedEvent(b))

	return nil
}

// UpdateAskPrice changes the seller's ask price and appends a trade
// history entry. Only allowed before the batch enters a transaction.
func (b *Batch) UpdateAskPrice(sellerID uuid.UUID, pricePerKg valueobject.Money) error {
	if b.Status != BatchStatusCreated && b.Status != BatchStatusListed && b.Status != BatchStatusListedForRetailers {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update price in %s status", b.Status))
	}
	if sellerID != b.SellerOfRecord() {
		return shared.ErrOwnershipMismatch
	}
	if pricePerKg.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Price per kg must be positive")
	}

	now := time.Now()
	b.PricePerKg = pricePerKg.Amount()
	b.appendTradeRecord(sellerID, b.PricePerKg, now)
	b.UpdatedAt = now

	return nil
}

// OpenBidding opens a timed bidding window, transitioning LISTED → BIDDING.
func (b *Batch) OpenBidding(closesAt time.Time, now time.Time) error {
	if !b.Status.CanTransitionTo(BatchStatusBidding) {
		return transitionError(b.Status, BatchStatusBidding)
	}
	if b.BiddingStatus == BiddingStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Bidding is already open for this batch")
	}
	if !closesAt.After(now) {
		return shared.NewDomainError("INVALID_CLOSING_DATE", "Bidding closing date must be in the future")
	}

	b.Status = BatchStatusBidding
	b.BiddingStatus = BiddingStatusOpen
	b.BiddingClosesAt = &closesAt
	b.WinningBidID = nil
	b.UpdatedAt = now

	b.AddDomainEvent(NewBiddingOpenedEvent(b, closesAt))

	return nil
}

// PlaceBid appends a new pending bid to the open bidding window.
// The wall clock is authoritative: a bid after the closing date fails
// with BIDDING_CLOSED even if the stored status was not yet flipped.
func (b *Batch) PlaceBid(bidderID uuid.UUID, amountPerKg valueobject.Money, now time.Time) (*Bid, error) {
	if b.Status != BatchStatusBidding || b.BiddingStatus != BiddingStatusOpen {
		return nil, shared.ErrBiddingClosed
	}
	if b.BiddingClosesAt == nil || !now.Before(*b.BiddingClosesAt) {
		return nil, shared.ErrBiddingClosed
	}
	if bidderID == b.SellerOfRecord() {
		return nil, shared.NewDomainError("INVALID_BIDDER", "Seller cannot bid on own batch")
	}
	for i := range b.Bids {
		if b.Bids[i].BidderID == bidderID && b.Bids[i].IsPending() {
			return nil, shared.ErrDuplicateBid
		}
	}

	bid, err := NewBid(b.ID, bidderID, amountPerKg.Amount(), now)
	if err != nil {
		return nil, err
	}

	b.Bids = append(b.Bids, *bid)
	b.UpdatedAt = now

	b.AddDomainEvent(NewBidPlacedEvent(b, bid))

	return bid, nil
}

// CancelBid withdraws a pending bid before the window closes
func (b *Batch) CancelBid(bidID, bidderID uuid.UUID) error {
	if b.BiddingStatus != BiddingStatusOpen {
		return shared.ErrBiddingClosed
	}
	for i := range b.Bids {
		if b.Bids[i].ID == bidID {
			if err := b.Bids[i].Cancel(bidderID); err != nil {
				return err
			}
			b.UpdatedAt = time.Now()
			b.AddDomainEvent(NewBidCancelledEvent(b, &b.Bids[i]))
			return nil
		}
	}
	return shared.ErrNotFound
}

// CloseBidding closes the window and selects the winner: highest amount
// per kg, ties broken by the earliest bid. The winning bid is accepted,
// all other pending bids are rejected, and the batch transitions
// BIDDING → IN_TRANSACTION. With no eligible bids the batch returns to
// LISTED so it can be re-offered.
//
// Closing an already-closed window is an invalid-state error; callers
// that close on a schedule check the stored state first and treat the
// error as a concurrent close.
func (b *Batch) CloseBidding(now time.Time) (*Bid, error) {
	if b.Status != BatchStatusBidding || b.BiddingStatus != BiddingStatusOpen {
		return nil, shared.NewDomainError("INVALID_STATE", "Bidding is not open for this batch")
	}

	var winner *Bid
	for i := range b.Bids {
		if !b.Bids[i].IsPending() {
			continue
		}
		if b.Bids[i].Outbids(winner) {
			winner = &b.Bids[i]
		}
	}

	b.BiddingStatus = BiddingStatusClosed
	b.UpdatedAt = now

	if winner == nil {
		b.Status = BatchStatusListed
		b.BiddingClosesAt = nil
		b.AddDomainEvent(NewBiddingClosedEvent(b, nil))
		return nil, nil
	}

	if err := winner.Accept(); err != nil {
		return nil, err
	}
	for i := range b.Bids {
		if b.Bids[i].ID != winner.ID && b.Bids[i].IsPending() {
			if err := b.Bids[i].Reject(); err != nil {
				return nil, err
			}
		}
	}

	winID := winner.ID
	b.WinningBidID = &winID
	b.PricePerKg = winner.AmountPerKg
	b.Status = BatchStatusInTransaction

	b.AddDomainEvent(NewBiddingClosedEvent(b, winner))

	return winner, nil
}

// AcceptDirectSale moves the batch into a transaction without bidding,
// LISTED/BIDDING → IN_TRANSACTION. An open bidding window is closed and
// all pending bids rejected.
func (b *Batch) AcceptDirectSale(now time.Time) error {
	if !b.Status.CanTransitionTo(BatchStatusInTransaction) {
		return transitionError(b.Status, BatchStatusInTransaction)
	}

	if b.BiddingStatus == BiddingStatusOpen {
		for i := range b.Bids {
			if b.Bids[i].IsPending() {
				if err := b.Bids[i].Reject(); err != nil {
					return err
				}
			}
		}
		b.BiddingStatus = BiddingStatusClosed
	}

	b.Status = BatchStatusInTransaction
	b.UpdatedAt = now

	return nil
}

// ApplySale applies a committed sale to the batch: decrements the
// available quantity, moves ownership of record to the buyer, and
// advances the lifecycle status where the transition table implies it.
//
// The in-memory decrement mirrors the storage layer's conditional
// decrement; the storage guard is what defends the quantity invariant
// under concurrency.
func (b *Batch) ApplySale(buyerID uuid.UUID, quantityKg decimal.Decimal, retail bool, now time.Time) error {
	if buyerID == uuid.Nil {
		return shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	if quantityKg.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Sale quantity must be positive")
	}
	if quantityKg.GreaterThan(b.AvailableQuantityKg) {
		return shared.ErrInsufficientQuantity
	}

	if retail {
		if b.Status != BatchStatusListedForRetailers {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot sell to retailer in %s status", b.Status))
		}
	} else {
		if b.Status != BatchStatusInTransaction && b.Status != BatchStatusSoldToDistributor {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot sell to distributor in %s status", b.Status))
		}
	}

	b.AvailableQuantityKg = b.AvailableQuantityKg.Sub(quantityKg)
	b.CurrentOwnerID = buyerID
	b.UpdatedAt = now

	if retail {
		// Custody of the remainder stays with the relisting seller, so
		// the trade entry records them at the executed price.
		b.appendTradeRecord(b.SellerOfRecord(), b.PricePerKg, now)
		b.RetailOrders = append(b.RetailOrders, RetailOrder{
			ID:         uuid.New(),
			BatchID:    b.ID,
			RetailerID: buyerID,
			QuantityKg: quantityKg,
			PricePerKg: b.PricePerKg,
			OrderedAt:  now,
		})
		if b.AvailableQuantityKg.IsZero() {
			b.Status = BatchStatusFinished
			b.FinishedAt = &now
			b.AddDomainEvent(NewBatchFinishedEvent(b))
		}
	} else {
		b.appendTradeRecord(buyerID, b.PricePerKg, now)
		if b.Status == BatchStatusInTransaction {
			b.Status = BatchStatusSoldToDistributor
		}
	}

	return nil
}

// RelistForRetailers relists the remaining quantity for downstream
// retail sale, SOLD_TO_DISTRIBUTOR → LISTED_FOR_RETAILERS. Only the
// owner of record may relist; the relist appends a trade history entry
// making the new owner the seller of record.
func (b *Batch) RelistForRetailers(ownerID uuid.UUID, pricePerKg valueobject.Money, now time.Time) error {
	if !b.Status.CanTransitionTo(BatchStatusListedForRetailers) {
		return transitionError(b.Status, BatchStatusListedForRetailers)
	}
	if ownerID != b.CurrentOwnerID {
		return shared.ErrOwnershipMismatch
	}
	if pricePerKg.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Price per kg must be positive")
	}
	if !b.AvailableQuantityKg.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "No remaining quantity to relist")
	}

	b.Status = BatchStatusListedForRetailers
	b.PricePerKg = pricePerKg.Amount()
	b.appendTradeRecord(ownerID, b.PricePerKg, now)
	b.UpdatedAt = now

	b.AddDomainEvent(NewBatchRelistedEvent(b))

	return nil
}

// Finish closes out the batch once all quantity is consumed,
// LISTED_FOR_RETAILERS → FINISHED.
func (b *Batch) Finish(now time.Time) error {
	if !b.Status.CanTransitionTo(BatchStatusFinished) {
		return transitionError(b.Status, BatchStatusFinished)
	}
	if !b.AvailableQuantityKg.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Batch still has available quantity")
	}

	b.Status = BatchStatusFinished
	b.FinishedAt = &now
	b.UpdatedAt = now

	b.AddDomainEvent(NewBatchFinishedEvent(b))

	return nil
}

// OverrideStatus forces the batch into a status, bypassing the ordinary
// transition table. Reserved for administrative correction; the calling
// service must append an ownership history record for the override.
// The terminal state cannot be overridden.
func (b *Batch) OverrideStatus(target BatchStatus, newOwnerID uuid.UUID, now time.Time) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown batch status %q", target))
	}
	if b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot override a finished batch")
	}

	if b.BiddingStatus == BiddingStatusOpen {
		b.BiddingStatus = BiddingStatusClosed
	}
	b.Status = target
	if newOwnerID != uuid.Nil && newOwnerID != b.CurrentOwnerID {
		b.CurrentOwnerID = newOwnerID
		b.appendTradeRecord(newOwnerID, b.PricePerKg, now)
	}
	b.UpdatedAt = now

	b.AddDomainEvent(NewBatchOverriddenEvent(b))

	return nil
}

// SellerOfRecord returns the participant entitled to sell the remaining
// quantity: the owner in the latest trade history entry. A sale to a
// distributor moves it to the buyer; retail sales leave it with the
// relisting seller.
func (b *Batch) SellerOfRecord() uuid.UUID {
	if len(b.TradeHistory) == 0 {
		return b.FarmerID
	}
	return b.TradeHistory[len(b.TradeHistory)-1].OwnerID
}

// BiddingDue reports whether an open bidding window is past its closing date
func (b *Batch) BiddingDue(now time.Time) bool {
	return b.Status == BatchStatusBidding &&
		b.BiddingStatus == BiddingStatusOpen &&
		b.BiddingClosesAt != nil &&
		!now.Before(*b.BiddingClosesAt)
}

// GetBid returns a bid by its ID, or nil
func (b *Batch) GetBid(bidID uuid.UUID) *Bid {
	for i := range b.Bids {
		if b.Bids[i].ID == bidID {
			return &b.Bids[i]
		}
	}
	return nil
}

// PendingBidCount returns the number of pending bids
func (b *Batch) PendingBidCount() int {
	count := 0
	for i := range b.Bids {
		if b.Bids[i].IsPending() {
			count++
		}
	}
	return count
}

// GetPricePerKgMoney returns the current ask price as Money
func (b *Batch) GetPricePerKgMoney() valueobject.Money {
	return valueobject.NewMoneyINR(b.PricePerKg)
}

// IsFinished returns true if the batch is in the terminal state
func (b *Batch) IsFinished() bool {
	return b.Status == BatchStatusFinished
}

func (b *Batch) appendTradeRecord(ownerID uuid.UUID, pricePerKg decimal.Decimal, at time.Time) {
	b.TradeHistory = append(b.TradeHistory, TradeRecord{
		ID:         uuid.New(),
		BatchID:    b.ID,
		OwnerID:    ownerID,
		PricePerKg: pricePerKg,
		RecordedAt: at,
	})
}

func transitionError(from, to BatchStatus) error {
	return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition batch from %s to %s", from, to))
}
