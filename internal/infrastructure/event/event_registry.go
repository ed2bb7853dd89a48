package event

import (
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	// Marketplace domain - batch lifecycle events
	serializer.Register(marketplace.EventTypeBatchCreated, &marketplace.BatchCreatedEvent{})
	serializer.Register(marketplace.EventTypeBatchListed, &marketplace.BatchListedEvent{})
	serializer.Register(marketplace.EventTypeBatchRelisted, &marketplace.BatchRelistedEvent{})
	serializer.Register(marketplace.EventTypeBatchFinished, &marketplace.BatchFinishedEvent{})
	serializer.Register(marketplace.EventTypeBatchOverridden, &marketplace.BatchOverriddenEvent{})

	// Marketplace domain - bidding events
	serializer.Register(marketplace.EventTypeBiddingOpened, &marketplace.BiddingOpenedEvent{})
	serializer.Register(marketplace.EventTypeBidPlaced, &marketplace.BidPlacedEvent{})
	serializer.Register(marketplace.EventTypeBidCancelled, &marketplace.BidCancelledEvent{})
	serializer.Register(marketplace.EventTypeBiddingClosed, &marketplace.BiddingClosedEvent{})

	// Trade domain - sale and ownership events
	serializer.Register(trade.EventTypeSaleCompleted, &trade.SaleCompletedEvent{})
	serializer.Register(trade.EventTypeOwnershipTransferred, &trade.OwnershipTransferredEvent{})

	// Trade domain - invoice events
	serializer.Register(trade.EventTypeInvoiceIssued, &trade.InvoiceIssuedEvent{})
	serializer.Register(trade.EventTypeInvoicePaymentRecorded, &trade.InvoicePaymentRecordedEvent{})
	serializer.Register(trade.EventTypeInvoiceCancelled, &trade.InvoiceCancelledEvent{})
}
