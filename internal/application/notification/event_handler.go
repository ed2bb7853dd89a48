package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// TradeEventHandler notifies participants about trade milestones
type TradeEventHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewTradeEventHandler creates a new trade event handler
func NewTradeEventHandler(notifier Notifier, logger *zap.Logger) *TradeEventHandler {
	return &TradeEventHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *TradeEventHandler) EventTypes() []string {
	return []string{
		trade.EventTypeSaleCompleted,
		trade.EventTypeInvoiceIssued,
		trade.EventTypeInvoicePaymentRecorded,
		marketplace.EventTypeBiddingClosed,
	}
}

// Handle notifies the affected parties of the event. Failures are
// logged and swallowed: notification delivery never fails the event.
func (h *TradeEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.SaleCompletedEvent:
		h.notify(ctx, e.BuyerID, "Purchase confirmed",
			fmt.Sprintf("You bought %s kg under sale %s", e.QuantityKg.String(), e.SaleNumber))
		h.notify(ctx, e.SellerID, "Sale completed",
			fmt.Sprintf("Sale %s for %s completed", e.SaleNumber, e.TotalAmount.String()))

	case *trade.InvoiceIssuedEvent:
		h.notify(ctx, e.BuyerID, "Invoice issued",
			fmt.Sprintf("Invoice %s for %s is due", e.InvoiceNumber, e.TotalAmount.String()))

	case *trade.InvoicePaymentRecordedEvent:
		h.logger.Info("payment recorded",
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("amount", e.Amount.String()),
			zap.String("payment_status", string(e.PaymentStatus)),
		)

	case *marketplace.BiddingClosedEvent:
		if e.WinnerID != nil {
			h.notify(ctx, *e.WinnerID, "Bid won",
				fmt.Sprintf("Your bid on batch %s won at %s per kg", e.BatchNumber, e.AmountPerKg.String()))
		}

	default:
		h.logger.Debug("unhandled event type", zap.String("event_type", event.EventType()))
	}

	return nil
}

func (h *TradeEventHandler) notify(ctx context.Context, id uuid.UUID, subject, body string) {
	if err := h.notifier.Notify(ctx, id, subject, body); err != nil {
		h.logger.Warn("notification delivery failed",
			zap.String("recipient_id", id.String()),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
