package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// Trade event type constants
const (
	EventTypeSaleCompleted          = "sale.completed"
	EventTypeOwnershipTransferred   = "sale.ownership_transferred"
	EventTypeInvoiceIssued          = "invoice.issued"
	EventTypeInvoicePaymentRecorded = "invoice.payment_recorded"
	EventTypeInvoiceCancelled       = "invoice.cancelled"
)

// SaleCompletedEvent is published after a sale commits
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleNumber  string          `json:"sale_number"`
	BatchID     uuid.UUID       `json:"batch_id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	Type        SaleType        `json:"type"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewSaleCompletedEvent creates a new sale completed event
func NewSaleCompletedEvent(sale *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, "Sale", sale.ID),
		SaleNumber:      sale.SaleNumber,
		BatchID:         sale.BatchID,
		SellerID:        sale.SellerID,
		BuyerID:         sale.BuyerID,
		Type:            sale.Type,
		QuantityKg:      sale.QuantityKg,
		TotalAmount:     sale.TotalAmount,
	}
}

// OwnershipTransferredEvent is published when the owner of record moves
type OwnershipTransferredEvent struct {
	shared.BaseDomainEvent
	BatchID         uuid.UUID  `json:"batch_id"`
	PreviousOwnerID uuid.UUID  `json:"previous_owner_id"`
	NewOwnerID      uuid.UUID  `json:"new_owner_id"`
	TransferType    SaleType   `json:"transfer_type"`
	SaleID          *uuid.UUID `json:"sale_id,omitempty"`
}

// NewOwnershipTransferredEvent creates a new ownership transferred event
func NewOwnershipTransferredEvent(record *OwnershipRecord) *OwnershipTransferredEvent {
	return &OwnershipTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOwnershipTransferred, "Batch", record.BatchID),
		BatchID:         record.BatchID,
		PreviousOwnerID: record.PreviousOwnerID,
		NewOwnerID:      record.NewOwnerID,
		TransferType:    record.TransferType,
		SaleID:          record.SaleID,
	}
}

// InvoiceIssuedEvent is published when a draft invoice is issued
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	SellerID      uuid.UUID       `json:"seller_id"`
	BuyerID       uuid.UUID       `json:"buyer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceIssuedEvent creates a new invoice issued event
func NewInvoiceIssuedEvent(invoice *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, "Invoice", invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		SellerID:        invoice.SellerID,
		BuyerID:         invoice.BuyerID,
		TotalAmount:     invoice.TotalAmount,
	}
}

// InvoicePaymentRecordedEvent is published when a payment lands
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewInvoicePaymentRecordedEvent creates a new payment recorded event
func NewInvoicePaymentRecordedEvent(invoice *Invoice, amount decimal.Decimal) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRecorded, "Invoice", invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		Amount:          amount,
		PaidAmount:      invoice.PaidAmount,
		PaymentStatus:   invoice.PaymentStatus,
	}
}

// InvoiceCancelledEvent is published when a document is voided
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
}

// NewInvoiceCancelledEvent creates a new invoice cancelled event
func NewInvoiceCancelledEvent(invoice *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, "Invoice", invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
	}
}
