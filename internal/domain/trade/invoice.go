package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the document lifecycle of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
	InvoiceStatusSettled   InvoiceStatus = "SETTLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusCancelled, InvoiceStatusSettled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusIssued || target == InvoiceStatusCancelled
	case InvoiceStatusIssued:
		return target == InvoiceStatusSettled || target == InvoiceStatusCancelled
	case InvoiceStatusCancelled, InvoiceStatusSettled:
		return false // Terminal states
	}
	return false
}

// PaymentStatus tracks how much of an invoice has been paid.
// It is independent of the document status: an invoice can be issued
// and unpaid, or settled and paid.
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusPaid          PaymentStatus = "PAID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// InvoiceItem represents a line item on an invoice, backed by one sale
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	SaleID      uuid.UUID
	BatchNumber string
	Description string
	QuantityKg  decimal.Decimal
	PricePerKg  decimal.Decimal
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
}

// NewInvoiceItemFromSale builds a line item from a committed sale
func NewInvoiceItemFromSale(invoiceID uuid.UUID, sale *Sale, batchNumber, description string) (*InvoiceItem, error) {
	if sale == nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale cannot be nil")
	}
	return &InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		SaleID:      sale.ID,
		BatchNumber: batchNumber,
		Description: description,
		QuantityKg:  sale.QuantityKg,
		PricePerKg:  sale.PricePerKg,
		LineTotal:   sale.QuantityKg.Mul(sale.PricePerKg),
		CreatedAt:   time.Now(),
	}, nil
}

// Invoice is the billing document for one or more sales between the
// same seller and buyer. Two state machines run side by side: the
// document status and the payment status. TotalAmount always equals
// SubTotal plus TaxAmount.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	SellerID      uuid.UUID
	BuyerID       uuid.UUID
	Items         []InvoiceItem
	SubTotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	Status        InvoiceStatus
	PaymentStatus PaymentStatus
	IssuedAt      *time.Time
	DueDate       *time.Time
	Remark        string
}

// NewInvoice creates a draft invoice for a seller and buyer pair
func NewInvoice(invoiceNumber string, sellerID, buyerID uuid.UUID) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if sellerID == uuid.Nil || buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Seller and buyer IDs cannot be empty")
	}
	if sellerID == buyerID {
		return nil, shared.NewDomainError("INVALID_PARTY", "Seller and buyer cannot be the same participant")
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		SellerID:          sellerID,
		BuyerID:           buyerID,
		Items:             make([]InvoiceItem, 0),
		SubTotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		Status:            InvoiceStatusDraft,
		PaymentStatus:     PaymentStatusUnpaid,
	}, nil
}

// AddSale appends a line item for the sale. The sale must be between
// the invoice's seller and buyer, and each sale appears at most once.
func (inv *Invoice) AddSale(sale *Sale, batchNumber, description string) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Can only add items to a draft invoice")
	}
	if sale.SellerID != inv.SellerID || sale.BuyerID != inv.BuyerID {
		return shared.NewDomainError("INVALID_SALE", "Sale parties do not match the invoice parties")
	}
	for i := range inv.Items {
		if inv.Items[i].SaleID == sale.ID {
			return shared.NewDomainError("DUPLICATE_SALE", "Sale is already on this invoice")
		}
	}

	item, err := NewInvoiceItemFromSale(inv.ID, sale, batchNumber, description)
	if err != nil {
		return err
	}

	inv.Items = append(inv.Items, *item)
	inv.recalculate()
	inv.UpdatedAt = time.Now()

	return nil
}

// RemoveItem removes a line item from a draft invoice
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Can only remove items from a draft invoice")
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			inv.recalculate()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetTax sets the tax amount on a draft invoice
func (inv *Invoice) SetTax(taxAmount valueobject.Money) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Can only set tax on a draft invoice")
	}
	if taxAmount.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax amount cannot be negative")
	}

	inv.TaxAmount = taxAmount.Amount()
	inv.recalculate()
	inv.UpdatedAt = time.Now()

	return nil
}

// Issue finalizes the document, Draft → Issued. Requires at least one
// line item.
func (inv *Invoice) Issue(dueDate *time.Time) error {
	if !inv.Status.CanTransitionTo(InvoiceStatusIssued) {
		return invoiceTransitionError(inv.Status, InvoiceStatusIssued)
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Cannot issue an invoice without items")
	}

	now := time.Now()
	inv.Status = InvoiceStatusIssued
	inv.IssuedAt = &now
	inv.DueDate = dueDate
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return nil
}

// RecordPayment accumulates a payment against an issued invoice and
// derives the payment status. Overpayment is rejected.
func (inv *Invoice) RecordPayment(amount valueobject.Money) error {
	if inv.Status != InvoiceStatusIssued {
		return shared.NewDomainError("INVALID_STATE", "Can only record payments on an issued invoice")
	}
	if !amount.Amount().IsPositive() {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}

	newPaid := inv.PaidAmount.Add(amount.Amount())
	if newPaid.GreaterThan(inv.TotalAmount) {
		return shared.NewDomainError("OVERPAYMENT", "Payment exceeds the invoice outstanding amount")
	}

	inv.PaidAmount = newPaid
	switch {
	case inv.PaidAmount.Equal(inv.TotalAmount):
		inv.PaymentStatus = PaymentStatusPaid
	case inv.PaidAmount.IsPositive():
		inv.PaymentStatus = PaymentStatusPartiallyPaid
	default:
		inv.PaymentStatus = PaymentStatusUnpaid
	}
	inv.UpdatedAt = time.Now()

	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, amount.Amount()))

	return nil
}

// Settle closes a fully paid invoice, Issued → Settled
func (inv *Invoice) Settle() error {
	if !inv.Status.CanTransitionTo(InvoiceStatusSettled) {
		return invoiceTransitionError(inv.Status, InvoiceStatusSettled)
	}
	if inv.PaymentStatus != PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot settle an invoice that is not fully paid")
	}

	inv.Status = InvoiceStatusSettled
	inv.UpdatedAt = time.Now()

	return nil
}

// Cancel voids the document. An invoice with recorded payments cannot
// be cancelled.
func (inv *Invoice) Cancel() error {
	if !inv.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return invoiceTransitionError(inv.Status, InvoiceStatusCancelled)
	}
	if inv.PaidAmount.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel an invoice with recorded payments")
	}

	inv.Status = InvoiceStatusCancelled
	inv.UpdatedAt = time.Now()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// SetRemark sets a free-form note on the invoice
func (inv *Invoice) SetRemark(remark string) {
	inv.Remark = remark
	inv.UpdatedAt = time.Now()
}

// OutstandingAmount returns the unpaid remainder
func (inv *Invoice) OutstandingAmount() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.PaidAmount)
}

// GetTotalAmountMoney returns the total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(inv.TotalAmount)
}

func (inv *Invoice) recalculate() {
	subTotal := decimal.Zero
	for i := range inv.Items {
		subTotal = subTotal.Add(inv.Items[i].LineTotal)
	}
	inv.SubTotal = subTotal
	inv.TotalAmount = subTotal.Add(inv.TaxAmount)
}

func invoiceTransitionError(from, to InvoiceStatus) error {
	return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition invoice from %s to %s", from, to))
}
