package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// ==================== Sale DTOs ====================

// CompleteSaleRequest represents a request to commit a sale on a batch
type CompleteSaleRequest struct {
	BatchID    uuid.UUID       `json:"batch_id" binding:"required"`
	BuyerID    uuid.UUID       `json:"buyer_id" binding:"required"`
	BuyerRole  string          `json:"buyer_role" binding:"required,oneof=FARMER DISTRIBUTOR RETAILER ADMIN"`
	QuantityKg decimal.Decimal `json:"quantity_kg" binding:"required,gt=0"`
	Remark     string          `json:"remark" binding:"max=500"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID          uuid.UUID       `json:"id"`
	SaleNumber  string          `json:"sale_number"`
	BatchID     uuid.UUID       `json:"batch_id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	Type        string          `json:"type"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	SaleDate    time.Time       `json:"sale_date"`
	Remark      string          `json:"remark,omitempty"`
}

// SaleListFilter represents filtering options for sale listings
type SaleListFilter struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// OwnershipRecordResponse represents one link of an ownership chain
type OwnershipRecordResponse struct {
	BatchID         uuid.UUID  `json:"batch_id"`
	PreviousOwnerID uuid.UUID  `json:"previous_owner_id"`
	NewOwnerID      uuid.UUID  `json:"new_owner_id"`
	TransferType    string     `json:"transfer_type"`
	SaleID          *uuid.UUID `json:"sale_id,omitempty"`
	TransferDate    time.Time  `json:"transfer_date"`
}

// LineageResponse represents a batch's full ownership chain
type LineageResponse struct {
	BatchID        uuid.UUID                 `json:"batch_id"`
	CurrentOwnerID uuid.UUID                 `json:"current_owner_id"`
	Transfers      []OwnershipRecordResponse `json:"transfers"`
}

// ==================== Invoice DTOs ====================

// CreateInvoiceRequest represents a request to build a draft invoice
// from committed sales
type CreateInvoiceRequest struct {
	BuyerID   uuid.UUID        `json:"buyer_id" binding:"required"`
	SaleIDs   []uuid.UUID      `json:"sale_ids" binding:"required,min=1"`
	TaxAmount *decimal.Decimal `json:"tax_amount"`
	Remark    string           `json:"remark" binding:"max=500"`
}

// IssueInvoiceRequest represents a request to issue a draft invoice
type IssueInvoiceRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// RecordPaymentRequest represents a payment against an issued invoice
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

// InvoiceItemResponse represents an invoice line item
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	BatchNumber string          `json:"batch_number"`
	Description string          `json:"description,omitempty"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	SellerID      uuid.UUID             `json:"seller_id"`
	BuyerID       uuid.UUID             `json:"buyer_id"`
	Items         []InvoiceItemResponse `json:"items"`
	SubTotal      decimal.Decimal       `json:"sub_total"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	Status        string                `json:"status"`
	PaymentStatus string                `json:"payment_status"`
	IssuedAt      *time.Time            `json:"issued_at,omitempty"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Remark        string                `json:"remark,omitempty"`
	Version       int                   `json:"version"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ToSaleResponse converts a sale to its response shape
func ToSaleResponse(sale *trade.Sale) SaleResponse {
	return SaleResponse{
		ID:          sale.ID,
		SaleNumber:  sale.SaleNumber,
		BatchID:     sale.BatchID,
		SellerID:    sale.SellerID,
		BuyerID:     sale.BuyerID,
		Type:        sale.Type.String(),
		QuantityKg:  sale.QuantityKg,
		PricePerKg:  sale.PricePerKg,
		TotalAmount: sale.TotalAmount,
		SaleDate:    sale.SaleDate,
		Remark:      sale.Remark,
	}
}

// ToLineageResponse converts an ownership chain to its response shape
func ToLineageResponse(lineage *trade.Lineage, originOwnerID uuid.UUID) LineageResponse {
	resp := LineageResponse{
		BatchID:        lineage.BatchID,
		CurrentOwnerID: lineage.CurrentOwner(originOwnerID),
	}
	for _, r := range lineage.Records {
		resp.Transfers = append(resp.Transfers, OwnershipRecordResponse{
			BatchID:         r.BatchID,
			PreviousOwnerID: r.PreviousOwnerID,
			NewOwnerID:      r.NewOwnerID,
			TransferType:    r.TransferType.String(),
			SaleID:          r.SaleID,
			TransferDate:    r.TransferDate,
		})
	}
	return resp
}

// ToInvoiceResponse converts an invoice to its response shape
func ToInvoiceResponse(invoice *trade.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		SellerID:      invoice.SellerID,
		BuyerID:       invoice.BuyerID,
		SubTotal:      invoice.SubTotal,
		TaxAmount:     invoice.TaxAmount,
		TotalAmount:   invoice.TotalAmount,
		PaidAmount:    invoice.PaidAmount,
		Status:        invoice.Status.String(),
		PaymentStatus: invoice.PaymentStatus.String(),
		IssuedAt:      invoice.IssuedAt,
		DueDate:       invoice.DueDate,
		Remark:        invoice.Remark,
		Version:       invoice.GetVersion(),
		CreatedAt:     invoice.CreatedAt,
	}
	for _, item := range invoice.Items {
		resp.Items = append(resp.Items, InvoiceItemResponse{
			ID:          item.ID,
			SaleID:      item.SaleID,
			BatchNumber: item.BatchNumber,
			Description: item.Description,
			QuantityKg:  item.QuantityKg,
			PricePerKg:  item.PricePerKg,
			LineTotal:   item.LineTotal,
		})
	}
	return resp
}
