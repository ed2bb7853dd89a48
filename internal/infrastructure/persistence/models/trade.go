package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AggregateModel
	SaleNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	BatchID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BuyerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type        trade.SaleType  `gorm:"type:varchar(30);not null"`
	QuantityKg  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PricePerKg  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SaleDate    time.Time       `gorm:"not null;index"`
	Remark      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *trade.Sale {
	return &trade.Sale{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		SaleNumber:  m.SaleNumber,
		BatchID:     m.BatchID,
		SellerID:    m.SellerID,
		BuyerID:     m.BuyerID,
		Type:        m.Type,
		QuantityKg:  m.QuantityKg,
		PricePerKg:  m.PricePerKg,
		TotalAmount: m.TotalAmount,
		SaleDate:    m.SaleDate,
		Remark:      m.Remark,
	}
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.SaleNumber = s.SaleNumber
	m.BatchID = s.BatchID
	m.SellerID = s.SellerID
	m.BuyerID = s.BuyerID
	m.Type = s.Type
	m.QuantityKg = s.QuantityKg
	m.PricePerKg = s.PricePerKg
	m.TotalAmount = s.TotalAmount
	m.SaleDate = s.SaleDate
	m.Remark = s.Remark
}

// SaleModelFromDomain creates a new persistence model from a domain Sale entity.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// OwnershipRecordModel is the persistence model for an ownership transfer record.
type OwnershipRecordModel struct {
	BaseModel
	BatchID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	PreviousOwnerID uuid.UUID      `gorm:"type:uuid;not null;index"`
	NewOwnerID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	TransferType    trade.SaleType `gorm:"type:varchar(30);not null"`
	SaleID          *uuid.UUID     `gorm:"type:uuid;index"`
	TransferDate    time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (OwnershipRecordModel) TableName() string {
	return "ownership_records"
}

// ToDomain converts the persistence model to a domain OwnershipRecord entity.
func (m *OwnershipRecordModel) ToDomain() *trade.OwnershipRecord {
	return &trade.OwnershipRecord{
		BaseEntity:      m.BaseModel.ToDomain(),
		BatchID:         m.BatchID,
		PreviousOwnerID: m.PreviousOwnerID,
		NewOwnerID:      m.NewOwnerID,
		TransferType:    m.TransferType,
		SaleID:          m.SaleID,
		TransferDate:    m.TransferDate,
	}
}

// OwnershipRecordModelFromDomain creates a new persistence model from a domain OwnershipRecord entity.
func OwnershipRecordModelFromDomain(r *trade.OwnershipRecord) *OwnershipRecordModel {
	m := &OwnershipRecordModel{}
	m.FromDomainBaseEntity(r.BaseEntity)
	m.BatchID = r.BatchID
	m.PreviousOwnerID = r.PreviousOwnerID
	m.NewOwnerID = r.NewOwnerID
	m.TransferType = r.TransferType
	m.SaleID = r.SaleID
	m.TransferDate = r.TransferDate
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SellerID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	BuyerID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	Items         []InvoiceItemModel  `gorm:"foreignKey:InvoiceID;references:ID"`
	SubTotal      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status        trade.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentStatus trade.PaymentStatus `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	IssuedAt      *time.Time          `gorm:"index"`
	DueDate       *time.Time          `gorm:"index"`
	Remark        string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *trade.Invoice {
	inv := &trade.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		InvoiceNumber: m.InvoiceNumber,
		SellerID:      m.SellerID,
		BuyerID:       m.BuyerID,
		SubTotal:      m.SubTotal,
		TaxAmount:     m.TaxAmount,
		TotalAmount:   m.TotalAmount,
		PaidAmount:    m.PaidAmount,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		IssuedAt:      m.IssuedAt,
		DueDate:       m.DueDate,
		Remark:        m.Remark,
		Items:         make([]trade.InvoiceItem, len(m.Items)),
	}
	for i, item := range m.Items {
		inv.Items[i] = *item.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *trade.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.SellerID = inv.SellerID
	m.BuyerID = inv.BuyerID
	m.SubTotal = inv.SubTotal
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.Status = inv.Status
	m.PaymentStatus = inv.PaymentStatus
	m.IssuedAt = inv.IssuedAt
	m.DueDate = inv.DueDate
	m.Remark = inv.Remark
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(&item)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice entity.
func InvoiceModelFromDomain(inv *trade.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for an invoice line item.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchNumber string          `gorm:"type:varchar(50);not null"`
	Description string          `gorm:"type:varchar(500)"`
	QuantityKg  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PricePerKg  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *trade.InvoiceItem {
	return &trade.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		SaleID:      m.SaleID,
		BatchNumber: m.BatchNumber,
		Description: m.Description,
		QuantityKg:  m.QuantityKg,
		PricePerKg:  m.PricePerKg,
		LineTotal:   m.LineTotal,
		CreatedAt:   m.CreatedAt,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem entity.
func InvoiceItemModelFromDomain(i *trade.InvoiceItem) *InvoiceItemModel {
	return &InvoiceItemModel{
		ID:          i.ID,
		InvoiceID:   i.InvoiceID,
		SaleID:      i.SaleID,
		BatchNumber: i.BatchNumber,
		Description: i.Description,
		QuantityKg:  i.QuantityKg,
		PricePerKg:  i.PricePerKg,
		LineTotal:   i.LineTotal,
		CreatedAt:   i.CreatedAt,
	}
}
