package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// BatchModel is the persistence model for the Batch aggregate root.
type BatchModel struct {
	AggregateModel
	BatchNumber         string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	FarmerID            uuid.UUID                 `gorm:"type:uuid;not null;index"`
	CurrentOwnerID      uuid.UUID                 `gorm:"type:uuid;not null;index"`
	CropName            string                    `gorm:"type:varchar(100);not null;index"`
	Variety             string                    `gorm:"type:varchar(100)"`
	QuantityKg          decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	AvailableQuantityKg decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	PricePerKg          decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Status              marketplace.BatchStatus   `gorm:"type:varchar(30);not null;default:'CREATED';index:idx_batch_status_bidding"`
	BiddingStatus       marketplace.BiddingStatus `gorm:"type:varchar(10);not null;default:'CLOSED';index:idx_batch_status_bidding"`
	BiddingClosesAt     *time.Time                `gorm:"index:idx_batch_status_bidding"`
	WinningBidID        *uuid.UUID                `gorm:"type:uuid"`
	Bids                []BidModel                `gorm:"foreignKey:BatchID;references:ID"`
	TradeHistory        []TradeRecordModel        `gorm:"foreignKey:BatchID;references:ID"`
	RetailOrders        []RetailOrderModel        `gorm:"foreignKey:BatchID;references:ID"`
	ListedAt            *time.Time                `gorm:"index"`
	FinishedAt          *time.Time
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch entity.
func (m *BatchModel) ToDomain() *marketplace.Batch {
	batch := &marketplace.Batch{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		BatchNumber:         m.BatchNumber,
		FarmerID:            m.FarmerID,
		CurrentOwnerID:      m.CurrentOwnerID,
		CropName:            m.CropName,
		Variety:             m.Variety,
		QuantityKg:          m.QuantityKg,
		AvailableQuantityKg: m.AvailableQuantityKg,
		PricePerKg:          m.PricePerKg,
		Status:              m.Status,
		BiddingStatus:       m.BiddingStatus,
		BiddingClosesAt:     m.BiddingClosesAt,
		WinningBidID:        m.WinningBidID,
		ListedAt:            m.ListedAt,
		FinishedAt:          m.FinishedAt,
		Bids:                make([]marketplace.Bid, len(m.Bids)),
		TradeHistory:        make([]marketplace.TradeRecord, len(m.TradeHistory)),
		RetailOrders:        make([]marketplace.RetailOrder, len(m.RetailOrders)),
	}
	for i, bid := range m.Bids {
		batch.Bids[i] = *bid.ToDomain()
	}
	for i, rec := range m.TradeHistory {
		batch.TradeHistory[i] = *rec.ToDomain()
	}
	for i, ord := range m.RetailOrders {
		batch.RetailOrders[i] = *ord.ToDomain()
	}
	return batch
}

// FromDomain populates the persistence model from a domain Batch entity.
func (m *BatchModel) FromDomain(b *marketplace.Batch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BatchNumber = b.BatchNumber
	m.FarmerID = b.FarmerID
	m.CurrentOwnerID = b.CurrentOwnerID
	m.CropName = b.CropName
	m.Variety = b.Variety
	m.QuantityKg = b.QuantityKg
	m.AvailableQuantityKg = b.AvailableQuantityKg
	m.PricePerKg = b.PricePerKg
	m.Status = b.Status
	m.BiddingStatus = b.BiddingStatus
	m.BiddingClosesAt = b.BiddingClosesAt
	m.WinningBidID = b.WinningBidID
	m.ListedAt = b.ListedAt
	m.FinishedAt = b.FinishedAt
	m.Bids = make([]BidModel, len(b.Bids))
	for i, bid := range b.Bids {
		m.Bids[i] = *BidModelFromDomain(&bid)
	}
	m.TradeHistory = make([]TradeRecordModel, len(b.TradeHistory))
	for i, rec := range b.TradeHistory {
		m.TradeHistory[i] = *TradeRecordModelFromDomain(&rec)
	}
	m.RetailOrders = make([]RetailOrderModel, len(b.RetailOrders))
	for i, ord := range b.RetailOrders {
		m.RetailOrders[i] = *RetailOrderModelFromDomain(&ord)
	}
}

// BatchModelFromDomain creates a new persistence model from a domain Batch entity.
func BatchModelFromDomain(b *marketplace.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(b)
	return m
}

// BidModel is the persistence model for the Bid entity.
type BidModel struct {
	ID          uuid.UUID             `gorm:"type:uuid;primary_key"`
	BatchID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	BidderID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	AmountPerKg decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status      marketplace.BidStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	BidDate     time.Time             `gorm:"not null;index"`
	CreatedAt   time.Time             `gorm:"not null"`
	UpdatedAt   time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BidModel) TableName() string {
	return "bids"
}

// ToDomain converts the persistence model to a domain Bid entity.
func (m *BidModel) ToDomain() *marketplace.Bid {
	return &marketplace.Bid{
		ID:          m.ID,
		BatchID:     m.BatchID,
		BidderID:    m.BidderID,
		AmountPerKg: m.AmountPerKg,
		Status:      m.Status,
		BidDate:     m.BidDate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// BidModelFromDomain creates a new persistence model from a domain Bid entity.
func BidModelFromDomain(b *marketplace.Bid) *BidModel {
	return &BidModel{
		ID:          b.ID,
		BatchID:     b.BatchID,
		BidderID:    b.BidderID,
		AmountPerKg: b.AmountPerKg,
		Status:      b.Status,
		BidDate:     b.BidDate,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// TradeRecordModel is the persistence model for a batch trade history entry.
type TradeRecordModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	BatchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OwnerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PricePerKg decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RecordedAt time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (TradeRecordModel) TableName() string {
	return "batch_trade_records"
}

// ToDomain converts the persistence model to a domain TradeRecord entity.
func (m *TradeRecordModel) ToDomain() *marketplace.TradeRecord {
	return &marketplace.TradeRecord{
		ID:         m.ID,
		BatchID:    m.BatchID,
		OwnerID:    m.OwnerID,
		PricePerKg: m.PricePerKg,
		RecordedAt: m.RecordedAt,
	}
}

// TradeRecordModelFromDomain creates a new persistence model from a domain TradeRecord entity.
func TradeRecordModelFromDomain(r *marketplace.TradeRecord) *TradeRecordModel {
	return &TradeRecordModel{
		ID:         r.ID,
		BatchID:    r.BatchID,
		OwnerID:    r.OwnerID,
		PricePerKg: r.PricePerKg,
		RecordedAt: r.RecordedAt,
	}
}

// RetailOrderModel is the persistence model for a batch retail order entry.
type RetailOrderModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	BatchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	RetailerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityKg decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PricePerKg decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OrderedAt  time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (RetailOrderModel) TableName() string {
	return "batch_retail_orders"
}

// ToDomain converts the persistence model to a domain RetailOrder entity.
func (m *RetailOrderModel) ToDomain() *marketplace.RetailOrder {
	return &marketplace.RetailOrder{
		ID:         m.ID,
		BatchID:    m.BatchID,
		RetailerID: m.RetailerID,
		QuantityKg: m.QuantityKg,
		PricePerKg: m.PricePerKg,
		OrderedAt:  m.OrderedAt,
	}
}

// RetailOrderModelFromDomain creates a new persistence model from a domain RetailOrder entity.
func RetailOrderModelFromDomain(o *marketplace.RetailOrder) *RetailOrderModel {
	return &RetailOrderModel{
		ID:         o.ID,
		BatchID:    o.BatchID,
		RetailerID: o.RetailerID,
		QuantityKg: o.QuantityKg,
		PricePerKg: o.PricePerKg,
		OrderedAt:  o.OrderedAt,
	}
}
