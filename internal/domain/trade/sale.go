package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

// SaleType classifies who is buying from whom
type SaleType string

const (
	SaleTypeFarmerToDistributor   SaleType = "FARMER_TO_DISTRIBUTOR"
	SaleTypeDistributorToRetailer SaleType = "DISTRIBUTOR_TO_RETAILER"
	SaleTypeAdminOverride         SaleType = "ADMIN_OVERRIDE"
)

// IsValid checks if the sale type is valid
func (t SaleType) IsValid() bool {
	switch t {
	case SaleTypeFarmerToDistributor, SaleTypeDistributorToRetailer, SaleTypeAdminOverride:
		return true
	}
	return false
}

// String returns the string representation of SaleType
func (t SaleType) String() string {
	return string(t)
}

// IsRetail reports whether the sale consumes quantity at the retail stage
func (t SaleType) IsRetail() bool {
	return t == SaleTypeDistributorToRetailer
}

// SaleTypeForRoles derives the sale type from the seller and buyer roles
func SaleTypeForRoles(seller, buyer shared.Role) (SaleType, error) {
	switch {
	case seller == shared.RoleFarmer && buyer == shared.RoleDistributor:
		return SaleTypeFarmerToDistributor, nil
	case seller == shared.RoleDistributor && buyer == shared.RoleRetailer:
		return SaleTypeDistributorToRetailer, nil
	case seller == shared.RoleAdmin || buyer == shared.RoleAdmin:
		return SaleTypeAdminOverride, nil
	}
	return "", shared.NewDomainError("INVALID_SALE_TYPE", "No sale type for this seller and buyer role pairing")
}

// Sale is the committed record of one ownership-and-quantity transfer
// on a batch. Sales are immutable once created; corrections happen
// through new sales or administrative overrides, never edits.
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber  string
	BatchID     uuid.UUID
	SellerID    uuid.UUID
	BuyerID     uuid.UUID
	Type        SaleType
	QuantityKg  decimal.Decimal
	PricePerKg  decimal.Decimal
	TotalAmount decimal.Decimal
	SaleDate    time.Time
	Remark      string
}

// NewSale creates a committed sale record. TotalAmount is always
// QuantityKg * PricePerKg, computed exactly with decimals.
func NewSale(saleNumber string, batchID, sellerID, buyerID uuid.UUID, saleType SaleType, quantityKg decimal.Decimal, pricePerKg valueobject.Money, saleDate time.Time) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	if sellerID == uuid.Nil || buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Seller and buyer IDs cannot be empty")
	}
	if sellerID == buyerID {
		return nil, shared.NewDomainError("INVALID_PARTY", "Seller and buyer cannot be the same participant")
	}
	if !saleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SALE_TYPE", "Unknown sale type")
	}
	if quantityKg.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Sale quantity must be positive")
	}
	if pricePerKg.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price per kg must be positive")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        saleNumber,
		BatchID:           batchID,
		SellerID:          sellerID,
		BuyerID:           buyerID,
		Type:              saleType,
		QuantityKg:        quantityKg,
		PricePerKg:        pricePerKg.Amount(),
		TotalAmount:       quantityKg.Mul(pricePerKg.Amount()),
		SaleDate:          saleDate,
	}

	sale.AddDomainEvent(NewSaleCompletedEvent(sale))

	return sale, nil
}

// SetRemark sets a free-form note on the sale
func (s *Sale) SetRemark(remark string) {
	s.Remark = remark
	s.UpdatedAt = time.Now()
}

// GetTotalAmountMoney returns the total amount as Money
func (s *Sale) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(s.TotalAmount)
}

// GetPricePerKgMoney returns the unit price as Money
func (s *Sale) GetPricePerKgMoney() valueobject.Money {
	return valueobject.NewMoneyINR(s.PricePerKg)
}
