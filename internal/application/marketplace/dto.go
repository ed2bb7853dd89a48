package marketplace

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
)

// CreateBatchRequest represents a request to register a new batch
type CreateBatchRequest struct {
	CropName   string          `json:"crop_name" binding:"required,min=1,max=100"`
	Variety    string          `json:"variety" binding:"max=100"`
	QuantityKg decimal.Decimal `json:"quantity_kg" binding:"required,gt=0"`
	PricePerKg decimal.Decimal `json:"price_per_kg" binding:"required,gt=0"`
}

// UpdatePriceRequest represents a request to change the ask price
type UpdatePriceRequest struct {
	PricePerKg decimal.Decimal `json:"price_per_kg" binding:"required,gt=0"`
}

// RelistRequest represents a request to relist remaining quantity for retailers
type RelistRequest struct {
	PricePerKg decimal.Decimal `json:"price_per_kg" binding:"required,gt=0"`
}

// OverrideStatusRequest represents an administrative status override
type OverrideStatusRequest struct {
	Status     string     `json:"status" binding:"required"`
	NewOwnerID *uuid.UUID `json:"new_owner_id"`
	Reason     string     `json:"reason" binding:"required,min=1,max=500"`
}

// OpenBiddingRequest represents a request to open a bidding window.
// A zero ClosesAt applies the configured default window.
type OpenBiddingRequest struct {
	ClosesAt time.Time `json:"closes_at"`
}

// PlaceBidRequest represents a request to place a bid
type PlaceBidRequest struct {
	AmountPerKg decimal.Decimal `json:"amount_per_kg" binding:"required,gt=0"`
}

// BatchListFilter represents filtering options for batch listings
type BatchListFilter struct {
	Status   string `form:"status"`
	CropName string `form:"crop_name"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// BidResponse represents a bid in API responses
type BidResponse struct {
	ID          uuid.UUID       `json:"id"`
	BatchID     uuid.UUID       `json:"batch_id"`
	BidderID    uuid.UUID       `json:"bidder_id"`
	AmountPerKg decimal.Decimal `json:"amount_per_kg"`
	Status      string          `json:"status"`
	BidDate     time.Time       `json:"bid_date"`
}

// TradeRecordResponse represents one trade history entry
type TradeRecordResponse struct {
	OwnerID    uuid.UUID       `json:"owner_id"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// RetailOrderResponse represents one retail order entry
type RetailOrderResponse struct {
	RetailerID uuid.UUID       `json:"retailer_id"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
	OrderedAt  time.Time       `json:"ordered_at"`
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID                  uuid.UUID             `json:"id"`
	BatchNumber         string                `json:"batch_number"`
	FarmerID            uuid.UUID             `json:"farmer_id"`
	CurrentOwnerID      uuid.UUID             `json:"current_owner_id"`
	CropName            string                `json:"crop_name"`
	Variety             string                `json:"variety,omitempty"`
	QuantityKg          decimal.Decimal       `json:"quantity_kg"`
	AvailableQuantityKg decimal.Decimal       `json:"available_quantity_kg"`
	PricePerKg          decimal.Decimal       `json:"price_per_kg"`
	Status              string                `json:"status"`
	BiddingStatus       string                `json:"bidding_status"`
	BiddingClosesAt     *time.Time            `json:"bidding_closes_at,omitempty"`
	WinningBidID        *uuid.UUID            `json:"winning_bid_id,omitempty"`
	Bids                []BidResponse         `json:"bids,omitempty"`
	TradeHistory        []TradeRecordResponse `json:"trade_history,omitempty"`
	RetailOrders        []RetailOrderResponse `json:"retail_orders,omitempty"`
	Version             int                   `json:"version"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// BatchListItemResponse is the compact batch shape for list endpoints
type BatchListItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	BatchNumber         string          `json:"batch_number"`
	CropName            string          `json:"crop_name"`
	Variety             string          `json:"variety,omitempty"`
	QuantityKg          decimal.Decimal `json:"quantity_kg"`
	AvailableQuantityKg decimal.Decimal `json:"available_quantity_kg"`
	PricePerKg          decimal.Decimal `json:"price_per_kg"`
	Status              string          `json:"status"`
	CurrentOwnerID      uuid.UUID       `json:"current_owner_id"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ToBidResponse converts a bid to its response shape
func ToBidResponse(bid *marketplace.Bid) BidResponse {
	return BidResponse{
		ID:          bid.ID,
		BatchID:     bid.BatchID,
		BidderID:    bid.BidderID,
		AmountPerKg: bid.AmountPerKg,
		Status:      bid.Status.String(),
		BidDate:     bid.BidDate,
	}
}

// ToBatchResponse converts a batch aggregate to its full response shape
func ToBatchResponse(batch *marketplace.Batch) BatchResponse {
	resp := BatchResponse{
		ID:                  batch.ID,
		BatchNumber:         batch.BatchNumber,
		FarmerID:            batch.FarmerID,
		CurrentOwnerID:      batch.CurrentOwnerID,
		CropName:            batch.CropName,
		Variety:             batch.Variety,
		QuantityKg:          batch.QuantityKg,
		AvailableQuantityKg: batch.AvailableQuantityKg,
		PricePerKg:          batch.PricePerKg,
		Status:              batch.Status.String(),
		BiddingStatus:       string(batch.BiddingStatus),
		BiddingClosesAt:     batch.BiddingClosesAt,
		WinningBidID:        batch.WinningBidID,
		Version:             batch.GetVersion(),
		CreatedAt:           batch.CreatedAt,
		UpdatedAt:           batch.UpdatedAt,
	}
	for i := range batch.Bids {
		resp.Bids = append(resp.Bids, ToBidResponse(&batch.Bids[i]))
	}
	for _, tr := range batch.TradeHistory {
		resp.TradeHistory = append(resp.TradeHistory, TradeRecordResponse{
			OwnerID:    tr.OwnerID,
			PricePerKg: tr.PricePerKg,
			RecordedAt: tr.RecordedAt,
		})
	}
	for _, ro := range batch.RetailOrders {
		resp.RetailOrders = append(resp.RetailOrders, RetailOrderResponse{
			RetailerID: ro.RetailerID,
			QuantityKg: ro.QuantityKg,
			PricePerKg: ro.PricePerKg,
			OrderedAt:  ro.OrderedAt,
		})
	}
	return resp
}

// ToBatchListItemResponse converts a batch to its compact list shape
func ToBatchListItemResponse(batch *marketplace.Batch) BatchListItemResponse {
	return BatchListItemResponse{
		ID:                  batch.ID,
		BatchNumber:         batch.BatchNumber,
		CropName:            batch.CropName,
		Variety:             batch.Variety,
		QuantityKg:          batch.QuantityKg,
		AvailableQuantityKg: batch.AvailableQuantityKg,
		PricePerKg:          batch.PricePerKg,
		Status:              batch.Status.String(),
		CurrentOwnerID:      batch.CurrentOwnerID,
		CreatedAt:           batch.CreatedAt,
	}
}
