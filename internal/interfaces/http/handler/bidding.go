package handler

import (
	"github.com/gin-gonic/gin"

	marketplaceapp "github.com/lakshya-byte/krishinetra-backend/internal/application/marketplace"
)

// BiddingHandler handles bidding window and bid endpoints
type BiddingHandler struct {
	BaseHandler
	biddingService *marketplaceapp.BiddingService
}

// NewBiddingHandler creates a new bidding handler
func NewBiddingHandler(biddingService *marketplaceapp.BiddingService) *BiddingHandler {
	return &BiddingHandler{biddingService: biddingService}
}

// Open opens a bidding window on a listed batch
// @Summary Open bidding
// @Tags bidding
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param request body marketplaceapp.OpenBiddingRequest true "Closing time"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /marketplace/batches/{id}/bidding/open [post]
func (h *BiddingHandler) Open(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid batch id")
		return
	}

	var req marketplaceapp.OpenBiddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	batch, err := h.biddingService.OpenBidding(c.Request.Context(), userID, batchID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// PlaceBid places a bid on an open batch
// @Summary Place bid
// @Tags bidding
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param request body marketplaceapp.PlaceBidRequest true "Bid amount"
// @Success 201 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /marketplace/batches/{id}/bids [post]
func (h *BiddingHandler) PlaceBid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid batch id")
		return
	}

	var req marketplaceapp.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	bid, err := h.biddingService.PlaceBid(c.Request.Context(), userID, batchID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bid)
}

// CancelBid withdraws the caller's bid while bidding is still open
// @Summary Cancel bid
// @Tags bidding
// @Produce json
// @Param id path string true "Batch ID"
// @Param bidId path string true "Bid ID"
// @Success 204 "No Content"
// @Failure 422 {object} dto.Response
// @Router /marketplace/batches/{id}/bids/{bidId} [delete]
func (h *BiddingHandler) CancelBid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid batch id")
		return
	}

	bidID, err := parseIDParam(c, "bidId")
	if err != nil {
		h.BadRequest(c, "invalid bid id")
		return
	}

	if err := h.biddingService.CancelBid(c.Request.Context(), userID, batchID, bidID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Close closes bidding and selects the winning bid
// @Summary Close bidding
// @Tags bidding
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /marketplace/batches/{id}/bidding/close [post]
func (h *BiddingHandler) Close(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid batch id")
		return
	}

	batch, err := h.biddingService.CloseBidding(c.Request.Context(), userID, batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// ListBids returns all bids on a batch, newest first
// @Summary List bids
// @Tags bidding
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} dto.Response
// @Router /marketplace/batches/{id}/bids [get]
func (h *BiddingHandler) ListBids(c *gin.Context) {
	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid batch id")
		return
	}

	bids, err := h.biddingService.ListBids(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bids)
}
