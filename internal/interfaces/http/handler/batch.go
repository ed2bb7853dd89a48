package handler

import (
	"github.com/gin-gonic/gin"

	marketplaceapp "github.com/lakshya-byte/krishinetra-backend/internal/application/marketplace"
)

// BatchHandler handles produce batch endpoints
type BatchHandler struct {
	BaseHandler
	batchService *marketplaceapp.BatchService
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batchService *marketplaceapp.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

// Create registers a new harvest batch owned by the calling farmer
// @Summary Create batch
// @Description Register a new harvest batch in HARVESTED status
// @Tags batches
// @Accept json
// @Produce json
// @Param request body marketplaceapp.CreateBatchRequest true "Batch details"
// @Success 201 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Router /marketplace/batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req marketplaceapp.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	batch, err := h.batchService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, batch)
}

// GetByID returns a single batch
// @Summary Get batch
// @Tags batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /marketplace/batches/{id} [get]
func (h *BatchHandler) GetByID(c *gin.Context) {
	batchID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid batch id")
		return
	}

	batch, err := h.batchService.GetByID(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// GetByBatchNumber returns a batch by its human-readable number
// @Summary Get batch by number
// @Tags batches
// @Produce json
// @Param number path string true "Batch number"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /marketplace/batches/number/{number} [get]
func (h *BatchHandler) GetByBatchNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "batch number is required")
		return
	}

	batch, err := h.batchService.GetByBatchNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// List returns batches matching the given filter
// @Summary List batches
// @Tags batches
// @Produce json
// @Param status query string false "Batch status"
// @Param crop_name query string false "Crop name"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.Response
// @Router /marketplace/batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	var filter marketplaceapp.BatchListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	batches, total, err := h.batchService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, batches, total, filter.Page, filter.PageSize)
}

// ListMine returns batches owned by the calling user
// @Summary List own batches
// @Tags batches
// @Produce json
// @Success 200 {object} dto.Response
// @Router /marketplace/batches/mine [get]
func (h *BatchHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var filter marketplaceapp.BatchListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	batches, total, err := h.batchService.ListByOwner(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, batches, total, filter.Page, filter.PageSize)
}

// ListForSale puts a batch on the marketplace
// @Summary List batch for sale
// @Description Transition a batch from HARVESTED to LISTED
// @Tags batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /marketplace/batches/{id}/list [post]
func (h *BatchHandler) ListForSale(c *gin.Context) {
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

	batch, err := h.batchService.ListBatch(c.Request.Context(), userID, batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// UpdatePrice changes the ask price of a listed batch
// @Summary Update batch price
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param request body marketplaceapp.UpdatePriceRequest true "New price"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /marketplace/batches/{id}/price [put]
func (h *BatchHandler) UpdatePrice(c *gin.Context) {
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

	var req marketplaceapp.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	batch, err := h.batchService.UpdatePrice(c.Request.Context(), userID, batchID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// Relist puts remaining quantity back on the market for retail
// @Summary Relist batch
// @Description Relist a purchased batch's remaining quantity at a new price
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param request body marketplaceapp.RelistRequest true "Relist price"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /marketplace/batches/{id}/relist [post]
func (h *BatchHandler) Relist(c *gin.Context) {
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

	var req marketplaceapp.RelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	batch, err := h.batchService.Relist(c.Request.Context(), userID, batchID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// Finish closes out a batch with no remaining quantity
// @Summary Finish batch
// @Description Move a retail-listed batch with zero remaining quantity into the terminal state
// @Tags batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /marketplace/batches/{id}/finish [post]
func (h *BatchHandler) Finish(c *gin.Context) {
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

	batch, err := h.batchService.Finish(c.Request.Context(), userID, batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// OverrideStatus forces a batch into a given status
// @Summary Override batch status
// @Description Administrative status override with an audit reason
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param request body marketplaceapp.OverrideStatusRequest true "Override details"
// @Success 200 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Router /marketplace/batches/{id}/override [post]
func (h *BatchHandler) OverrideStatus(c *gin.Context) {
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

	var req marketplaceapp.OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	batch, err := h.batchService.OverrideStatus(c.Request.Context(), userID, batchID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}
