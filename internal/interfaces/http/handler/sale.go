package handler

import (
	"github.com/gin-gonic/gin"

	tradeapp "github.com/lakshya-byte/krishinetra-backend/internal/application/trade"
)

// SaleHandler handles sale completion and ownership lineage endpoints
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Complete records a sale and transfers batch ownership to the buyer
// @Summary Complete sale
// @Description Record a sale, deduct quantity and transfer ownership atomically
// @Tags sales
// @Accept json
// @Produce json
// @Param request body tradeapp.CompleteSaleRequest true "Sale details"
// @Success 201 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /trade/sales [post]
func (h *SaleHandler) Complete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req tradeapp.CompleteSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sale, err := h.saleService.CompleteSale(c.Request.Context(), userID, getRole(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, sale)
}

// GetByID returns a single sale
// @Summary Get sale
// @Tags sales
// @Produce json
// @Param id path string true "Sale ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /trade/sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	saleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid sale id")
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}

// ListByBatch returns all sales recorded against a batch
// @Summary List sales by batch
// @Tags sales
// @Produce json
// @Param batchId path string true "Batch ID"
// @Success 200 {object} dto.Response
// @Router /trade/batches/{batchId}/sales [get]
func (h *SaleHandler) ListByBatch(c *gin.Context) {
	batchID, err := parseIDParam(c, "batchId")
	if err != nil {
		h.BadRequest(c, "invalid batch id")
		return
	}

	sales, err := h.saleService.ListByBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sales)
}

// ListSold returns sales where the caller was the seller
// @Summary List sales as seller
// @Tags sales
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.Response
// @Router /trade/sales/sold [get]
func (h *SaleHandler) ListSold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var filter tradeapp.SaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	sales, total, err := h.saleService.ListBySeller(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// ListBought returns sales where the caller was the buyer
// @Summary List sales as buyer
// @Tags sales
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.Response
// @Router /trade/sales/bought [get]
func (h *SaleHandler) ListBought(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var filter tradeapp.SaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	sales, total, err := h.saleService.ListByBuyer(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// GetLineage returns the full ownership chain of a batch
// @Summary Get batch lineage
// @Description Trace a batch from the original farmer to its current owner
// @Tags sales
// @Produce json
// @Param batchId path string true "Batch ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /trade/batches/{batchId}/lineage [get]
func (h *SaleHandler) GetLineage(c *gin.Context) {
	batchID, err := parseIDParam(c, "batchId")
	if err != nil {
		h.BadRequest(c, "invalid batch id")
		return
	}

	lineage, err := h.saleService.GetLineage(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lineage)
}
