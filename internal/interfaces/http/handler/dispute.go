package handler

import (
	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/lakshya-byte/krishinetra-backend/internal/application/fulfillment"
	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/dto"
)

// DisputeHandler handles dispute endpoints
type DisputeHandler struct {
	BaseHandler
	disputeService *fulfillmentapp.DisputeService
}

// NewDisputeHandler creates a new dispute handler
func NewDisputeHandler(disputeService *fulfillmentapp.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// Raise opens a dispute against another sale participant
// @Summary Raise dispute
// @Tags disputes
// @Accept json
// @Produce json
// @Param request body fulfillmentapp.RaiseDisputeRequest true "Dispute details"
// @Success 201 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/disputes [post]
func (h *DisputeHandler) Raise(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req fulfillmentapp.RaiseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	dispute, err := h.disputeService.Raise(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, dispute)
}

// GetByID returns a single dispute
// @Summary Get dispute
// @Tags disputes
// @Produce json
// @Param id path string true "Dispute ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /fulfillment/disputes/{id} [get]
func (h *DisputeHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid dispute id")
		return
	}

	dispute, err := h.disputeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dispute)
}

// ListBySale returns all disputes raised on a sale
// @Summary List disputes by sale
// @Tags disputes
// @Produce json
// @Param saleId path string true "Sale ID"
// @Success 200 {object} dto.Response
// @Router /fulfillment/sales/{saleId}/disputes [get]
func (h *DisputeHandler) ListBySale(c *gin.Context) {
	saleID, err := parseIDParam(c, "saleId")
	if err != nil {
		h.BadRequest(c, "invalid sale id")
		return
	}

	disputes, err := h.disputeService.ListBySale(c.Request.Context(), saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, disputes)
}

// ListOpen returns unresolved disputes for the admin queue
// @Summary List open disputes
// @Tags disputes
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.Response
// @Router /fulfillment/disputes [get]
func (h *DisputeHandler) ListOpen(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	disputes, total, err := h.disputeService.ListOpen(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, disputes, total, req.Page, req.PageSize)
}

// StartReview moves an open dispute under review
// @Summary Start dispute review
// @Tags disputes
// @Produce json
// @Param id path string true "Dispute ID"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/disputes/{id}/review [post]
func (h *DisputeHandler) StartReview(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid dispute id")
		return
	}

	dispute, err := h.disputeService.StartReview(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dispute)
}

// Resolve records an administrative ruling on a dispute
// @Summary Resolve dispute
// @Tags disputes
// @Accept json
// @Produce json
// @Param id path string true "Dispute ID"
// @Param request body fulfillmentapp.ResolveDisputeRequest true "Ruling"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/disputes/{id}/resolve [post]
func (h *DisputeHandler) Resolve(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid dispute id")
		return
	}

	var req fulfillmentapp.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	dispute, err := h.disputeService.Resolve(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dispute)
}

// AddEvidence attaches another evidence URL to an open dispute
// @Summary Add dispute evidence
// @Tags disputes
// @Accept json
// @Produce json
// @Param id path string true "Dispute ID"
// @Param request body fulfillmentapp.AddEvidenceRequest true "Evidence URL"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/disputes/{id}/evidence [post]
func (h *DisputeHandler) AddEvidence(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid dispute id")
		return
	}

	var req fulfillmentapp.AddEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	dispute, err := h.disputeService.AddEvidence(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dispute)
}
