package handler

import (
	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/lakshya-byte/krishinetra-backend/internal/application/fulfillment"
)

// QualityHandler handles inspection and rating endpoints
type QualityHandler struct {
	BaseHandler
	qualityService *fulfillmentapp.QualityService
}

// NewQualityHandler creates a new quality handler
func NewQualityHandler(qualityService *fulfillmentapp.QualityService) *QualityHandler {
	return &QualityHandler{qualityService: qualityService}
}

// RecordInspection records a quality inspection against a batch
// @Summary Record inspection
// @Tags quality
// @Accept json
// @Produce json
// @Param request body fulfillmentapp.RecordInspectionRequest true "Inspection details"
// @Success 201 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/inspections [post]
func (h *QualityHandler) RecordInspection(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req fulfillmentapp.RecordInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	inspection, err := h.qualityService.RecordInspection(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, inspection)
}

// ListInspections returns all inspections recorded on a batch
// @Summary List inspections
// @Tags quality
// @Produce json
// @Param batchId path string true "Batch ID"
// @Success 200 {object} dto.Response
// @Router /fulfillment/batches/{batchId}/inspections [get]
func (h *QualityHandler) ListInspections(c *gin.Context) {
	batchID, err := parseIDParam(c, "batchId")
	if err != nil {
		h.BadRequest(c, "invalid batch id")
		return
	}

	inspections, err := h.qualityService.ListInspections(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, inspections)
}

// SubmitRating submits a rating for a counterparty on a sale
// @Summary Submit rating
// @Tags quality
// @Accept json
// @Produce json
// @Param request body fulfillmentapp.SubmitRatingRequest true "Rating details"
// @Success 201 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/ratings [post]
func (h *QualityHandler) SubmitRating(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req fulfillmentapp.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	rating, err := h.qualityService.SubmitRating(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, rating)
}

// RatingSummary returns the aggregate rating of a participant
// @Summary Get rating summary
// @Tags quality
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} dto.Response
// @Router /fulfillment/users/{userId}/rating [get]
func (h *QualityHandler) RatingSummary(c *gin.Context) {
	rateeID, err := parseIDParam(c, "userId")
	if err != nil {
		h.BadRequest(c, "invalid user id")
		return
	}

	summary, err := h.qualityService.RatingSummary(c.Request.Context(), rateeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}
