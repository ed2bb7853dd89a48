package handler

import (
	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/lakshya-byte/krishinetra-backend/internal/application/fulfillment"
)

// LogisticsHandler handles shipment tracking endpoints
type LogisticsHandler struct {
	BaseHandler
	logisticsService *fulfillmentapp.LogisticsService
}

// NewLogisticsHandler creates a new logistics handler
func NewLogisticsHandler(logisticsService *fulfillmentapp.LogisticsService) *LogisticsHandler {
	return &LogisticsHandler{logisticsService: logisticsService}
}

// Schedule schedules a shipment for a completed sale
// @Summary Schedule shipment
// @Tags logistics
// @Accept json
// @Produce json
// @Param request body fulfillmentapp.ScheduleShipmentRequest true "Shipment details"
// @Success 201 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/shipments [post]
func (h *LogisticsHandler) Schedule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req fulfillmentapp.ScheduleShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.logisticsService.Schedule(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, shipment)
}

// GetByID returns a single shipment
// @Summary Get shipment
// @Tags logistics
// @Produce json
// @Param id path string true "Shipment ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /fulfillment/shipments/{id} [get]
func (h *LogisticsHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid shipment id")
		return
	}

	shipment, err := h.logisticsService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// GetBySale returns the shipment attached to a sale
// @Summary Get shipment by sale
// @Tags logistics
// @Produce json
// @Param saleId path string true "Sale ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /fulfillment/sales/{saleId}/shipment [get]
func (h *LogisticsHandler) GetBySale(c *gin.Context) {
	saleID, err := parseIDParam(c, "saleId")
	if err != nil {
		h.BadRequest(c, "invalid sale id")
		return
	}

	shipment, err := h.logisticsService.GetBySale(c.Request.Context(), saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// Dispatch marks a shipment in transit with its tracking number
// @Summary Dispatch shipment
// @Tags logistics
// @Accept json
// @Produce json
// @Param id path string true "Shipment ID"
// @Param request body fulfillmentapp.DispatchShipmentRequest true "Tracking number"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/shipments/{id}/dispatch [post]
func (h *LogisticsHandler) Dispatch(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid shipment id")
		return
	}

	var req fulfillmentapp.DispatchShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.logisticsService.Dispatch(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// MarkDelivered marks a shipment as delivered
// @Summary Mark shipment delivered
// @Tags logistics
// @Produce json
// @Param id path string true "Shipment ID"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/shipments/{id}/delivered [post]
func (h *LogisticsHandler) MarkDelivered(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid shipment id")
		return
	}

	shipment, err := h.logisticsService.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// MarkFailed marks a shipment as failed with a reason
// @Summary Mark shipment failed
// @Tags logistics
// @Accept json
// @Produce json
// @Param id path string true "Shipment ID"
// @Param request body fulfillmentapp.FailShipmentRequest true "Failure reason"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/shipments/{id}/failed [post]
func (h *LogisticsHandler) MarkFailed(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid shipment id")
		return
	}

	var req fulfillmentapp.FailShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.logisticsService.MarkFailed(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}
