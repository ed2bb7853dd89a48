package handler

import (
	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/lakshya-byte/krishinetra-backend/internal/application/fulfillment"
	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/dto"
)

// VerificationHandler handles participant KYC endpoints
type VerificationHandler struct {
	BaseHandler
	verificationService *fulfillmentapp.VerificationService
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verificationService *fulfillmentapp.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

// Request submits the caller's verification documents for review
// @Summary Request verification
// @Tags verification
// @Accept json
// @Produce json
// @Param request body fulfillmentapp.RequestVerificationRequest true "Document reference"
// @Success 201 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/verifications [post]
func (h *VerificationHandler) Request(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var req fulfillmentapp.RequestVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	verification, err := h.verificationService.Request(c.Request.Context(), userID, getRole(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, verification)
}

// GetMine returns the caller's verification record
// @Summary Get own verification
// @Tags verification
// @Produce json
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /fulfillment/verifications/mine [get]
func (h *VerificationHandler) GetMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	verification, err := h.verificationService.GetByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, verification)
}

// ListPending returns verifications awaiting admin review
// @Summary List pending verifications
// @Tags verification
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.Response
// @Router /fulfillment/verifications [get]
func (h *VerificationHandler) ListPending(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	verifications, total, err := h.verificationService.ListPending(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, verifications, total, req.Page, req.PageSize)
}

// Review records an admin decision on a pending verification
// @Summary Review verification
// @Tags verification
// @Accept json
// @Produce json
// @Param id path string true "Verification ID"
// @Param request body fulfillmentapp.ReviewVerificationRequest true "Decision"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /fulfillment/verifications/{id}/review [post]
func (h *VerificationHandler) Review(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	verificationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid verification id")
		return
	}

	var req fulfillmentapp.ReviewVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	verification, err := h.verificationService.Review(c.Request.Context(), userID, verificationID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, verification)
}
