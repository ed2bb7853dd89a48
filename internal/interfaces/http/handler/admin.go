package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	marketplaceapp "github.com/lakshya-byte/krishinetra-backend/internal/application/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/dto"
)

// CloseoutRunner runs a bidding closeout sweep on demand
type CloseoutRunner interface {
	CloseDue(ctx context.Context) (*marketplaceapp.CloseoutStats, error)
}

// AdminHandler handles operational endpoints for administrators
type AdminHandler struct {
	BaseHandler
	outboxRepo shared.OutboxRepository
	closeout   CloseoutRunner
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(outboxRepo shared.OutboxRepository, closeout CloseoutRunner) *AdminHandler {
	return &AdminHandler{outboxRepo: outboxRepo, closeout: closeout}
}

// OutboxStats returns outbox entry counts grouped by status
// @Summary Outbox statistics
// @Tags admin
// @Produce json
// @Success 200 {object} dto.Response
// @Router /admin/outbox/stats [get]
func (h *AdminHandler) OutboxStats(c *gin.Context) {
	counts, err := h.outboxRepo.CountByStatus(c.Request.Context())
	if err != nil {
		h.InternalError(c, "failed to read outbox statistics")
		return
	}

	stats := make(map[string]int64, len(counts))
	for status, count := range counts {
		stats[string(status)] = count
	}

	h.Success(c, stats)
}

// ListDeadLetters returns outbox entries that exhausted their retries
// @Summary List dead letters
// @Tags admin
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.Response
// @Router /admin/outbox/dead-letters [get]
func (h *AdminHandler) ListDeadLetters(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	entries, total, err := h.outboxRepo.FindDead(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.InternalError(c, "failed to list dead letters")
		return
	}

	h.SuccessWithMeta(c, entries, total, req.Page, req.PageSize)
}

// RequeueDeadLetter resets a dead letter for another delivery attempt
// @Summary Requeue dead letter
// @Tags admin
// @Produce json
// @Param id path string true "Outbox entry ID"
// @Success 200 {object} dto.Response
// @Failure 422 {object} dto.Response
// @Router /admin/outbox/dead-letters/{id}/requeue [post]
func (h *AdminHandler) RequeueDeadLetter(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid entry id")
		return
	}

	entry, err := h.outboxRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if err := entry.ResetForRetry(); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if err := h.outboxRepo.Update(c.Request.Context(), entry); err != nil {
		h.InternalError(c, "failed to requeue entry")
		return
	}

	h.Success(c, entry)
}

// RunBiddingCloseout sweeps batches whose bidding window has expired
// @Summary Run bidding closeout
// @Description Close all bidding windows that are past their closing time
// @Tags admin
// @Produce json
// @Success 200 {object} dto.Response
// @Router /admin/bidding/closeout [post]
func (h *AdminHandler) RunBiddingCloseout(c *gin.Context) {
	stats, err := h.closeout.CloseDue(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
