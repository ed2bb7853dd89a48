package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/dto"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler handles health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db      Pinger
	version string
	started time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db Pinger, version string) *SystemHandler {
	return &SystemHandler{
		db:      db,
		version: version,
		started: time.Now(),
	}
}

// Health reports process liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.Response
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready reports whether the service can reach its dependencies
// @Summary Readiness check
// @Tags system
// @Produce json
// @Success 200 {object} dto.Response
// @Failure 503 {object} dto.Response
// @Router /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
			dto.ErrCodeServiceUnavailable,
			"database unreachable",
		))
		return
	}

	h.Success(c, gin.H{"status": "ready"})
}
