package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader is the request header a client sets to make a
// mutating request safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyKey rejects a repeat of a request that carries the same
// Idempotency-Key header value within the TTL. Requests without the
// header pass through untouched, so clients opt in per request.
//
// Keys are scoped by method and route template, so the same key can be
// reused against different endpoints without colliding.
func IdempotencyKey(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		scoped := c.Request.Method + ":" + c.FullPath() + ":" + key
		firstSeen, err := store.MarkProcessed(c.Request.Context(), scoped, ttl)
		if err != nil {
			// A broken store should not take payments down with it,
			// so let the request through and rely on domain checks.
			c.Next()
			return
		}
		if !firstSeen {
			requestID := c.GetString("request_id")
			if requestID == "" {
				requestID = c.GetHeader("X-Request-ID")
			}
			resp := dto.NewErrorResponseWithRequestID(
				dto.ErrCodeAlreadyExists,
				"A request with this idempotency key was already processed",
				requestID,
			)
			c.AbortWithStatusJSON(http.StatusConflict, resp)
			return
		}

		c.Next()
	}
}
