package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/dto"
)

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[key], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

func newIdempotencyRouter(store *fakeIdempotencyStore) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	calls := 0
	router := gin.New()
	router.POST("/trade/invoices/:id/payments", IdempotencyKey(store, time.Hour), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"recorded": true}))
	})
	return router, &calls
}

func TestIdempotencyKey(t *testing.T) {
	t.Run("passes through without header", func(t *testing.T) {
		store := newFakeIdempotencyStore()
		router, calls := newIdempotencyRouter(store)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/trade/invoices/42/payments", nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
		assert.Equal(t, 2, *calls)
		assert.Empty(t, store.seen)
	})

	t.Run("rejects a replayed key", func(t *testing.T) {
		store := newFakeIdempotencyStore()
		router, calls := newIdempotencyRouter(store)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/trade/invoices/42/payments", nil)
		req.Header.Set(IdempotencyKeyHeader, "pay-2024-0001")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/trade/invoices/42/payments", nil)
		req.Header.Set(IdempotencyKeyHeader, "pay-2024-0001")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 1, *calls)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
	})

	t.Run("scopes keys by route", func(t *testing.T) {
		store := newFakeIdempotencyStore()
		router, _ := newIdempotencyRouter(store)
		router.POST("/trade/invoices/:id/settle", IdempotencyKey(store, time.Hour), func(c *gin.Context) {
			c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
		})

		req := httptest.NewRequest(http.MethodPost, "/trade/invoices/42/payments", nil)
		req.Header.Set(IdempotencyKeyHeader, "shared-key")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		req = httptest.NewRequest(http.MethodPost, "/trade/invoices/42/settle", nil)
		req.Header.Set(IdempotencyKeyHeader, "shared-key")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("lets the request through on store errors", func(t *testing.T) {
		store := newFakeIdempotencyStore()
		store.err = errors.New("redis: connection refused")
		router, calls := newIdempotencyRouter(store)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/trade/invoices/42/payments", nil)
		req.Header.Set(IdempotencyKeyHeader, "pay-2024-0002")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, *calls)
	})
}
