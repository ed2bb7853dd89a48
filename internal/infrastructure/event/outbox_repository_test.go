package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/persistence/models"
)

// setupOutboxTestDB creates an in-memory SQLite database for testing
func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.OutboxEntryModel{}))
	return db
}

func newTestEntry(t *testing.T, eventType string) *shared.OutboxEntry {
	t.Helper()
	event := shared.NewBaseDomainEvent(eventType, "Batch", uuid.New())
	return shared.NewOutboxEntry(&event, []byte(`{"test":true}`))
}

func TestGormOutboxRepository_SaveAndFindPending(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	first := newTestEntry(t, "batch.created")
	second := newTestEntry(t, "batch.listed")
	require.NoError(t, repo.Save(ctx, first, second))

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	limited, err := repo.FindPending(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGormOutboxRepository_RetryLifecycle(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	entry := newTestEntry(t, "sale.completed")
	require.NoError(t, repo.Save(ctx, entry))

	entry.MarkFailed("broker unavailable")
	require.NoError(t, repo.Update(ctx, entry))

	t.Run("failed entry becomes retryable after backoff", func(t *testing.T) {
		retryable, err := repo.FindRetryable(ctx, time.Now().Add(time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, retryable, 1)
		assert.Equal(t, entry.ID, retryable[0].ID)
		assert.Equal(t, 1, retryable[0].RetryCount)
		assert.Equal(t, "broker unavailable", retryable[0].LastError)
	})

	t.Run("exhausted retries move the entry to dead letters", func(t *testing.T) {
		for entry.Status != shared.OutboxStatusDead {
			entry.MarkFailed("broker unavailable")
		}
		require.NoError(t, repo.Update(ctx, entry))

		dead, total, err := repo.FindDead(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, dead, 1)
		assert.Equal(t, entry.ID, dead[0].ID)
	})

	t.Run("dead letter can be requeued", func(t *testing.T) {
		found, err := repo.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		require.NoError(t, found.ResetForRetry())
		require.NoError(t, repo.Update(ctx, found))

		pending, err := repo.FindPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Zero(t, pending[0].RetryCount)
	})
}

func TestGormOutboxRepository_CountByStatus(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	sent := newTestEntry(t, "batch.created")
	sent.MarkSent()
	pending := newTestEntry(t, "batch.listed")
	require.NoError(t, repo.Save(ctx, sent, pending))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusSent])
	assert.Equal(t, int64(1), counts[shared.OutboxStatusPending])
}

func TestGormOutboxRepository_DeleteOlderThan(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	old := newTestEntry(t, "batch.created")
	old.MarkSent()
	processedAt := time.Now().Add(-48 * time.Hour)
	old.ProcessedAt = &processedAt

	fresh := newTestEntry(t, "batch.listed")
	fresh.MarkSent()

	stillPending := newTestEntry(t, "batch.relisted")

	require.NoError(t, repo.Save(ctx, old, fresh, stillPending))

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, old.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByID(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestGormOutboxRepository_FindByID(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
