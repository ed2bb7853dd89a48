package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// BatchRepository defines the persistence contract for batch aggregates
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	FindByBatchNumber(ctx context.Context, batchNumber string) (*Batch, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Batch], error)
	FindByFarmer(ctx context.Context, farmerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Batch], error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Batch], error)
	FindByStatus(ctx context.Context, status BatchStatus, filter shared.Filter) (*shared.Paginated[*Batch], error)
	// FindDueForBiddingClose lists batches whose open bidding window has
	// passed its closing date at the given instant.
	FindDueForBiddingClose(ctx context.Context, now time.Time) ([]*Batch, error)
	Save(ctx context.Context, batch *Batch) error
	// SaveWithLockAndEvents persists the batch under optimistic locking and
	// writes the given events to the outbox in the same transaction. A
	// batch saved for the first time is inserted.
	SaveWithLockAndEvents(ctx context.Context, batch *Batch, events []shared.DomainEvent) error
	ExistsByBatchNumber(ctx context.Context, batchNumber string) (bool, error)
	GenerateBatchNumber(ctx context.Context) (string, error)
	CountByStatus(ctx context.Context, status BatchStatus) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
