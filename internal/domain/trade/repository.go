package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// SaleRepository defines the persistence contract for sale records
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindBySaleNumber(ctx context.Context, saleNumber string) (*Sale, error)
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*Sale, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Sale], error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Sale], error)
	FindByParties(ctx context.Context, sellerID, buyerID uuid.UUID) ([]*Sale, error)
	Save(ctx context.Context, sale *Sale) error
	// SaveCompletedSale persists the sale, the updated batch, and the
	// ownership record in one transaction. The batch write is guarded by
	// optimistic locking and a conditional quantity decrement; the events
	// go to the outbox in the same transaction.
	SaveCompletedSale(ctx context.Context, sale *Sale, batch *marketplace.Batch, record *OwnershipRecord, events []shared.DomainEvent) error
	GenerateSaleNumber(ctx context.Context) (string, error)
}

// OwnershipHistoryRepository defines the persistence contract for
// ownership transfer records
type OwnershipHistoryRepository interface {
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]OwnershipRecord, error)
	// LineageForBatch loads the chain ordered by transfer date and
	// validates its continuity.
	LineageForBatch(ctx context.Context, batchID uuid.UUID) (*Lineage, error)
	Save(ctx context.Context, record *OwnershipRecord) error
	// SaveWithBatch persists the record and the batch row in one
	// transaction, so an administrative owner change can never become
	// durable without its lineage record. The batch write is guarded by
	// optimistic locking; events go to the outbox in the same
	// transaction.
	SaveWithBatch(ctx context.Context, record *OwnershipRecord, batch *marketplace.Batch, events []shared.DomainEvent) error
}

// InvoiceRepository defines the persistence contract for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Invoice], error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Invoice], error)
	FindByStatus(ctx context.Context, status InvoiceStatus, filter shared.Filter) (*shared.Paginated[*Invoice], error)
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLockAndEvents(ctx context.Context, invoice *Invoice, events []shared.DomainEvent) error
	GenerateInvoiceNumber(ctx context.Context) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
