package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// maxConflictRetries bounds automatic retries after an optimistic lock
// conflict. Other errors are never retried.
const maxConflictRetries = 3

// withConflictRetry reloads and reapplies a mutation when the save hits
// a version conflict.
func withConflictRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		err = fn()
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

// BatchService handles batch registration and lifecycle operations
type BatchService struct {
	batchRepo     marketplace.BatchRepository
	ownershipRepo trade.OwnershipHistoryRepository
}

// NewBatchService creates a new BatchService
func NewBatchService(batchRepo marketplace.BatchRepository, ownershipRepo trade.OwnershipHistoryRepository) *BatchService {
	return &BatchService{
		batchRepo:     batchRepo,
		ownershipRepo: ownershipRepo,
	}
}

// Create registers a new batch for the farmer
func (s *BatchService) Create(ctx context.Context, farmerID uuid.UUID, req CreateBatchRequest) (*BatchResponse, error) {
	batchNumber, err := s.batchRepo.GenerateBatchNumber(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := marketplace.NewBatch(farmerID, batchNumber, req.CropName, req.Variety,
		req.QuantityKg, valueobject.NewMoneyINR(req.PricePerKg))
	if err != nil {
		return nil, err
	}

	if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
		return nil, err
	}
	batch.ClearDomainEvents()

	response := ToBatchResponse(batch)
	return &response, nil
}

// GetByID retrieves a batch by ID
func (s *BatchService) GetByID(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// GetByBatchNumber retrieves a batch by its human-readable number
func (s *BatchService) GetByBatchNumber(ctx context.Context, batchNumber string) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByBatchNumber(ctx, batchNumber)
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// List retrieves batches with filtering and pagination
func (s *BatchService) List(ctx context.Context, filter BatchListFilter) ([]BatchListItemResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}
	if filter.CropName != "" {
		f.Filters["crop_name"] = filter.CropName
	}

	var (
		page *shared.Paginated[*marketplace.Batch]
		err  error
	)
	if filter.Status != "" {
		status := marketplace.BatchStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown batch status filter")
		}
		page, err = s.batchRepo.FindByStatus(ctx, status, f)
	} else {
		page, err = s.batchRepo.FindAll(ctx, f)
	}
	if err != nil {
		return nil, 0, err
	}

	items := make([]BatchListItemResponse, 0, len(page.Items))
	for _, batch := range page.Items {
		items = append(items, ToBatchListItemResponse(batch))
	}
	return items, page.Total, nil
}

// ListByOwner retrieves batches currently owned by the given participant
func (s *BatchService) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter BatchListFilter) ([]BatchListItemResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}

	page, err := s.batchRepo.FindByOwner(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}

	items := make([]BatchListItemResponse, 0, len(page.Items))
	for _, batch := range page.Items {
		items = append(items, ToBatchListItemResponse(batch))
	}
	return items, page.Total, nil
}

// ListBatch offers a created batch for sale
func (s *BatchService) ListBatch(ctx context.Context, callerID, batchID uuid.UUID) (*BatchResponse, error) {
	var result *BatchResponse
	err := withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.FarmerID != callerID {
			return shared.ErrOwnershipMismatch
		}
		if err := batch.List(); err != nil {
			return err
		}
		if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
			return err
		}
		batch.ClearDomainEvents()
		response := ToBatchResponse(batch)
		result = &response
		return nil
	})
	return result, err
}

// UpdatePrice changes the seller's ask price
func (s *BatchService) UpdatePrice(ctx context.Context, callerID, batchID uuid.UUID, req UpdatePriceRequest) (*BatchResponse, error) {
	var result *BatchResponse
	err := withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if err := batch.UpdateAskPrice(callerID, valueobject.NewMoneyINR(req.PricePerKg)); err != nil {
			return err
		}
		if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
			return err
		}
		batch.ClearDomainEvents()
		response := ToBatchResponse(batch)
		result = &response
		return nil
	})
	return result, err
}

// Relist relists the remaining quantity for retail sale
func (s *BatchService) Relist(ctx context.Context, callerID, batchID uuid.UUID, req RelistRequest) (*BatchResponse, error) {
	var result *BatchResponse
	err := withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if err := batch.RelistForRetailers(callerID, valueobject.NewMoneyINR(req.PricePerKg), time.Now()); err != nil {
			return err
		}
		if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
			return err
		}
		batch.ClearDomainEvents()
		response := ToBatchResponse(batch)
		result = &response
		return nil
	})
	return result, err
}

// Finish closes out a retail-listed batch whose quantity is exhausted.
// Retail buyouts finish a batch on their own; this covers a batch left
// at zero quantity by an administrative correction.
func (s *BatchService) Finish(ctx context.Context, callerID, batchID uuid.UUID) (*BatchResponse, error) {
	var result *BatchResponse
	err := withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.SellerOfRecord() != callerID {
			return shared.ErrOwnershipMismatch
		}
		if err := batch.Finish(time.Now()); err != nil {
			return err
		}
		if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
			return err
		}
		batch.ClearDomainEvents()
		response := ToBatchResponse(batch)
		result = &response
		return nil
	})
	return result, err
}

// OverrideStatus forces a batch status as an administrative correction.
// A change of owner is recorded in the ownership history with the
// override transfer type so the lineage stays complete.
func (s *BatchService) OverrideStatus(ctx context.Context, adminID, batchID uuid.UUID, req OverrideStatusRequest) (*BatchResponse, error) {
	target := marketplace.BatchStatus(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown batch status")
	}

	var result *BatchResponse
	err := withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return err
		}

		previousOwnerID := batch.CurrentOwnerID
		newOwnerID := uuid.Nil
		if req.NewOwnerID != nil {
			newOwnerID = *req.NewOwnerID
		}

		now := time.Now()
		if err := batch.OverrideStatus(target, newOwnerID, now); err != nil {
			return err
		}

		// An owner change commits with its lineage record or not at all.
		if newOwnerID != uuid.Nil && newOwnerID != previousOwnerID {
			record, err := trade.NewOwnershipRecord(batch.ID, previousOwnerID, newOwnerID,
				trade.SaleTypeAdminOverride, nil, now)
			if err != nil {
				return err
			}
			if err := s.ownershipRepo.SaveWithBatch(ctx, record, batch, batch.GetDomainEvents()); err != nil {
				return err
			}
		} else if err := s.batchRepo.SaveWithLockAndEvents(ctx, batch, batch.GetDomainEvents()); err != nil {
			return err
		}
		batch.ClearDomainEvents()

		response := ToBatchResponse(batch)
		result = &response
		return nil
	})
	return result, err
}
