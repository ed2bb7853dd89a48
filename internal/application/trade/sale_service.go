package trade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// maxConflictRetries bounds automatic retries after an optimistic lock
// conflict. Other errors are never retried.
const maxConflictRetries = 3

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

// SaleService coordinates ownership transfers: it is the only writer
// that commits a sale, and every commit moves quantity, ownership and
// batch status together in one transaction.
type SaleService struct {
	saleRepo      trade.SaleRepository
	batchRepo     marketplace.BatchRepository
	ownershipRepo trade.OwnershipHistoryRepository
	logger        *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	saleRepo trade.SaleRepository,
	batchRepo marketplace.BatchRepository,
	ownershipRepo trade.OwnershipHistoryRepository,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		saleRepo:      saleRepo,
		batchRepo:     batchRepo,
		ownershipRepo: ownershipRepo,
		logger:        logger,
	}
}

// CompleteSale commits a sale of batch quantity from the seller to the
// buyer. The whole flow is all-or-nothing: quantity decrement, sale
// record, ownership record, batch status change and outbox events
// either all commit or none do. Concurrent sales on the same batch are
// serialized by the batch version; a losing writer is retried against
// fresh state, so oversell is impossible.
func (s *SaleService) CompleteSale(ctx context.Context, sellerID uuid.UUID, sellerRole shared.Role, req CompleteSaleRequest) (*SaleResponse, error) {
	buyerRole := shared.Role(req.BuyerRole)
	if !buyerRole.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown buyer role")
	}

	saleType, err := trade.SaleTypeForRoles(sellerRole, buyerRole)
	if err != nil {
		return nil, err
	}

	var result *SaleResponse
	err = withConflictRetry(func() error {
		batch, err := s.batchRepo.FindByID(ctx, req.BatchID)
		if err != nil {
			return err
		}

		// Admin overrides bypass the seller-of-record check; everyone
		// else must be entitled to sell the remaining quantity.
		if saleType != trade.SaleTypeAdminOverride && batch.SellerOfRecord() != sellerID {
			return shared.ErrOwnershipMismatch
		}

		now := time.Now()
		previousOwnerID := batch.CurrentOwnerID
		pricePerKg := batch.GetPricePerKgMoney()

		// A listed batch can be sold as a direct offer without a bidding
		// round; the batch enters the transaction on acceptance.
		if !saleType.IsRetail() &&
			(batch.Status == marketplace.BatchStatusListed || batch.Status == marketplace.BatchStatusBidding) {
			if err := batch.AcceptDirectSale(now); err != nil {
				return err
			}
		}

		if err := batch.ApplySale(req.BuyerID, req.QuantityKg, saleType.IsRetail(), now); err != nil {
			return err
		}

		saleNumber, err := s.saleRepo.GenerateSaleNumber(ctx)
		if err != nil {
			return err
		}

		sale, err := trade.NewSale(saleNumber, batch.ID, sellerID, req.BuyerID, saleType,
			req.QuantityKg, pricePerKg, now)
		if err != nil {
			return err
		}
		if req.Remark != "" {
			sale.SetRemark(req.Remark)
		}

		// The ownership chain links owners of record. A repeat purchase
		// by the current owner moves no ownership, so no record.
		var record *trade.OwnershipRecord
		if previousOwnerID != req.BuyerID {
			saleID := sale.ID
			record, err = trade.NewOwnershipRecord(batch.ID, previousOwnerID, req.BuyerID,
				saleType, &saleID, now)
			if err != nil {
				return err
			}
		}

		events := append(batch.GetDomainEvents(), sale.GetDomainEvents()...)
		if record != nil {
			events = append(events, trade.NewOwnershipTransferredEvent(record))
		}

		if err := s.saleRepo.SaveCompletedSale(ctx, sale, batch, record, events); err != nil {
			return err
		}
		batch.ClearDomainEvents()
		sale.ClearDomainEvents()

		s.logger.Info("Sale completed",
			zap.String("sale_number", sale.SaleNumber),
			zap.String("batch_number", batch.BatchNumber),
			zap.String("type", saleType.String()),
			zap.String("quantity_kg", sale.QuantityKg.String()),
			zap.String("total_amount", sale.TotalAmount.String()),
		)

		response := ToSaleResponse(sale)
		result = &response
		return nil
	})
	return result, err
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// ListByBatch lists all sales committed against a batch
func (s *SaleService) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]SaleResponse, error) {
	sales, err := s.saleRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	items := make([]SaleResponse, 0, len(sales))
	for _, sale := range sales {
		items = append(items, ToSaleResponse(sale))
	}
	return items, nil
}

// ListBySeller lists sales where the participant sold
func (s *SaleService) ListBySeller(ctx context.Context, sellerID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}

	page, err := s.saleRepo.FindBySeller(ctx, sellerID, f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]SaleResponse, 0, len(page.Items))
	for _, sale := range page.Items {
		items = append(items, ToSaleResponse(sale))
	}
	return items, page.Total, nil
}

// ListByBuyer lists sales where the participant bought
func (s *SaleService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}

	page, err := s.saleRepo.FindByBuyer(ctx, buyerID, f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]SaleResponse, 0, len(page.Items))
	for _, sale := range page.Items {
		items = append(items, ToSaleResponse(sale))
	}
	return items, page.Total, nil
}

// GetLineage returns the validated ownership chain of a batch. The
// reconstructed current owner must equal the batch's stored owner of
// record; a mismatch means corrupted history and is surfaced as an
// error rather than papered over.
func (s *SaleService) GetLineage(ctx context.Context, batchID uuid.UUID) (*LineageResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	lineage, err := s.ownershipRepo.LineageForBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if derived := lineage.CurrentOwner(batch.FarmerID); derived != batch.CurrentOwnerID {
		s.logger.Error("Ownership chain does not match batch owner of record",
			zap.String("batch_number", batch.BatchNumber),
			zap.String("derived_owner", derived.String()),
			zap.String("stored_owner", batch.CurrentOwnerID.String()),
		)
		return nil, shared.NewDomainError("BROKEN_LINEAGE", "Ownership chain does not reconstruct the current owner")
	}

	response := ToLineageResponse(lineage, batch.FarmerID)
	return &response, nil
}
