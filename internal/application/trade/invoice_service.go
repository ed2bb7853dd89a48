package trade

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/trade"
)

// InvoiceService handles invoice building, issuing and payments
type InvoiceService struct {
	invoiceRepo trade.InvoiceRepository
	saleRepo    trade.SaleRepository
	batchRepo   marketplace.BatchRepository
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo trade.InvoiceRepository,
	saleRepo trade.SaleRepository,
	batchRepo marketplace.BatchRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		saleRepo:    saleRepo,
		batchRepo:   batchRepo,
		logger:      logger,
	}
}

// Create builds a draft invoice from the seller's committed sales to
// one buyer
func (s *InvoiceService) Create(ctx context.Context, sellerID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := trade.NewInvoice(invoiceNumber, sellerID, req.BuyerID)
	if err != nil {
		return nil, err
	}

	for _, saleID := range req.SaleIDs {
		sale, err := s.saleRepo.FindByID(ctx, saleID)
		if err != nil {
			return nil, err
		}

		batchNumber := ""
		if batch, err := s.batchRepo.FindByID(ctx, sale.BatchID); err == nil {
			batchNumber = batch.BatchNumber
		}

		if err := invoice.AddSale(sale, batchNumber, ""); err != nil {
			return nil, err
		}
	}

	if req.TaxAmount != nil {
		if err := invoice.SetTax(valueobject.NewMoneyINR(*req.TaxAmount)); err != nil {
			return nil, err
		}
	}
	if req.Remark != "" {
		invoice.SetRemark(req.Remark)
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// ListBySeller lists invoices raised by the seller
func (s *InvoiceService) ListBySeller(ctx context.Context, sellerID uuid.UUID, filter SaleListFilter) ([]InvoiceResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}

	page, err := s.invoiceRepo.FindBySeller(ctx, sellerID, f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]InvoiceResponse, 0, len(page.Items))
	for _, invoice := range page.Items {
		items = append(items, ToInvoiceResponse(invoice))
	}
	return items, page.Total, nil
}

// Issue finalizes a draft invoice. Only the issuing seller may issue.
func (s *InvoiceService) Issue(ctx context.Context, callerID, invoiceID uuid.UUID, req IssueInvoiceRequest) (*InvoiceResponse, error) {
	var result *InvoiceResponse
	err := withConflictRetry(func() error {
		invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.SellerID != callerID {
			return shared.ErrForbidden
		}
		if err := invoice.Issue(req.DueDate); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, invoice.GetDomainEvents()); err != nil {
			return err
		}
		invoice.ClearDomainEvents()

		s.logger.Info("Invoice issued",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("total_amount", invoice.TotalAmount.String()),
		)

		response := ToInvoiceResponse(invoice)
		result = &response
		return nil
	})
	return result, err
}

// RecordPayment accumulates a payment on an issued invoice. Either of
// the two parties may record; the seller confirms receipt, the buyer
// reports a transfer.
func (s *InvoiceService) RecordPayment(ctx context.Context, callerID, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	var result *InvoiceResponse
	err := withConflictRetry(func() error {
		invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.SellerID != callerID && invoice.BuyerID != callerID {
			return shared.ErrForbidden
		}
		if err := invoice.RecordPayment(valueobject.NewMoneyINR(req.Amount)); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, invoice.GetDomainEvents()); err != nil {
			return err
		}
		invoice.ClearDomainEvents()

		response := ToInvoiceResponse(invoice)
		result = &response
		return nil
	})
	return result, err
}

// Settle closes a fully paid invoice
func (s *InvoiceService) Settle(ctx context.Context, callerID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var result *InvoiceResponse
	err := withConflictRetry(func() error {
		invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.SellerID != callerID {
			return shared.ErrForbidden
		}
		if err := invoice.Settle(); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, invoice.GetDomainEvents()); err != nil {
			return err
		}
		invoice.ClearDomainEvents()
		response := ToInvoiceResponse(invoice)
		result = &response
		return nil
	})
	return result, err
}

// Cancel voids a draft or unpaid issued invoice
func (s *InvoiceService) Cancel(ctx context.Context, callerID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var result *InvoiceResponse
	err := withConflictRetry(func() error {
		invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.SellerID != callerID {
			return shared.ErrForbidden
		}
		if err := invoice.Cancel(); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, invoice.GetDomainEvents()); err != nil {
			return err
		}
		invoice.ClearDomainEvents()
		response := ToInvoiceResponse(invoice)
		result = &response
		return nil
	})
	return result, err
}
