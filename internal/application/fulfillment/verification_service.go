package fulfillment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/fulfillment"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// VerificationService manages KYC reviews for platform participants
type VerificationService struct {
	verificationRepo fulfillment.VerificationRepository
	logger           *zap.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	verificationRepo fulfillment.VerificationRepository,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		verificationRepo: verificationRepo,
		logger:           logger,
	}
}

// Request opens a pending review for the caller. A rejected review is
// reopened with the new document instead of creating a second row.
func (s *VerificationService) Request(ctx context.Context, userID uuid.UUID, role shared.Role, req RequestVerificationRequest) (*VerificationResponse, error) {
	existing, err := s.verificationRepo.FindByUser(ctx, userID)
	switch {
	case err == nil:
		if err := existing.Reopen(req.DocumentRef); err != nil {
			return nil, err
		}
		if err := s.verificationRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
		response := ToVerificationResponse(existing)
		return &response, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	verification, err := fulfillment.NewVerification(userID, role, req.DocumentRef)
	if err != nil {
		return nil, err
	}
	if err := s.verificationRepo.Save(ctx, verification); err != nil {
		return nil, err
	}

	s.logger.Info("Verification requested",
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
	)

	response := ToVerificationResponse(verification)
	return &response, nil
}

// GetByUser retrieves a user's verification state
func (s *VerificationService) GetByUser(ctx context.Context, userID uuid.UUID) (*VerificationResponse, error) {
	verification, err := s.verificationRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToVerificationResponse(verification)
	return &response, nil
}

// ListPending pages through reviews awaiting an admin decision
func (s *VerificationService) ListPending(ctx context.Context, page, pageSize int) ([]VerificationResponse, int64, error) {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 && pageSize <= 100 {
		f.PageSize = pageSize
	}

	result, err := s.verificationRepo.FindByStatus(ctx, fulfillment.VerificationStatusPending, f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]VerificationResponse, 0, len(result.Items))
	for _, v := range result.Items {
		items = append(items, ToVerificationResponse(v))
	}
	return items, result.Total, nil
}

// Review applies an admin decision to a pending verification
func (s *VerificationService) Review(ctx context.Context, reviewerID, verificationID uuid.UUID, req ReviewVerificationRequest) (*VerificationResponse, error) {
	verification, err := s.verificationRepo.FindByID(ctx, verificationID)
	if err != nil {
		return nil, err
	}

	if req.Approve {
		err = verification.Approve(reviewerID, req.Remark)
	} else {
		err = verification.Reject(reviewerID, req.Remark)
	}
	if err != nil {
		return nil, err
	}

	if err := s.verificationRepo.Save(ctx, verification); err != nil {
		return nil, err
	}

	s.logger.Info("Verification reviewed",
		zap.String("user_id", verification.UserID.String()),
		zap.String("status", verification.Status.String()),
	)

	response := ToVerificationResponse(verification)
	return &response, nil
}
