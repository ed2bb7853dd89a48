package fulfillment

import (
	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// Rating is a 1 to 5 score a sale participant gives the counterpart.
// At most one rating per rater per sale; uniqueness is enforced by the
// repository.
type Rating struct {
	shared.BaseEntity
	SaleID  uuid.UUID
	RaterID uuid.UUID
	RateeID uuid.UUID
	Score   int
	Comment string
}

// NewRating creates a rating for a sale counterpart
func NewRating(saleID, raterID, rateeID uuid.UUID, score int, comment string) (*Rating, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Sale ID cannot be empty")
	}
	if raterID == uuid.Nil || rateeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Rater and ratee IDs cannot be empty")
	}
	if raterID == rateeID {
		return nil, shared.NewDomainError("INVALID_PARTY", "Cannot rate yourself")
	}
	if score < 1 || score > 5 {
		return nil, shared.NewDomainError("INVALID_SCORE", "Score must be between 1 and 5")
	}
	if len(comment) > 500 {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 500 characters")
	}

	return &Rating{
		BaseEntity: shared.NewBaseEntity(),
		SaleID:     saleID,
		RaterID:    raterID,
		RateeID:    rateeID,
		Score:      score,
		Comment:    comment,
	}, nil
}
