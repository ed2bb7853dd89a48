package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// QualityInspection records a quality check against a batch
type QualityInspection struct {
	shared.BaseEntity
	BatchID         uuid.UUID
	InspectorID     uuid.UUID
	Grade           string
	MoisturePercent decimal.Decimal
	Passed          bool
	Notes           string
	InspectedAt     time.Time
}

// NewQualityInspection records an inspection result for a batch
func NewQualityInspection(batchID, inspectorID uuid.UUID, grade string, moisturePercent decimal.Decimal, passed bool, notes string, inspectedAt time.Time) (*QualityInspection, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Batch ID cannot be empty")
	}
	if inspectorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Inspector ID cannot be empty")
	}
	if grade == "" {
		return nil, shared.NewDomainError("INVALID_GRADE", "Grade cannot be empty")
	}
	if moisturePercent.IsNegative() || moisturePercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_MOISTURE", "Moisture must be between 0 and 100 percent")
	}

	return &QualityInspection{
		BaseEntity:      shared.NewBaseEntity(),
		BatchID:         batchID,
		InspectorID:     inspectorID,
		Grade:           grade,
		MoisturePercent: moisturePercent,
		Passed:          passed,
		Notes:           notes,
		InspectedAt:     inspectedAt,
	}, nil
}
