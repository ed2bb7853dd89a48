package trade

import (
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// OwnershipRecord is one link in a batch's ownership chain. Records are
// append-only; the chain read in chronological order reconstructs the
// batch's current owner.
type OwnershipRecord struct {
	shared.BaseEntity
	BatchID         uuid.UUID
	PreviousOwnerID uuid.UUID
	NewOwnerID      uuid.UUID
	TransferType    SaleType
	SaleID          *uuid.UUID
	TransferDate    time.Time
}

// NewOwnershipRecord creates an ownership transfer record for a
// completed sale. SaleID is nil only for administrative overrides.
func NewOwnershipRecord(batchID, previousOwnerID, newOwnerID uuid.UUID, transferType SaleType, saleID *uuid.UUID, transferDate time.Time) (*OwnershipRecord, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	if previousOwnerID == uuid.Nil || newOwnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Previous and new owner IDs cannot be empty")
	}
	if previousOwnerID == newOwnerID {
		return nil, shared.NewDomainError("INVALID_PARTY", "Ownership cannot transfer to the same participant")
	}
	if !transferType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SALE_TYPE", "Unknown transfer type")
	}
	if transferType != SaleTypeAdminOverride && saleID == nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID is required for non-override transfers")
	}

	return &OwnershipRecord{
		BaseEntity:      shared.NewBaseEntityAt(transferDate),
		BatchID:         batchID,
		PreviousOwnerID: previousOwnerID,
		NewOwnerID:      newOwnerID,
		TransferType:    transferType,
		SaleID:          saleID,
		TransferDate:    transferDate,
	}, nil
}

// Lineage is a batch's complete ownership chain in chronological order
type Lineage struct {
	BatchID uuid.UUID
	Records []OwnershipRecord
}

// NewLineage builds a lineage from records already sorted by transfer
// date. It validates chain continuity: each record's previous owner must
// equal the prior record's new owner.
func NewLineage(batchID uuid.UUID, records []OwnershipRecord) (*Lineage, error) {
	for i := range records {
		if records[i].BatchID != batchID {
			return nil, shared.NewDomainError("INVALID_LINEAGE", "Record belongs to a different batch")
		}
		if i > 0 && records[i].PreviousOwnerID != records[i-1].NewOwnerID {
			return nil, shared.NewDomainError("BROKEN_LINEAGE", "Ownership chain is not continuous")
		}
	}
	return &Lineage{BatchID: batchID, Records: records}, nil
}

// CurrentOwner returns the owner at the end of the chain, or the given
// origin owner when no transfer has happened yet.
func (l *Lineage) CurrentOwner(originOwnerID uuid.UUID) uuid.UUID {
	if len(l.Records) == 0 {
		return originOwnerID
	}
	return l.Records[len(l.Records)-1].NewOwnerID
}

// TransferCount returns the number of completed transfers
func (l *Lineage) TransferCount() int {
	return len(l.Records)
}
