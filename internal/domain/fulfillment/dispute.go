package fulfillment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// DisputeStatus represents the handling stage of a dispute
type DisputeStatus string

const (
	DisputeStatusOpen        DisputeStatus = "OPEN"
	DisputeStatusUnderReview DisputeStatus = "UNDER_REVIEW"
	DisputeStatusResolved    DisputeStatus = "RESOLVED"
	DisputeStatusRejected    DisputeStatus = "REJECTED"
)

// IsValid checks if the status is a valid DisputeStatus
func (s DisputeStatus) IsValid() bool {
	switch s {
	case DisputeStatusOpen, DisputeStatusUnderReview, DisputeStatusResolved, DisputeStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of DisputeStatus
func (s DisputeStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s DisputeStatus) CanTransitionTo(target DisputeStatus) bool {
	switch s {
	case DisputeStatusOpen:
		return target == DisputeStatusUnderReview || target == DisputeStatusRejected
	case DisputeStatusUnderReview:
		return target == DisputeStatusResolved || target == DisputeStatusRejected
	case DisputeStatusResolved, DisputeStatusRejected:
		return false // Terminal states
	}
	return false
}

// Dispute is a complaint raised by a sale participant against the
// counterpart. Evidence URLs are stored as opaque strings; fetching or
// validating their content is out of scope here.
type Dispute struct {
	shared.BaseAggregateRoot
	SaleID       uuid.UUID
	RaisedByID   uuid.UUID
	AgainstID    uuid.UUID
	Reason       string
	EvidenceURLs []string
	Status       DisputeStatus
	Resolution   string
	ResolvedByID *uuid.UUID
	ResolvedAt   *time.Time
}

// NewDispute opens a dispute on a sale
func NewDispute(saleID, raisedByID, againstID uuid.UUID, reason string, evidenceURLs []string) (*Dispute, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Sale ID cannot be empty")
	}
	if raisedByID == uuid.Nil || againstID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Dispute parties cannot be empty")
	}
	if raisedByID == againstID {
		return nil, shared.NewDomainError("INVALID_PARTY", "Cannot raise a dispute against yourself")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Dispute reason cannot be empty")
	}

	return &Dispute{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleID:            saleID,
		RaisedByID:        raisedByID,
		AgainstID:         againstID,
		Reason:            reason,
		EvidenceURLs:      evidenceURLs,
		Status:            DisputeStatusOpen,
	}, nil
}

// StartReview moves the dispute under review
func (d *Dispute) StartReview() error {
	if !d.Status.CanTransitionTo(DisputeStatusUnderReview) {
		return disputeTransitionError(d.Status, DisputeStatusUnderReview)
	}
	d.Status = DisputeStatusUnderReview
	d.UpdatedAt = time.Now()
	return nil
}

// Resolve closes the dispute in favour of the complainant
func (d *Dispute) Resolve(resolvedByID uuid.UUID, resolution string) error {
	if !d.Status.CanTransitionTo(DisputeStatusResolved) {
		return disputeTransitionError(d.Status, DisputeStatusResolved)
	}
	return d.close(DisputeStatusResolved, resolvedByID, resolution)
}

// Reject closes the dispute without action
func (d *Dispute) Reject(resolvedByID uuid.UUID, resolution string) error {
	if !d.Status.CanTransitionTo(DisputeStatusRejected) {
		return disputeTransitionError(d.Status, DisputeStatusRejected)
	}
	return d.close(DisputeStatusRejected, resolvedByID, resolution)
}

// AddEvidence appends evidence to an open or under-review dispute
func (d *Dispute) AddEvidence(url string) error {
	if d.Status == DisputeStatusResolved || d.Status == DisputeStatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Cannot add evidence to a closed dispute")
	}
	if url == "" {
		return shared.NewDomainError("INVALID_EVIDENCE", "Evidence URL cannot be empty")
	}
	d.EvidenceURLs = append(d.EvidenceURLs, url)
	d.UpdatedAt = time.Now()
	return nil
}

func (d *Dispute) close(status DisputeStatus, resolvedByID uuid.UUID, resolution string) error {
	if resolvedByID == uuid.Nil {
		return shared.NewDomainError("INVALID_PARTY", "Resolver ID cannot be empty")
	}
	if resolution == "" {
		return shared.NewDomainError("INVALID_RESOLUTION", "Resolution note cannot be empty")
	}
	now := time.Now()
	d.Status = status
	d.Resolution = resolution
	d.ResolvedByID = &resolvedByID
	d.ResolvedAt = &now
	d.UpdatedAt = now
	return nil
}

func disputeTransitionError(from, to DisputeStatus) error {
	return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition dispute from %s to %s", from, to))
}
