package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// VerificationStatus represents a participant's KYC state
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "PENDING"
	VerificationStatusVerified VerificationStatus = "VERIFIED"
	VerificationStatusRejected VerificationStatus = "REJECTED"
)

// IsValid checks if the status is a valid VerificationStatus
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusVerified, VerificationStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of VerificationStatus
func (s VerificationStatus) String() string {
	return string(s)
}

// Verification tracks a participant's KYC review. One record per user;
// a rejected user may be re-reviewed.
type Verification struct {
	shared.BaseEntity
	UserID       uuid.UUID
	Role         shared.Role
	DocumentRef  string
	Status       VerificationStatus
	ReviewedByID *uuid.UUID
	ReviewedAt   *time.Time
	Remark       string
}

// NewVerification opens a pending KYC review for a user
func NewVerification(userID uuid.UUID, role shared.Role, documentRef string) (*Verification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "User ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown participant role")
	}
	if documentRef == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document reference cannot be empty")
	}

	return &Verification{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Role:        role,
		DocumentRef: documentRef,
		Status:      VerificationStatusPending,
	}, nil
}

// Approve marks the user verified
func (v *Verification) Approve(reviewerID uuid.UUID, remark string) error {
	return v.review(VerificationStatusVerified, reviewerID, remark)
}

// Reject marks the review rejected
func (v *Verification) Reject(reviewerID uuid.UUID, remark string) error {
	return v.review(VerificationStatusRejected, reviewerID, remark)
}

// Reopen puts a rejected review back to pending, for resubmission
func (v *Verification) Reopen(documentRef string) error {
	if v.Status != VerificationStatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Only a rejected review can be reopened")
	}
	if documentRef == "" {
		return shared.NewDomainError("INVALID_DOCUMENT", "Document reference cannot be empty")
	}
	v.Status = VerificationStatusPending
	v.DocumentRef = documentRef
	v.ReviewedByID = nil
	v.ReviewedAt = nil
	v.Remark = ""
	v.Touch(time.Now())
	return nil
}

// IsVerified reports whether the user has passed KYC
func (v *Verification) IsVerified() bool {
	return v.Status == VerificationStatusVerified
}

func (v *Verification) review(status VerificationStatus, reviewerID uuid.UUID, remark string) error {
	if v.Status != VerificationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Review is not pending")
	}
	if reviewerID == uuid.Nil {
		return shared.NewDomainError("INVALID_PARTY", "Reviewer ID cannot be empty")
	}
	now := time.Now()
	v.Status = status
	v.ReviewedByID = &reviewerID
	v.ReviewedAt = &now
	v.Remark = remark
	v.Touch(now)
	return nil
}
