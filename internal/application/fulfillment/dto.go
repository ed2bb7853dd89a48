package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/fulfillment"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

// ==================== Logistics DTOs ====================

// AddressRequest carries an address in request payloads
type AddressRequest struct {
	State    string `json:"state" binding:"required"`
	District string `json:"district" binding:"required"`
	Locality string `json:"locality" binding:"required"`
	Detail   string `json:"detail"`
	PinCode  string `json:"pin_code"`
}

// ToAddress converts the request shape to the domain value object
func (r AddressRequest) ToAddress() (valueobject.Address, error) {
	opts := []valueobject.AddressOption{}
	if r.PinCode != "" {
		opts = append(opts, valueobject.WithPinCode(r.PinCode))
	}
	return valueobject.NewAddress(r.State, r.District, r.Locality, r.Detail, opts...)
}

// AddressResponse carries an address in response payloads
type AddressResponse struct {
	State    string `json:"state"`
	District string `json:"district"`
	Locality string `json:"locality"`
	Detail   string `json:"detail,omitempty"`
	PinCode  string `json:"pin_code,omitempty"`
	Country  string `json:"country"`
}

func toAddressResponse(a valueobject.Address) AddressResponse {
	return AddressResponse{
		State:    a.State(),
		District: a.District(),
		Locality: a.Locality(),
		Detail:   a.Detail(),
		PinCode:  a.PinCode(),
		Country:  a.Country(),
	}
}

// ScheduleShipmentRequest represents a request to schedule a shipment
// for a committed sale
type ScheduleShipmentRequest struct {
	SaleID          uuid.UUID      `json:"sale_id" binding:"required"`
	Carrier         string         `json:"carrier" binding:"required,max=100"`
	PickupAddress   AddressRequest `json:"pickup_address" binding:"required"`
	DeliveryAddress AddressRequest `json:"delivery_address" binding:"required"`
	ScheduledAt     time.Time      `json:"scheduled_at" binding:"required"`
}

// DispatchShipmentRequest represents a request to mark a shipment in transit
type DispatchShipmentRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required,max=100"`
}

// FailShipmentRequest represents a request to mark a shipment failed
type FailShipmentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// LogisticsResponse represents a shipment in API responses
type LogisticsResponse struct {
	ID              uuid.UUID       `json:"id"`
	SaleID          uuid.UUID       `json:"sale_id"`
	BatchID         uuid.UUID       `json:"batch_id"`
	Carrier         string          `json:"carrier"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	PickupAddress   AddressResponse `json:"pickup_address"`
	DeliveryAddress AddressResponse `json:"delivery_address"`
	Status          string          `json:"status"`
	ScheduledAt     time.Time       `json:"scheduled_at"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	FailureReason   string          `json:"failure_reason,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToLogisticsResponse converts a shipment to its response shape
func ToLogisticsResponse(l *fulfillment.Logistics) LogisticsResponse {
	return LogisticsResponse{
		ID:              l.ID,
		SaleID:          l.SaleID,
		BatchID:         l.BatchID,
		Carrier:         l.Carrier,
		TrackingNumber:  l.TrackingNumber,
		PickupAddress:   toAddressResponse(l.PickupAddress),
		DeliveryAddress: toAddressResponse(l.DeliveryAddress),
		Status:          l.Status.String(),
		ScheduledAt:     l.ScheduledAt,
		DeliveredAt:     l.DeliveredAt,
		FailureReason:   l.FailureReason,
		Version:         l.Version,
		CreatedAt:       l.CreatedAt,
	}
}

// ==================== Dispute DTOs ====================

// RaiseDisputeRequest represents a request to open a dispute on a sale
type RaiseDisputeRequest struct {
	SaleID       uuid.UUID `json:"sale_id" binding:"required"`
	AgainstID    uuid.UUID `json:"against_id" binding:"required"`
	Reason       string    `json:"reason" binding:"required,max=1000"`
	EvidenceURLs []string  `json:"evidence_urls" binding:"max=10"`
}

// ResolveDisputeRequest represents an admin's ruling on a dispute
type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required,max=1000"`
	Uphold     bool   `json:"uphold"`
}

// AddEvidenceRequest represents additional evidence on an open dispute
type AddEvidenceRequest struct {
	URL string `json:"url" binding:"required,max=500"`
}

// DisputeResponse represents a dispute in API responses
type DisputeResponse struct {
	ID           uuid.UUID  `json:"id"`
	SaleID       uuid.UUID  `json:"sale_id"`
	RaisedByID   uuid.UUID  `json:"raised_by_id"`
	AgainstID    uuid.UUID  `json:"against_id"`
	Reason       string     `json:"reason"`
	EvidenceURLs []string   `json:"evidence_urls,omitempty"`
	Status       string     `json:"status"`
	Resolution   string     `json:"resolution,omitempty"`
	ResolvedByID *uuid.UUID `json:"resolved_by_id,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToDisputeResponse converts a dispute to its response shape
func ToDisputeResponse(d *fulfillment.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:           d.ID,
		SaleID:       d.SaleID,
		RaisedByID:   d.RaisedByID,
		AgainstID:    d.AgainstID,
		Reason:       d.Reason,
		EvidenceURLs: d.EvidenceURLs,
		Status:       d.Status.String(),
		Resolution:   d.Resolution,
		ResolvedByID: d.ResolvedByID,
		ResolvedAt:   d.ResolvedAt,
		CreatedAt:    d.CreatedAt,
	}
}

// ==================== Quality inspection DTOs ====================

// RecordInspectionRequest represents an inspection result for a batch
type RecordInspectionRequest struct {
	BatchID         uuid.UUID       `json:"batch_id" binding:"required"`
	Grade           string          `json:"grade" binding:"required,max=20"`
	MoisturePercent decimal.Decimal `json:"moisture_percent"`
	Passed          bool            `json:"passed"`
	Notes           string          `json:"notes" binding:"max=1000"`
}

// InspectionResponse represents an inspection record in API responses
type InspectionResponse struct {
	ID              uuid.UUID       `json:"id"`
	BatchID         uuid.UUID       `json:"batch_id"`
	InspectorID     uuid.UUID       `json:"inspector_id"`
	Grade           string          `json:"grade"`
	MoisturePercent decimal.Decimal `json:"moisture_percent"`
	Passed          bool            `json:"passed"`
	Notes           string          `json:"notes,omitempty"`
	InspectedAt     time.Time       `json:"inspected_at"`
}

// ToInspectionResponse converts an inspection to its response shape
func ToInspectionResponse(qi *fulfillment.QualityInspection) InspectionResponse {
	return InspectionResponse{
		ID:              qi.ID,
		BatchID:         qi.BatchID,
		InspectorID:     qi.InspectorID,
		Grade:           qi.Grade,
		MoisturePercent: qi.MoisturePercent,
		Passed:          qi.Passed,
		Notes:           qi.Notes,
		InspectedAt:     qi.InspectedAt,
	}
}

// ==================== Rating DTOs ====================

// SubmitRatingRequest represents a rating for a sale counterpart
type SubmitRatingRequest struct {
	SaleID  uuid.UUID `json:"sale_id" binding:"required"`
	RateeID uuid.UUID `json:"ratee_id" binding:"required"`
	Score   int       `json:"score" binding:"required,min=1,max=5"`
	Comment string    `json:"comment" binding:"max=500"`
}

// RatingResponse represents a rating in API responses
type RatingResponse struct {
	ID        uuid.UUID `json:"id"`
	SaleID    uuid.UUID `json:"sale_id"`
	RaterID   uuid.UUID `json:"rater_id"`
	RateeID   uuid.UUID `json:"ratee_id"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingSummaryResponse aggregates a participant's received ratings
type RatingSummaryResponse struct {
	RateeID uuid.UUID `json:"ratee_id"`
	Average float64   `json:"average"`
	Count   int64     `json:"count"`
}

// ToRatingResponse converts a rating to its response shape
func ToRatingResponse(r *fulfillment.Rating) RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		SaleID:    r.SaleID,
		RaterID:   r.RaterID,
		RateeID:   r.RateeID,
		Score:     r.Score,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// ==================== Verification DTOs ====================

// RequestVerificationRequest opens a KYC review for the caller
type RequestVerificationRequest struct {
	DocumentRef string `json:"document_ref" binding:"required,max=200"`
}

// ReviewVerificationRequest represents an admin's KYC decision
type ReviewVerificationRequest struct {
	Approve bool   `json:"approve"`
	Remark  string `json:"remark" binding:"max=500"`
}

// VerificationResponse represents a KYC review in API responses
type VerificationResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Role         string     `json:"role"`
	DocumentRef  string     `json:"document_ref"`
	Status       string     `json:"status"`
	ReviewedByID *uuid.UUID `json:"reviewed_by_id,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	Remark       string     `json:"remark,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToVerificationResponse converts a verification to its response shape
func ToVerificationResponse(v *fulfillment.Verification) VerificationResponse {
	return VerificationResponse{
		ID:           v.ID,
		UserID:       v.UserID,
		Role:         string(v.Role),
		DocumentRef:  v.DocumentRef,
		Status:       v.Status.String(),
		ReviewedByID: v.ReviewedByID,
		ReviewedAt:   v.ReviewedAt,
		Remark:       v.Remark,
		CreatedAt:    v.CreatedAt,
	}
}
