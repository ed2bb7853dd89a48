package fulfillment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

// ShipmentStatus represents the delivery stage of a logistics record
type ShipmentStatus string

const (
	ShipmentStatusScheduled ShipmentStatus = "SCHEDULED"
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	ShipmentStatusFailed    ShipmentStatus = "FAILED"
)

// IsValid checks if the status is a valid ShipmentStatus
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusScheduled, ShipmentStatusInTransit, ShipmentStatusDelivered, ShipmentStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ShipmentStatus) CanTransitionTo(target ShipmentStatus) bool {
	switch s {
	case ShipmentStatusScheduled:
		return target == ShipmentStatusInTransit || target == ShipmentStatusFailed
	case ShipmentStatusInTransit:
		return target == ShipmentStatusDelivered || target == ShipmentStatusFailed
	case ShipmentStatusDelivered, ShipmentStatusFailed:
		return false // Terminal states
	}
	return false
}

// Logistics tracks the physical movement of a sold batch quantity
// from the seller to the buyer.
type Logistics struct {
	shared.BaseAggregateRoot
	SaleID          uuid.UUID
	BatchID         uuid.UUID
	Carrier         string
	TrackingNumber  string
	PickupAddress   valueobject.Address
	DeliveryAddress valueobject.Address
	Status          ShipmentStatus
	ScheduledAt     time.Time
	DeliveredAt     *time.Time
	FailureReason   string
}

// NewLogistics schedules a shipment for a committed sale
func NewLogistics(saleID, batchID uuid.UUID, carrier string, pickup, delivery valueobject.Address, scheduledAt time.Time) (*Logistics, error) {
	if saleID == uuid.Nil || batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Sale and batch IDs cannot be empty")
	}
	if carrier == "" {
		return nil, shared.NewDomainError("INVALID_CARRIER", "Carrier cannot be empty")
	}
	if pickup.IsZero() || delivery.IsZero() {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Pickup and delivery addresses are required")
	}

	return &Logistics{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleID:            saleID,
		BatchID:           batchID,
		Carrier:           carrier,
		PickupAddress:     pickup,
		DeliveryAddress:   delivery,
		Status:            ShipmentStatusScheduled,
		ScheduledAt:       scheduledAt,
	}, nil
}

// Dispatch marks the shipment in transit, optionally with a tracking number
func (l *Logistics) Dispatch(trackingNumber string) error {
	if !l.Status.CanTransitionTo(ShipmentStatusInTransit) {
		return shipmentTransitionError(l.Status, ShipmentStatusInTransit)
	}
	l.Status = ShipmentStatusInTransit
	l.TrackingNumber = trackingNumber
	l.UpdatedAt = time.Now()
	return nil
}

// MarkDelivered records a successful delivery
func (l *Logistics) MarkDelivered(at time.Time) error {
	if !l.Status.CanTransitionTo(ShipmentStatusDelivered) {
		return shipmentTransitionError(l.Status, ShipmentStatusDelivered)
	}
	l.Status = ShipmentStatusDelivered
	l.DeliveredAt = &at
	l.UpdatedAt = time.Now()
	return nil
}

// MarkFailed records a failed delivery with a reason
func (l *Logistics) MarkFailed(reason string) error {
	if !l.Status.CanTransitionTo(ShipmentStatusFailed) {
		return shipmentTransitionError(l.Status, ShipmentStatusFailed)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Failure reason cannot be empty")
	}
	l.Status = ShipmentStatusFailed
	l.FailureReason = reason
	l.UpdatedAt = time.Now()
	return nil
}

func shipmentTransitionError(from, to ShipmentStatus) error {
	return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition shipment from %s to %s", from, to))
}
