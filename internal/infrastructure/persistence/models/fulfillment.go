package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/fulfillment"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared/valueobject"
)

// LogisticsModel is the persistence model for the Logistics aggregate root.
type LogisticsModel struct {
	AggregateModel
	SaleID          uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex"`
	BatchID         uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Carrier         string                     `gorm:"type:varchar(100);not null"`
	TrackingNumber  string                     `gorm:"type:varchar(100)"`
	PickupAddress   valueobject.Address        `gorm:"type:jsonb;not null"`
	DeliveryAddress valueobject.Address        `gorm:"type:jsonb;not null"`
	Status          fulfillment.ShipmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`
	ScheduledAt     time.Time                  `gorm:"not null;index"`
	DeliveredAt     *time.Time
	FailureReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LogisticsModel) TableName() string {
	return "logistics"
}

// ToDomain converts the persistence model to a domain Logistics entity.
func (m *LogisticsModel) ToDomain() *fulfillment.Logistics {
	return &fulfillment.Logistics{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		SaleID:          m.SaleID,
		BatchID:         m.BatchID,
		Carrier:         m.Carrier,
		TrackingNumber:  m.TrackingNumber,
		PickupAddress:   m.PickupAddress,
		DeliveryAddress: m.DeliveryAddress,
		Status:          m.Status,
		ScheduledAt:     m.ScheduledAt,
		DeliveredAt:     m.DeliveredAt,
		FailureReason:   m.FailureReason,
	}
}

// FromDomain populates the persistence model from a domain Logistics entity.
func (m *LogisticsModel) FromDomain(l *fulfillment.Logistics) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.SaleID = l.SaleID
	m.BatchID = l.BatchID
	m.Carrier = l.Carrier
	m.TrackingNumber = l.TrackingNumber
	m.PickupAddress = l.PickupAddress
	m.DeliveryAddress = l.DeliveryAddress
	m.Status = l.Status
	m.ScheduledAt = l.ScheduledAt
	m.DeliveredAt = l.DeliveredAt
	m.FailureReason = l.FailureReason
}

// LogisticsModelFromDomain creates a new persistence model from a domain Logistics entity.
func LogisticsModelFromDomain(l *fulfillment.Logistics) *LogisticsModel {
	m := &LogisticsModel{}
	m.FromDomain(l)
	return m
}

// DisputeModel is the persistence model for the Dispute aggregate root.
// Evidence URLs are stored as a JSON array in a text column.
type DisputeModel struct {
	AggregateModel
	SaleID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	RaisedByID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	AgainstID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Reason           string                    `gorm:"type:text;not null"`
	EvidenceURLsJSON string                    `gorm:"column:evidence_urls;type:text;not null;default:'[]'"`
	Status           fulfillment.DisputeStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Resolution       string                    `gorm:"type:text"`
	ResolvedByID     *uuid.UUID                `gorm:"type:uuid"`
	ResolvedAt       *time.Time
}

// TableName returns the table name for GORM
func (DisputeModel) TableName() string {
	return "disputes"
}

// ToDomain converts the persistence model to a domain Dispute entity.
func (m *DisputeModel) ToDomain() *fulfillment.Dispute {
	dispute := &fulfillment.Dispute{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		SaleID:       m.SaleID,
		RaisedByID:   m.RaisedByID,
		AgainstID:    m.AgainstID,
		Reason:       m.Reason,
		EvidenceURLs: make([]string, 0),
		Status:       m.Status,
		Resolution:   m.Resolution,
		ResolvedByID: m.ResolvedByID,
		ResolvedAt:   m.ResolvedAt,
	}
	if m.EvidenceURLsJSON != "" && m.EvidenceURLsJSON != "[]" {
		var urls []string
		if err := json.Unmarshal([]byte(m.EvidenceURLsJSON), &urls); err == nil {
			dispute.EvidenceURLs = urls
		}
	}
	return dispute
}

// FromDomain populates the persistence model from a domain Dispute entity.
func (m *DisputeModel) FromDomain(d *fulfillment.Dispute) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.SaleID = d.SaleID
	m.RaisedByID = d.RaisedByID
	m.AgainstID = d.AgainstID
	m.Reason = d.Reason
	m.Status = d.Status
	m.Resolution = d.Resolution
	m.ResolvedByID = d.ResolvedByID
	m.ResolvedAt = d.ResolvedAt
	m.EvidenceURLsJSON = "[]"
	if len(d.EvidenceURLs) > 0 {
		if data, err := json.Marshal(d.EvidenceURLs); err == nil {
			m.EvidenceURLsJSON = string(data)
		}
	}
}

// DisputeModelFromDomain creates a new persistence model from a domain Dispute entity.
func DisputeModelFromDomain(d *fulfillment.Dispute) *DisputeModel {
	m := &DisputeModel{}
	m.FromDomain(d)
	return m
}

// QualityInspectionModel is the persistence model for a quality inspection record.
type QualityInspectionModel struct {
	BaseModel
	BatchID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	InspectorID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Grade           string          `gorm:"type:varchar(10);not null"`
	MoisturePercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Passed          bool            `gorm:"not null"`
	Notes           string          `gorm:"type:text"`
	InspectedAt     time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (QualityInspectionModel) TableName() string {
	return "quality_inspections"
}

// ToDomain converts the persistence model to a domain QualityInspection entity.
func (m *QualityInspectionModel) ToDomain() *fulfillment.QualityInspection {
	return &fulfillment.QualityInspection{
		BaseEntity:      m.BaseModel.ToDomain(),
		BatchID:         m.BatchID,
		InspectorID:     m.InspectorID,
		Grade:           m.Grade,
		MoisturePercent: m.MoisturePercent,
		Passed:          m.Passed,
		Notes:           m.Notes,
		InspectedAt:     m.InspectedAt,
	}
}

// QualityInspectionModelFromDomain creates a new persistence model from a domain QualityInspection entity.
func QualityInspectionModelFromDomain(q *fulfillment.QualityInspection) *QualityInspectionModel {
	m := &QualityInspectionModel{}
	m.FromDomainBaseEntity(q.BaseEntity)
	m.BatchID = q.BatchID
	m.InspectorID = q.InspectorID
	m.Grade = q.Grade
	m.MoisturePercent = q.MoisturePercent
	m.Passed = q.Passed
	m.Notes = q.Notes
	m.InspectedAt = q.InspectedAt
	return m
}

// RatingModel is the persistence model for a counterparty rating.
type RatingModel struct {
	BaseModel
	SaleID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_sale_rater"`
	RaterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_sale_rater"`
	RateeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Score   int       `gorm:"not null"`
	Comment string    `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (RatingModel) TableName() string {
	return "ratings"
}

// ToDomain converts the persistence model to a domain Rating entity.
func (m *RatingModel) ToDomain() *fulfillment.Rating {
	return &fulfillment.Rating{
		BaseEntity: m.BaseModel.ToDomain(),
		SaleID:     m.SaleID,
		RaterID:    m.RaterID,
		RateeID:    m.RateeID,
		Score:      m.Score,
		Comment:    m.Comment,
	}
}

// RatingModelFromDomain creates a new persistence model from a domain Rating entity.
func RatingModelFromDomain(r *fulfillment.Rating) *RatingModel {
	m := &RatingModel{}
	m.FromDomainBaseEntity(r.BaseEntity)
	m.SaleID = r.SaleID
	m.RaterID = r.RaterID
	m.RateeID = r.RateeID
	m.Score = r.Score
	m.Comment = r.Comment
	return m
}

// VerificationModel is the persistence model for a user verification request.
type VerificationModel struct {
	BaseModel
	UserID       uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex"`
	Role         shared.Role                    `gorm:"type:varchar(20);not null"`
	DocumentRef  string                         `gorm:"type:varchar(255);not null"`
	Status       fulfillment.VerificationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ReviewedByID *uuid.UUID                     `gorm:"type:uuid"`
	ReviewedAt   *time.Time
	Remark       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (VerificationModel) TableName() string {
	return "verifications"
}

// ToDomain converts the persistence model to a domain Verification entity.
func (m *VerificationModel) ToDomain() *fulfillment.Verification {
	return &fulfillment.Verification{
		BaseEntity:   m.BaseModel.ToDomain(),
		UserID:       m.UserID,
		Role:         m.Role,
		DocumentRef:  m.DocumentRef,
		Status:       m.Status,
		ReviewedByID: m.ReviewedByID,
		ReviewedAt:   m.ReviewedAt,
		Remark:       m.Remark,
	}
}

// VerificationModelFromDomain creates a new persistence model from a domain Verification entity.
func VerificationModelFromDomain(v *fulfillment.Verification) *VerificationModel {
	m := &VerificationModel{}
	m.FromDomainBaseEntity(v.BaseEntity)
	m.UserID = v.UserID
	m.Role = v.Role
	m.DocumentRef = v.DocumentRef
	m.Status = v.Status
	m.ReviewedByID = v.ReviewedByID
	m.ReviewedAt = v.ReviewedAt
	m.Remark = v.Remark
	return m
}
