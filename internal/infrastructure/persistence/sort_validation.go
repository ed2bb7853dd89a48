package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applyPagination applies ordering and pagination from the filter, with
// the sort field checked against the entity's whitelist.
func applyPagination(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	sortField := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"sale_number":  true,
	"sale_date":    true,
	"quantity_kg":  true,
	"price_per_kg": true,
	"total_amount": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"status":         true,
	"payment_status": true,
	"total_amount":   true,
	"paid_amount":    true,
	"issued_at":      true,
	"due_date":       true,
}

// LogisticsSortFields contains allowed sort fields for shipments
var LogisticsSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"status":       true,
	"carrier":      true,
	"scheduled_at": true,
	"delivered_at": true,
}

// DisputeSortFields contains allowed sort fields for disputes
var DisputeSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"resolved_at": true,
}

// RatingSortFields contains allowed sort fields for ratings
var RatingSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"score":      true,
}

// VerificationSortFields contains allowed sort fields for verifications
var VerificationSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"reviewed_at": true,
}
