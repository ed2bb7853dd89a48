package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Batch lifecycle errors
var (
	ErrInvalidTransition    = NewDomainError("INVALID_TRANSITION", "Batch status transition not permitted")
	ErrInsufficientQuantity = NewDomainError("INSUFFICIENT_QUANTITY", "Insufficient available quantity")
	ErrOwnershipMismatch    = NewDomainError("OWNERSHIP_MISMATCH", "Seller is not the current owner of record")
	ErrBiddingClosed        = NewDomainError("BIDDING_CLOSED", "Bidding window is closed")
	ErrDuplicateBid         = NewDomainError("DUPLICATE_BID", "Bidder already has a pending bid on this batch")
)
