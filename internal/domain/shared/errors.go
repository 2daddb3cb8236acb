package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so errors.Is works with the sentinels below
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of the error with a different message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message}
}

// WithMessagef returns a copy of the error with a formatted message
func (e *DomainError) WithMessagef(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
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
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrDuplicateKey      = NewDomainError("DUPLICATE_KEY", "Resource with the same key already exists")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrEmptyInvoice      = NewDomainError("EMPTY_INVOICE", "Invoice has no lines")
	ErrOverReturn        = NewDomainError("OVER_RETURN", "Returned quantity exceeds sold quantity")
	ErrOverAllocation    = NewDomainError("OVER_ALLOCATION", "Allocation exceeds remaining capacity")
	ErrInvalidAmount     = NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	ErrConflict          = NewDomainError("CONFLICT", "Resource was modified by a concurrent transaction")
)
