package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
)

// Domain error codes surfaced by the API. These match the codes carried
// by domain errors so handlers can map them without translation.
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeDuplicateKey      = "DUPLICATE_KEY"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeEmptyInvoice      = "EMPTY_INVOICE"
	ErrCodeOverReturn        = "OVER_RETURN"
	ErrCodeOverAllocation    = "OVER_ALLOCATION"
	ErrCodeInvalidAmount     = "INVALID_AMOUNT"
	ErrCodeConflict          = "CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeDuplicateKey: http.StatusConflict,
	ErrCodeConflict:     http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeEmptyInvoice:      http.StatusUnprocessableEntity,
	ErrCodeOverReturn:        http.StatusUnprocessableEntity,
	ErrCodeOverAllocation:    http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeInvalidAmount: http.StatusBadRequest,

	"DUPLICATE_PRODUCT": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Field validation codes (INVALID_*) map to 400; anything unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
